package usecases

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/sync/errgroup"

	"github.com/civicwatch/civicwatch/internal/application/report/blobstore"
	"github.com/civicwatch/civicwatch/internal/application/report/humanverify"
	"github.com/civicwatch/civicwatch/internal/application/report/notification"
	"github.com/civicwatch/civicwatch/internal/application/report/triage"
	"github.com/civicwatch/civicwatch/internal/domain/report"
	vo "github.com/civicwatch/civicwatch/internal/domain/report/valueobjects"
	"github.com/civicwatch/civicwatch/internal/shared/errors"
	"github.com/civicwatch/civicwatch/internal/shared/logger"
	"github.com/civicwatch/civicwatch/internal/shared/services/sanitize"
	"github.com/civicwatch/civicwatch/internal/shared/utils"
)

const (
	DefaultMaxImageBytes = 2048 * 1024

	ErrMsgCaptchaFailed = "reCAPTCHA verification failed. Please try again."
)

var DefaultAllowedImageTypes = []string{"image/jpeg", "image/png", "image/gif"}

type ImageUpload struct {
	Data     []byte
	Filename string
}

type SubmitReportCommand struct {
	Title                  string       `json:"title" validate:"required,max=255"`
	IssueType              string       `json:"issue_type" validate:"required,max=255"`
	CustomIssueDescription string       `json:"custom_issue_description" validate:"max=255"`
	Description            string       `json:"description" validate:"required"`
	Image                  *ImageUpload `json:"-"`
	BarangayID             uint         `json:"barangay_id" validate:"required"`
	SitioID                uint         `json:"sitio_id" validate:"required"`
	Latitude               *float64     `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude              *float64     `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
	LocationAccuracy       *float64     `json:"location_accuracy" validate:"omitempty,gte=0"`
	SenderName             string       `json:"sender_name" validate:"required,max=255"`
	ContactNumber          string       `json:"contact_number" validate:"required,max=20"`
	Remarks                string       `json:"remarks"`
	CaptchaToken           string       `json:"g-recaptcha-response"`
	RemoteIP               string       `json:"-"`
}

type SubmitReportResult struct {
	ReportID     uint
	TrackingCode string
	Location     string
	Priority     string
	Status       string
	IsEmergency  bool
	CreatedAt    time.Time
}

type SubmitReportConfig struct {
	MaxImageBytes     int64
	AllowedImageTypes []string
}

type placeResolver interface {
	Resolve(ctx context.Context, barangayID, sitioID uint) (report.Location, error)
}

type priorityClassifier interface {
	Classify(ctx context.Context, issueType string) vo.Priority
}

type reportCreator interface {
	CreateWithCode(ctx context.Context, r *report.Report) (report.TrackingCode, error)
}

// SubmitReportUseCase takes a citizen submission from raw input to a stored
// report with a tracking code. Triage and notification never fail it.
type SubmitReportUseCase struct {
	places     placeResolver
	verifier   humanverify.Verifier
	blobs      blobstore.Store
	analyzer   triage.Analyzer
	classifier priorityClassifier
	creator    reportCreator
	notifier   notification.Notifier
	sanitizer  sanitize.Sanitizer
	cfg        SubmitReportConfig
	now        func() time.Time
	logger     logger.Interface
}

// NewSubmitReportUseCase wires the pipeline. A nil verifier disables human
// verification.
func NewSubmitReportUseCase(
	places placeResolver,
	verifier humanverify.Verifier,
	blobs blobstore.Store,
	analyzer triage.Analyzer,
	classifier priorityClassifier,
	creator reportCreator,
	notifier notification.Notifier,
	sanitizer sanitize.Sanitizer,
	cfg SubmitReportConfig,
	logger logger.Interface,
) *SubmitReportUseCase {
	if cfg.MaxImageBytes <= 0 {
		cfg.MaxImageBytes = DefaultMaxImageBytes
	}
	if len(cfg.AllowedImageTypes) == 0 {
		cfg.AllowedImageTypes = DefaultAllowedImageTypes
	}
	if analyzer == nil {
		analyzer = triage.NoopAnalyzer{}
	}
	return &SubmitReportUseCase{
		places:     places,
		verifier:   verifier,
		blobs:      blobs,
		analyzer:   analyzer,
		classifier: classifier,
		creator:    creator,
		notifier:   notifier,
		sanitizer:  sanitizer,
		cfg:        cfg,
		now:        func() time.Time { return time.Now().UTC() },
		logger:     logger,
	}
}

func (uc *SubmitReportUseCase) Execute(ctx context.Context, cmd SubmitReportCommand) (*SubmitReportResult, error) {
	uc.logger.Infow("executing submit report use case",
		"issue_type", cmd.IssueType,
		"barangay_id", cmd.BarangayID,
		"sitio_id", cmd.SitioID,
		"has_image", cmd.Image != nil,
	)

	cmd = uc.sanitize(cmd)
	if err := uc.validateCommand(cmd); err != nil {
		return nil, err
	}

	loc, err := uc.places.Resolve(ctx, cmd.BarangayID, cmd.SitioID)
	if err != nil {
		uc.logger.Warnw("submission rejected by place check",
			"barangay_id", cmd.BarangayID,
			"sitio_id", cmd.SitioID,
			"error", err,
		)
		return nil, err
	}

	if uc.verifier != nil {
		if err := uc.verifier.Verify(ctx, cmd.CaptchaToken, cmd.RemoteIP); err != nil {
			uc.logger.Warnw("human verification failed", "remote_ip", cmd.RemoteIP, "error", err)
			return nil, errors.NewFieldValidationError("captcha", ErrMsgCaptchaFailed)
		}
	}

	imagePath, verdict, err := uc.storeAndTriage(ctx, cmd.Image)
	if err != nil {
		return nil, err
	}

	draft := report.Draft{
		Title:                  cmd.Title,
		IssueType:              cmd.IssueType,
		CustomIssueDescription: cmd.CustomIssueDescription,
		Description:            cmd.Description,
		Image:                  imagePath,
		Location:               loc,
		SenderName:             cmd.SenderName,
		ContactNumber:          cmd.ContactNumber,
		Remarks:                cmd.Remarks,
		Priority:               uc.classifier.Classify(ctx, cmd.IssueType),
		Triage:                 verdict.Result(),
	}
	if cmd.Latitude != nil && cmd.Longitude != nil {
		draft.Geo = &report.GeoPoint{
			Latitude:  *cmd.Latitude,
			Longitude: *cmd.Longitude,
			Accuracy:  cmd.LocationAccuracy,
		}
	}

	newReport, err := report.NewReport(draft, uc.now())
	if err != nil {
		uc.discardImage(imagePath)
		return nil, errors.NewValidationError(err.Error())
	}

	code, err := uc.creator.CreateWithCode(ctx, newReport)
	if err != nil {
		uc.discardImage(imagePath)
		return nil, err
	}

	uc.logger.Infow("report submitted",
		"report_id", newReport.ID(),
		"tracking_code", code.String(),
		"priority", newReport.Priority(),
		"emergency", newReport.IsEmergency(),
	)

	if uc.notifier != nil {
		uc.notifier.Notify(notification.Payload{
			ReportID:     newReport.ID(),
			TrackingCode: newReport.TrackingCode(),
			Type:         newReport.IssueType(),
			Severity:     newReport.Priority().Severity(),
			Description:  newReport.Description(),
			Location:     loc.Label(),
			Emergency:    newReport.IsEmergency(),
			OccurredAt:   newReport.CreatedAt(),
		})
	}

	return &SubmitReportResult{
		ReportID:     newReport.ID(),
		TrackingCode: newReport.TrackingCode(),
		Location:     loc.Label(),
		Priority:     newReport.Priority().String(),
		Status:       newReport.Status().String(),
		IsEmergency:  newReport.IsEmergency(),
		CreatedAt:    newReport.CreatedAt(),
	}, nil
}

// storeAndTriage runs the upload and the emergency triage side by side.
// Only the upload can fail the submission.
func (uc *SubmitReportUseCase) storeAndTriage(ctx context.Context, img *ImageUpload) (string, triage.Verdict, error) {
	if img == nil {
		return "", triage.NoopAnalyzer{}.Analyze(ctx, triage.Image{}), nil
	}

	var (
		path    string
		verdict triage.Verdict
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := uc.blobs.Store(gctx, img.Data, blobstore.CategoryReportImages, img.Filename)
		if err != nil {
			return err
		}
		path = p
		return nil
	})
	g.Go(func() error {
		verdict = uc.analyzer.Analyze(gctx, triage.Image{
			Data:        img.Data,
			Filename:    img.Filename,
			ContentType: mimetype.Detect(img.Data).String(),
		})
		return nil
	})
	if err := g.Wait(); err != nil {
		uc.logger.Errorw("failed to store report image", "filename", img.Filename, "error", err)
		return "", triage.Verdict{}, errors.NewInternalError("failed to store image")
	}
	return path, verdict, nil
}

func (uc *SubmitReportUseCase) discardImage(path string) {
	if path == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := uc.blobs.Delete(ctx, path); err != nil {
		uc.logger.Warnw("failed to remove orphaned report image", "path", path, "error", err)
	}
}

func (uc *SubmitReportUseCase) sanitize(cmd SubmitReportCommand) SubmitReportCommand {
	if uc.sanitizer == nil {
		return cmd
	}
	cmd.Title = uc.sanitizer.Text(cmd.Title)
	cmd.IssueType = uc.sanitizer.Text(cmd.IssueType)
	cmd.CustomIssueDescription = uc.sanitizer.Text(cmd.CustomIssueDescription)
	cmd.Description = uc.sanitizer.Text(cmd.Description)
	cmd.SenderName = uc.sanitizer.Text(cmd.SenderName)
	cmd.ContactNumber = strings.TrimSpace(cmd.ContactNumber)
	cmd.Remarks = uc.sanitizer.Text(cmd.Remarks)
	return cmd
}

func (uc *SubmitReportUseCase) validateCommand(cmd SubmitReportCommand) error {
	err := utils.ValidateStruct(cmd)

	fields := map[string]string{}
	if appErr := errors.GetAppError(err); appErr != nil {
		for k, v := range appErr.Fields {
			fields[k] = v
		}
		if len(appErr.Fields) == 0 {
			return appErr
		}
	}
	if uc.verifier != nil && cmd.CaptchaToken == "" {
		fields["g-recaptcha-response"] = "The g-recaptcha-response field is required."
	}
	if (cmd.Latitude == nil) != (cmd.Longitude == nil) {
		fields["latitude"] = "The latitude and longitude must be given together."
	}
	if cmd.Image != nil {
		if msg := uc.checkImage(cmd.Image); msg != "" {
			fields["image"] = msg
		}
	}

	if len(fields) > 0 {
		return errors.NewFieldsValidationError(fields)
	}
	return nil
}

func (uc *SubmitReportUseCase) checkImage(img *ImageUpload) string {
	if len(img.Data) == 0 {
		return "The image failed to upload."
	}
	if int64(len(img.Data)) > uc.cfg.MaxImageBytes {
		return fmt.Sprintf("The image may not be greater than %d kilobytes.", uc.cfg.MaxImageBytes/1024)
	}
	mt := mimetype.Detect(img.Data)
	for _, allowed := range uc.cfg.AllowedImageTypes {
		if mt.Is(allowed) {
			return ""
		}
	}
	return "The image must be a file of type: jpg, jpeg, png, gif."
}
