package report

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/civicwatch/civicwatch/internal/application/report/dto"
	"github.com/civicwatch/civicwatch/internal/application/report/usecases"
	"github.com/civicwatch/civicwatch/internal/shared/errors"
	"github.com/civicwatch/civicwatch/internal/shared/logger"
	"github.com/civicwatch/civicwatch/internal/shared/utils"
)

// maxMultipartMemory bounds what a submission may buffer before the image
// size check rejects it.
const maxMultipartMemory = 8 << 20

// PublicHandler serves the citizen-facing report endpoints.
type PublicHandler struct {
	submitUC   usecases.SubmitReportExecutor
	trackUC    usecases.TrackReportExecutor
	checkDupUC usecases.CheckDuplicatesExecutor
	logger     logger.Interface
}

func NewPublicHandler(
	submitUC usecases.SubmitReportExecutor,
	trackUC usecases.TrackReportExecutor,
	checkDupUC usecases.CheckDuplicatesExecutor,
	logger logger.Interface,
) *PublicHandler {
	return &PublicHandler{
		submitUC:   submitUC,
		trackUC:    trackUC,
		checkDupUC: checkDupUC,
		logger:     logger,
	}
}

// SubmitReport handles POST /api/reports (multipart/form-data)
func (h *PublicHandler) SubmitReport(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxMultipartMemory)
	if err := c.Request.ParseMultipartForm(maxMultipartMemory); err != nil && err != http.ErrNotMultipart {
		h.logger.Warnw("unreadable report submission body", "error", err, "client_ip", c.ClientIP())
		utils.ErrorResponseWithError(c, errors.NewBadRequestError("The submission is too large or malformed."))
		return
	}

	fields := map[string]string{}
	cmd := usecases.SubmitReportCommand{
		Title:                  c.PostForm("title"),
		IssueType:              c.PostForm("issue_type"),
		CustomIssueDescription: c.PostForm("custom_issue_description"),
		Description:            c.PostForm("description"),
		BarangayID:             formUint(c, "barangay_id", fields),
		SitioID:                formUint(c, "sitio_id", fields),
		Latitude:               formFloat(c, "latitude", fields),
		Longitude:              formFloat(c, "longitude", fields),
		LocationAccuracy:       formFloat(c, "location_accuracy", fields),
		SenderName:             c.PostForm("sender_name"),
		ContactNumber:          c.PostForm("contact_number"),
		Remarks:                c.PostForm("remarks"),
		CaptchaToken:           c.PostForm("g-recaptcha-response"),
		RemoteIP:               c.ClientIP(),
	}
	if len(fields) > 0 {
		utils.ErrorResponseWithError(c, errors.NewFieldsValidationError(fields))
		return
	}

	img, err := readImage(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	cmd.Image = img

	result, err := h.submitUC.Execute(c.Request.Context(), cmd)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, SubmitReportResponse{
		TrackingCode: result.TrackingCode,
		Location:     result.Location,
		Priority:     result.Priority,
		Status:       result.Status,
		IsEmergency:  result.IsEmergency,
		CreatedAt:    result.CreatedAt.Format(time.RFC3339),
	}, fmt.Sprintf("Report submitted successfully. Your tracking code is %s.", result.TrackingCode))
}

func readImage(c *gin.Context) (*usecases.ImageUpload, error) {
	fh, err := c.FormFile("image")
	if err == http.ErrMissingFile {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewFieldValidationError("image", "The image failed to upload.")
	}

	f, err := fh.Open()
	if err != nil {
		return nil, errors.NewFieldValidationError("image", "The image failed to upload.")
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, errors.NewFieldValidationError("image", "The image failed to upload.")
	}
	return &usecases.ImageUpload{Data: data, Filename: fh.Filename}, nil
}

// TrackReport handles GET /api/reports/track/:code
func (h *PublicHandler) TrackReport(c *gin.Context) {
	result, err := h.trackUC.Execute(c.Request.Context(), usecases.TrackReportQuery{
		TrackingCode: c.Param("code"),
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

// CheckDuplicates handles POST /api/reports/duplicates/check. Callers are
// anonymous, so matches carry only their score and reasons.
func (h *PublicHandler) CheckDuplicates(c *gin.Context) {
	var req CheckDuplicatesRequest
	if err := bindJSON(c, &req, false); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.checkDupUC.Execute(c.Request.Context(), usecases.CheckDuplicatesQuery{
		Draft: &usecases.DuplicateDraft{
			Title:       req.Title,
			Description: req.Description,
			IssueType:   req.IssueType,
			BarangayID:  req.BarangayID,
			SitioID:     req.SitioID,
		},
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", dto.ToPublicDuplicateCheckDTO(result))
}
