package report

import (
	stderrors "errors"
	"io"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/civicwatch/civicwatch/internal/application/report/usecases"
	"github.com/civicwatch/civicwatch/internal/shared/errors"
	"github.com/civicwatch/civicwatch/internal/shared/utils"
)

type SubmitReportResponse struct {
	TrackingCode string `json:"tracking_code"`
	Location     string `json:"location"`
	Priority     string `json:"priority_level"`
	Status       string `json:"status"`
	IsEmergency  bool   `json:"is_emergency"`
	CreatedAt    string `json:"created_at"`
}

type CheckDuplicatesRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	IssueType   string `json:"issue_type" validate:"required,max=255"`
	BarangayID  uint   `json:"barangay_id" validate:"required"`
	SitioID     uint   `json:"sitio_id" validate:"required"`
}

type MergeDuplicatesRequest struct {
	PrimaryID    uint   `json:"primary_id" validate:"required"`
	DuplicateIDs []uint `json:"duplicate_ids" validate:"required,min=1,max=100"`
	FoldRemarks  *bool  `json:"fold_remarks"`
}

type StatusChangeRequest struct {
	Reason     string `json:"reason"`
	Resolution string `json:"resolution" validate:"max=1000"`
}

type BulkRequest struct {
	IDs        []uint `json:"ids" validate:"required,min=1,max=100"`
	Reason     string `json:"reason"`
	Resolution string `json:"resolution" validate:"max=1000"`
}

// bindJSON decodes an optional JSON body and runs struct validation.
func bindJSON(c *gin.Context, req any, optional bool) error {
	if c.Request.ContentLength == 0 && optional {
		return nil
	}
	if err := c.ShouldBindJSON(req); err != nil {
		if optional && stderrors.Is(err, io.EOF) {
			return nil
		}
		return errors.NewValidationError("invalid request body", err.Error())
	}
	return utils.ValidateStruct(req)
}

func parseListReportsQuery(c *gin.Context) (usecases.ListReportsQuery, error) {
	p := utils.ParsePagination(c)
	q := usecases.ListReportsQuery{
		IssueType: c.Query("issue_type"),
		Search:    c.Query("search"),
		DateFrom:  c.Query("date_from"),
		DateTo:    c.Query("date_to"),
		Trashed:   c.Query("trashed") == "true" || c.Query("trashed") == "1",
		Page:      p.Page,
		PageSize:  p.PageSize,
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}

	if s := c.Query("status"); s != "" {
		q.Status = &s
	}
	if s := c.Query("priority_level"); s != "" {
		q.Priority = &s
	}
	if s := c.Query("barangay_id"); s != "" {
		id, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return q, errors.NewFieldValidationError("barangay_id", "The barangay id must be an integer.")
		}
		q.BarangayID = uint(id)
	}
	if s := c.Query("is_emergency"); s != "" {
		b, err := strconv.ParseBool(s)
		if err != nil {
			return q, errors.NewFieldValidationError("is_emergency", "The is emergency field must be true or false.")
		}
		q.Emergency = &b
	}
	return q, nil
}

func parseDuplicateOptions(c *gin.Context) (windowHours int, threshold float64, err error) {
	if s := c.Query("window_hours"); s != "" {
		windowHours, err = strconv.Atoi(s)
		if err != nil {
			return 0, 0, errors.NewFieldValidationError("window_hours", "The window hours must be an integer.")
		}
	}
	if s := c.Query("threshold"); s != "" {
		threshold, err = strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, 0, errors.NewFieldValidationError("threshold", "The threshold must be a number.")
		}
	}
	return windowHours, threshold, nil
}

// formUint parses an optional numeric form value. Garbage is recorded in
// fields and yields zero.
func formUint(c *gin.Context, key string, fields map[string]string) uint {
	raw := strings.TrimSpace(c.PostForm(key))
	if raw == "" {
		return 0
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		fields[key] = "The " + strings.ReplaceAll(key, "_", " ") + " must be an integer."
		return 0
	}
	return uint(n)
}

func formFloat(c *gin.Context, key string, fields map[string]string) *float64 {
	raw := strings.TrimSpace(c.PostForm(key))
	if raw == "" {
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		fields[key] = "The " + strings.ReplaceAll(key, "_", " ") + " must be a number."
		return nil
	}
	return &f
}
