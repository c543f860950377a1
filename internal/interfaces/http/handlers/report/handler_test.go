package report

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	reportdto "github.com/civicwatch/civicwatch/internal/application/report/dto"
	"github.com/civicwatch/civicwatch/internal/application/report/usecases"
	"github.com/civicwatch/civicwatch/internal/interfaces/http/handlers/testutil"
	"github.com/civicwatch/civicwatch/internal/shared/errors"
)

// =====================================================================
// Mock use cases
// =====================================================================

type mockSubmitUC struct {
	cmd    usecases.SubmitReportCommand
	result *usecases.SubmitReportResult
	err    error
}

func (m *mockSubmitUC) Execute(_ context.Context, cmd usecases.SubmitReportCommand) (*usecases.SubmitReportResult, error) {
	m.cmd = cmd
	return m.result, m.err
}

type mockTrackUC struct {
	query  usecases.TrackReportQuery
	result *reportdto.TrackedReportDTO
	err    error
}

func (m *mockTrackUC) Execute(_ context.Context, q usecases.TrackReportQuery) (*reportdto.TrackedReportDTO, error) {
	m.query = q
	return m.result, m.err
}

type mockCheckDupUC struct {
	query  usecases.CheckDuplicatesQuery
	result *reportdto.DuplicateCheckDTO
	err    error
}

func (m *mockCheckDupUC) Execute(_ context.Context, q usecases.CheckDuplicatesQuery) (*reportdto.DuplicateCheckDTO, error) {
	m.query = q
	return m.result, m.err
}

type mockListUC struct {
	query  usecases.ListReportsQuery
	result *usecases.ListReportsResult
	err    error
}

func (m *mockListUC) Execute(_ context.Context, q usecases.ListReportsQuery) (*usecases.ListReportsResult, error) {
	m.query = q
	return m.result, m.err
}

type mockGetUC struct {
	result *reportdto.ReportDTO
	err    error
}

func (m *mockGetUC) Execute(_ context.Context, _ usecases.GetReportQuery) (*reportdto.ReportDTO, error) {
	return m.result, m.err
}

type mockStatusUC struct {
	cmd usecases.ChangeReportStatusCommand
	err error
}

func (m *mockStatusUC) Execute(_ context.Context, cmd usecases.ChangeReportStatusCommand) (*usecases.ChangeReportStatusResult, error) {
	m.cmd = cmd
	if m.err != nil {
		return nil, m.err
	}
	items := make([]reportdto.ReportListItemDTO, 0, len(cmd.ReportIDs))
	for _, id := range cmd.ReportIDs {
		items = append(items, reportdto.ReportListItemDTO{ID: id, Status: "approved"})
	}
	return &usecases.ChangeReportStatusResult{Reports: items}, nil
}

type mockTrashUC struct {
	cmd usecases.ManageTrashCommand
	err error
}

func (m *mockTrashUC) Execute(_ context.Context, cmd usecases.ManageTrashCommand) (*usecases.ManageTrashResult, error) {
	m.cmd = cmd
	if m.err != nil {
		return nil, m.err
	}
	return &usecases.ManageTrashResult{Affected: cmd.ReportIDs}, nil
}

type mockMergeUC struct {
	cmd usecases.MergeDuplicatesCommand
	err error
}

func (m *mockMergeUC) Execute(_ context.Context, cmd usecases.MergeDuplicatesCommand) (*usecases.MergeDuplicatesResult, error) {
	m.cmd = cmd
	if m.err != nil {
		return nil, m.err
	}
	return &usecases.MergeDuplicatesResult{PrimaryID: cmd.PrimaryID, Merged: cmd.DuplicateIDs}, nil
}

type mockStatsUC struct {
	query usecases.GetReportStatsQuery
}

func (m *mockStatsUC) Execute(_ context.Context, q usecases.GetReportStatsQuery) (*reportdto.ReportStatsDTO, error) {
	m.query = q
	return &reportdto.ReportStatsDTO{Year: q.Year, ByStatus: map[string]int64{}}, nil
}

// =====================================================================
// Test helpers
// =====================================================================

type adminDeps struct {
	list   *mockListUC
	get    *mockGetUC
	status *mockStatusUC
	trash  *mockTrashUC
	dup    *mockCheckDupUC
	merge  *mockMergeUC
	stats  *mockStatsUC
}

func newTestAdminHandler() (*AdminHandler, adminDeps) {
	d := adminDeps{
		list:   &mockListUC{result: &usecases.ListReportsResult{Page: 1, PageSize: 20}},
		get:    &mockGetUC{},
		status: &mockStatusUC{},
		trash:  &mockTrashUC{},
		dup:    &mockCheckDupUC{result: &reportdto.DuplicateCheckDTO{Matches: []reportdto.DuplicateMatchDTO{}}},
		merge:  &mockMergeUC{},
		stats:  &mockStatsUC{},
	}
	h := NewAdminHandler(d.list, d.get, d.status, d.trash, d.dup, d.merge, d.stats, testutil.NewMockLogger())
	return h, d
}

func parse(t *testing.T, body []byte) testutil.APIResponse {
	t.Helper()
	var resp testutil.APIResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	return resp
}

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 32)...)

// =====================================================================
// Public endpoints
// =====================================================================

func TestPublicHandler_SubmitReport_Success(t *testing.T) {
	submit := &mockSubmitUC{result: &usecases.SubmitReportResult{
		ReportID:     1,
		TrackingCode: "CW-20250611-001",
		Location:     "Poblacion, Proper",
		Priority:     "High",
		Status:       "pending",
		IsEmergency:  true,
		CreatedAt:    time.Date(2025, 6, 11, 2, 0, 0, 0, time.UTC),
	}}
	h := NewPublicHandler(submit, &mockTrackUC{}, &mockCheckDupUC{}, testutil.NewMockLogger())

	c, w := testutil.NewMultipartContext(http.MethodPost, "/api/reports", map[string]string{
		"title":                "Grass fire",
		"issue_type":           "Fire",
		"description":          "Smoke near the school",
		"barangay_id":          "1",
		"sitio_id":             "10",
		"latitude":             "14.5995",
		"longitude":            "120.9842",
		"sender_name":          "Juan Dela Cruz",
		"contact_number":       "09171234567",
		"g-recaptcha-response": "token",
	}, testutil.MultipartFile{Field: "image", Filename: "fire.png", Data: pngBytes})

	h.SubmitReport(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	resp := parse(t, w.Body.Bytes())
	assert.True(t, resp.Success)
	assert.Contains(t, resp.Message, "CW-20250611-001")

	var data SubmitReportResponse
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.Equal(t, "CW-20250611-001", data.TrackingCode)
	assert.True(t, data.IsEmergency)

	assert.Equal(t, uint(1), submit.cmd.BarangayID)
	assert.Equal(t, uint(10), submit.cmd.SitioID)
	require.NotNil(t, submit.cmd.Latitude)
	assert.InDelta(t, 14.5995, *submit.cmd.Latitude, 1e-9)
	require.NotNil(t, submit.cmd.Image)
	assert.Equal(t, "fire.png", submit.cmd.Image.Filename)
	assert.Equal(t, pngBytes, submit.cmd.Image.Data)
	assert.Equal(t, "token", submit.cmd.CaptchaToken)
}

func TestPublicHandler_SubmitReport_NonNumericIDs(t *testing.T) {
	submit := &mockSubmitUC{}
	h := NewPublicHandler(submit, &mockTrackUC{}, &mockCheckDupUC{}, testutil.NewMockLogger())

	c, w := testutil.NewMultipartContext(http.MethodPost, "/api/reports", map[string]string{
		"barangay_id": "one",
		"sitio_id":    "10",
	})
	h.SubmitReport(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := parse(t, w.Body.Bytes())
	require.NotNil(t, resp.Error)
	assert.Equal(t, "The barangay id must be an integer.", resp.Error.Fields["barangay_id"])
	assert.Empty(t, submit.cmd.SitioID, "use case not called")
}

func TestPublicHandler_SubmitReport_WithoutImage(t *testing.T) {
	submit := &mockSubmitUC{result: &usecases.SubmitReportResult{TrackingCode: "CW-20250611-002"}}
	h := NewPublicHandler(submit, &mockTrackUC{}, &mockCheckDupUC{}, testutil.NewMockLogger())

	c, w := testutil.NewMultipartContext(http.MethodPost, "/api/reports", map[string]string{"title": "x"})
	h.SubmitReport(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Nil(t, submit.cmd.Image)
}

func TestPublicHandler_SubmitReport_ValidationError(t *testing.T) {
	submit := &mockSubmitUC{err: errors.NewFieldsValidationError(map[string]string{
		"barangay_id": "Selected barangay is not yet available for reporting.",
	})}
	h := NewPublicHandler(submit, &mockTrackUC{}, &mockCheckDupUC{}, testutil.NewMockLogger())

	c, w := testutil.NewMultipartContext(http.MethodPost, "/api/reports", map[string]string{"barangay_id": "2"})
	h.SubmitReport(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := parse(t, w.Body.Bytes())
	assert.False(t, resp.Success)
	assert.Equal(t, "Selected barangay is not yet available for reporting.", resp.Error.Fields["barangay_id"])
}

func TestPublicHandler_TrackReport(t *testing.T) {
	track := &mockTrackUC{result: &reportdto.TrackedReportDTO{TrackingCode: "CW-20250611-001", Status: "pending"}}
	h := NewPublicHandler(&mockSubmitUC{}, track, &mockCheckDupUC{}, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodGet, "/api/reports/track/cw-20250611-001", nil)
	testutil.SetURLParam(c, "code", "cw-20250611-001")
	h.TrackReport(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "cw-20250611-001", track.query.TrackingCode)
}

func TestPublicHandler_TrackReport_NotFound(t *testing.T) {
	track := &mockTrackUC{err: errors.NewNotFoundError(usecases.ErrMsgTrackingCodeUnknown)}
	h := NewPublicHandler(&mockSubmitUC{}, track, &mockCheckDupUC{}, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodGet, "/api/reports/track/CW-1", nil)
	testutil.SetURLParam(c, "code", "CW-1")
	h.TrackReport(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	resp := parse(t, w.Body.Bytes())
	assert.Equal(t, usecases.ErrMsgTrackingCodeUnknown, resp.Error.Message)
}

func TestPublicHandler_CheckDuplicates(t *testing.T) {
	dup := &mockCheckDupUC{result: &reportdto.DuplicateCheckDTO{Matches: []reportdto.DuplicateMatchDTO{}}}
	h := NewPublicHandler(&mockSubmitUC{}, &mockTrackUC{}, dup, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodPost, "/api/reports/duplicates/check", CheckDuplicatesRequest{
		Title:      "Broken streetlight",
		IssueType:  "Streetlight",
		BarangayID: 1,
		SitioID:    10,
	})
	h.CheckDuplicates(c)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, dup.query.Draft)
	assert.Equal(t, "Broken streetlight", dup.query.Draft.Title)
	assert.Zero(t, dup.query.ReportID)
}

func TestPublicHandler_CheckDuplicates_HidesMatchedReports(t *testing.T) {
	match := reportdto.DuplicateMatchDTO{
		Report: reportdto.ReportListItemDTO{
			ID:           4,
			TrackingCode: "CW-20250611-004",
			Title:        "Broken streetlight near the chapel",
			Status:       "in_progress",
		},
		Score:   0.92,
		Reasons: []string{"Same location (Barangay and Sitio)", "Same issue type"},
	}
	dup := &mockCheckDupUC{result: &reportdto.DuplicateCheckDTO{
		IsDuplicate: true,
		Matches:     []reportdto.DuplicateMatchDTO{match},
		BestMatch:   &match,
	}}
	h := NewPublicHandler(&mockSubmitUC{}, &mockTrackUC{}, dup, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodPost, "/api/reports/duplicates/check", CheckDuplicatesRequest{
		Title:      "Broken streetlight",
		IssueType:  "Streetlight",
		BarangayID: 1,
		SitioID:    10,
	})
	h.CheckDuplicates(c)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.NotContains(t, body, "CW-20250611-004")
	assert.NotContains(t, body, "near the chapel")
	assert.NotContains(t, body, `"report"`)
	assert.Contains(t, body, `"is_duplicate":true`)
	assert.Contains(t, body, `"similarity_score":0.92`)
	assert.Contains(t, body, "Same issue type")
}

func TestPublicHandler_CheckDuplicates_MissingFields(t *testing.T) {
	h := NewPublicHandler(&mockSubmitUC{}, &mockTrackUC{}, &mockCheckDupUC{}, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodPost, "/api/reports/duplicates/check", CheckDuplicatesRequest{Title: "x"})
	h.CheckDuplicates(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := parse(t, w.Body.Bytes())
	assert.Equal(t, "The issue type field is required.", resp.Error.Fields["issue_type"])
	assert.Equal(t, "The barangay id field is required.", resp.Error.Fields["barangay_id"])
}

// =====================================================================
// Admin endpoints
// =====================================================================

func TestAdminHandler_ListReports(t *testing.T) {
	h, d := newTestAdminHandler()

	c, w := testutil.NewTestContext(http.MethodGet, "/api/admin/reports", nil)
	testutil.SetQueryParams(c, map[string]string{
		"status":       "pending",
		"is_emergency": "true",
		"barangay_id":  "3",
		"search":       "fire",
		"page":         "2",
	})
	h.ListReports(c)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, d.list.query.Status)
	assert.Equal(t, "pending", *d.list.query.Status)
	require.NotNil(t, d.list.query.Emergency)
	assert.True(t, *d.list.query.Emergency)
	assert.Equal(t, uint(3), d.list.query.BarangayID)
	assert.Equal(t, 2, d.list.query.Page)
}

func TestAdminHandler_ListReports_BadEmergencyFlag(t *testing.T) {
	h, _ := newTestAdminHandler()

	c, w := testutil.NewTestContext(http.MethodGet, "/api/admin/reports", nil)
	testutil.SetQueryParams(c, map[string]string{"is_emergency": "maybe"})
	h.ListReports(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminHandler_GetReport_InvalidID(t *testing.T) {
	h, _ := newTestAdminHandler()

	c, w := testutil.NewTestContext(http.MethodGet, "/api/admin/reports/abc", nil)
	testutil.SetURLParam(c, "id", "abc")
	h.GetReport(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminHandler_RejectReport(t *testing.T) {
	h, d := newTestAdminHandler()

	c, w := testutil.NewTestContext(http.MethodPost, "/api/admin/reports/7/reject", StatusChangeRequest{Reason: "Not within jurisdiction"})
	testutil.SetURLParam(c, "id", "7")
	testutil.SetStaffContext(c, "staff-1", "Kagawad Reyes")
	h.RejectReport(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, usecases.ActionReject, d.status.cmd.Action)
	assert.Equal(t, []uint{7}, d.status.cmd.ReportIDs)
	assert.Equal(t, "Not within jurisdiction", d.status.cmd.Reason)
	assert.Equal(t, "Kagawad Reyes", d.status.cmd.StaffName)
}

func TestAdminHandler_ApproveReport_EmptyBody(t *testing.T) {
	h, d := newTestAdminHandler()

	c, w := testutil.NewTestContext(http.MethodPost, "/api/admin/reports/7/approve", nil)
	testutil.SetURLParam(c, "id", "7")
	h.ApproveReport(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, usecases.ActionApprove, d.status.cmd.Action)
}

func TestAdminHandler_ApproveReport_InvalidTransition(t *testing.T) {
	h, d := newTestAdminHandler()
	d.status.err = errors.NewConflictError("cannot approve a resolved report")

	c, w := testutil.NewTestContext(http.MethodPost, "/api/admin/reports/7/approve", nil)
	testutil.SetURLParam(c, "id", "7")
	h.ApproveReport(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAdminHandler_BulkRevert(t *testing.T) {
	h, d := newTestAdminHandler()

	c, w := testutil.NewTestContext(http.MethodPost, "/api/admin/reports/bulk/revert", BulkRequest{IDs: []uint{1, 2, 3}})
	h.BulkChangeStatus(usecases.ActionRevert)(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, usecases.ActionRevert, d.status.cmd.Action)
	assert.Equal(t, []uint{1, 2, 3}, d.status.cmd.ReportIDs)
}

func TestAdminHandler_BulkRequiresIDs(t *testing.T) {
	h, _ := newTestAdminHandler()

	c, w := testutil.NewTestContext(http.MethodPost, "/api/admin/reports/bulk/approve", BulkRequest{})
	h.BulkChangeStatus(usecases.ActionApprove)(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := parse(t, w.Body.Bytes())
	assert.Equal(t, "The ids field is required.", resp.Error.Fields["ids"])
}

func TestAdminHandler_TrashActions(t *testing.T) {
	tests := []struct {
		name   string
		call   func(h *AdminHandler) gin.HandlerFunc
		action usecases.TrashAction
	}{
		{"trash", func(h *AdminHandler) gin.HandlerFunc { return h.TrashReport }, usecases.ActionTrash},
		{"restore", func(h *AdminHandler) gin.HandlerFunc { return h.RestoreReport }, usecases.ActionRestore},
		{"force", func(h *AdminHandler) gin.HandlerFunc { return h.ForceDeleteReport }, usecases.ActionForceDelete},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, d := newTestAdminHandler()
			c, w := testutil.NewTestContext(http.MethodDelete, "/api/admin/reports/9", nil)
			testutil.SetURLParam(c, "id", "9")

			tt.call(h)(c)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.action, d.trash.cmd.Action)
			assert.Equal(t, []uint{9}, d.trash.cmd.ReportIDs)
		})
	}
}

func TestAdminHandler_MergeDuplicates(t *testing.T) {
	h, d := newTestAdminHandler()

	c, w := testutil.NewTestContext(http.MethodPost, "/api/admin/reports/duplicates/merge", MergeDuplicatesRequest{
		PrimaryID:    1,
		DuplicateIDs: []uint{2, 3},
	})
	testutil.SetStaffContext(c, "staff-1", "Kagawad Reyes")
	h.MergeDuplicates(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, d.merge.cmd.FoldRemarks)
	assert.Equal(t, "Kagawad Reyes", d.merge.cmd.MergedBy)

	resp := parse(t, w.Body.Bytes())
	var data usecases.MergeDuplicatesResult
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.Equal(t, []uint{2, 3}, data.Merged)
}

func TestAdminHandler_MergeDuplicates_Failure(t *testing.T) {
	h, d := newTestAdminHandler()
	d.merge.err = errors.NewInternalError(usecases.ErrMsgMergeFailed)

	c, w := testutil.NewTestContext(http.MethodPost, "/api/admin/reports/duplicates/merge", MergeDuplicatesRequest{
		PrimaryID:    1,
		DuplicateIDs: []uint{2},
	})
	h.MergeDuplicates(c)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	resp := parse(t, w.Body.Bytes())
	assert.Equal(t, usecases.ErrMsgMergeFailed, resp.Error.Message)
}

func TestAdminHandler_FindDuplicates(t *testing.T) {
	h, d := newTestAdminHandler()

	c, w := testutil.NewTestContext(http.MethodGet, "/api/admin/reports/4/duplicates", nil)
	testutil.SetURLParam(c, "id", "4")
	testutil.SetQueryParams(c, map[string]string{"window_hours": "48", "threshold": "0.8"})
	h.FindDuplicates(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, uint(4), d.dup.query.ReportID)
	assert.Equal(t, 48, d.dup.query.WindowHours)
	assert.InDelta(t, 0.8, d.dup.query.Threshold, 1e-9)
}

func TestAdminHandler_GetStats(t *testing.T) {
	h, d := newTestAdminHandler()

	c, w := testutil.NewTestContext(http.MethodGet, "/api/admin/reports/stats", nil)
	testutil.SetQueryParams(c, map[string]string{"year": "2024"})
	h.GetStats(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2024, d.stats.query.Year)

	c, w = testutil.NewTestContext(http.MethodGet, "/api/admin/reports/stats", nil)
	testutil.SetQueryParams(c, map[string]string{"year": "last"})
	h.GetStats(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
