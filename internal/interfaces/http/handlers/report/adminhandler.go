package report

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/civicwatch/civicwatch/internal/application/report/usecases"
	"github.com/civicwatch/civicwatch/internal/interfaces/http/middleware"
	"github.com/civicwatch/civicwatch/internal/shared/errors"
	"github.com/civicwatch/civicwatch/internal/shared/logger"
	"github.com/civicwatch/civicwatch/internal/shared/utils"
)

// AdminHandler serves the staff report management endpoints.
type AdminHandler struct {
	listUC     usecases.ListReportsExecutor
	getUC      usecases.GetReportExecutor
	statusUC   usecases.ChangeReportStatusExecutor
	trashUC    usecases.ManageTrashExecutor
	checkDupUC usecases.CheckDuplicatesExecutor
	mergeUC    usecases.MergeDuplicatesExecutor
	statsUC    usecases.GetReportStatsExecutor
	logger     logger.Interface
}

func NewAdminHandler(
	listUC usecases.ListReportsExecutor,
	getUC usecases.GetReportExecutor,
	statusUC usecases.ChangeReportStatusExecutor,
	trashUC usecases.ManageTrashExecutor,
	checkDupUC usecases.CheckDuplicatesExecutor,
	mergeUC usecases.MergeDuplicatesExecutor,
	statsUC usecases.GetReportStatsExecutor,
	logger logger.Interface,
) *AdminHandler {
	return &AdminHandler{
		listUC:     listUC,
		getUC:      getUC,
		statusUC:   statusUC,
		trashUC:    trashUC,
		checkDupUC: checkDupUC,
		mergeUC:    mergeUC,
		statsUC:    statsUC,
		logger:     logger,
	}
}

// ListReports handles GET /api/admin/reports
func (h *AdminHandler) ListReports(c *gin.Context) {
	query, err := parseListReportsQuery(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.listUC.Execute(c.Request.Context(), query)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.ListSuccessResponse(c, result.Reports, result.TotalCount, result.Page, result.PageSize)
}

// GetReport handles GET /api/admin/reports/:id
func (h *AdminHandler) GetReport(c *gin.Context) {
	id, err := utils.ParseUintParam(c, "id", "report")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.getUC.Execute(c.Request.Context(), usecases.GetReportQuery{ReportID: id})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

// FindDuplicates handles GET /api/admin/reports/:id/duplicates
func (h *AdminHandler) FindDuplicates(c *gin.Context) {
	id, err := utils.ParseUintParam(c, "id", "report")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	windowHours, threshold, err := parseDuplicateOptions(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.checkDupUC.Execute(c.Request.Context(), usecases.CheckDuplicatesQuery{
		ReportID:    id,
		WindowHours: windowHours,
		Threshold:   threshold,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

// MergeDuplicates handles POST /api/admin/reports/duplicates/merge
func (h *AdminHandler) MergeDuplicates(c *gin.Context) {
	var req MergeDuplicatesRequest
	if err := bindJSON(c, &req, false); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	fold := true
	if req.FoldRemarks != nil {
		fold = *req.FoldRemarks
	}

	result, err := h.mergeUC.Execute(c.Request.Context(), usecases.MergeDuplicatesCommand{
		PrimaryID:    req.PrimaryID,
		DuplicateIDs: req.DuplicateIDs,
		FoldRemarks:  fold,
		MergedBy:     middleware.StaffName(c),
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Reports marked as duplicates successfully", result)
}

// ApproveReport handles POST /api/admin/reports/:id/approve
func (h *AdminHandler) ApproveReport(c *gin.Context) {
	h.changeOne(c, usecases.ActionApprove, "Report approved successfully")
}

// ResolveReport handles POST /api/admin/reports/:id/resolve
func (h *AdminHandler) ResolveReport(c *gin.Context) {
	h.changeOne(c, usecases.ActionResolve, "Report marked as resolved")
}

// RejectReport handles POST /api/admin/reports/:id/reject
func (h *AdminHandler) RejectReport(c *gin.Context) {
	h.changeOne(c, usecases.ActionReject, "Report rejected")
}

func (h *AdminHandler) changeOne(c *gin.Context, action usecases.StatusAction, message string) {
	id, err := utils.ParseUintParam(c, "id", "report")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	var req StatusChangeRequest
	if err := bindJSON(c, &req, true); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.statusUC.Execute(c.Request.Context(), usecases.ChangeReportStatusCommand{
		ReportIDs:  []uint{id},
		Action:     action,
		Reason:     req.Reason,
		Resolution: req.Resolution,
		StaffName:  middleware.StaffName(c),
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, message, result.Reports[0])
}

// BulkChangeStatus handles POST /api/admin/reports/bulk/{approve,resolve,reject,revert}
func (h *AdminHandler) BulkChangeStatus(action usecases.StatusAction) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req BulkRequest
		if err := bindJSON(c, &req, false); err != nil {
			utils.ErrorResponseWithError(c, err)
			return
		}

		result, err := h.statusUC.Execute(c.Request.Context(), usecases.ChangeReportStatusCommand{
			ReportIDs:  req.IDs,
			Action:     action,
			Reason:     req.Reason,
			Resolution: req.Resolution,
			StaffName:  middleware.StaffName(c),
		})
		if err != nil {
			utils.ErrorResponseWithError(c, err)
			return
		}

		utils.SuccessResponse(c, http.StatusOK, strconv.Itoa(len(result.Reports))+" reports updated", result.Reports)
	}
}

// BulkTrash handles POST /api/admin/reports/bulk/{trash,restore,force-delete}
func (h *AdminHandler) BulkTrash(action usecases.TrashAction) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req BulkRequest
		if err := bindJSON(c, &req, false); err != nil {
			utils.ErrorResponseWithError(c, err)
			return
		}
		h.runTrash(c, action, req.IDs)
	}
}

// TrashReport handles DELETE /api/admin/reports/:id
func (h *AdminHandler) TrashReport(c *gin.Context) {
	h.trashOne(c, usecases.ActionTrash)
}

// RestoreReport handles POST /api/admin/reports/:id/restore
func (h *AdminHandler) RestoreReport(c *gin.Context) {
	h.trashOne(c, usecases.ActionRestore)
}

// ForceDeleteReport handles DELETE /api/admin/reports/:id/force
func (h *AdminHandler) ForceDeleteReport(c *gin.Context) {
	h.trashOne(c, usecases.ActionForceDelete)
}

func (h *AdminHandler) trashOne(c *gin.Context, action usecases.TrashAction) {
	id, err := utils.ParseUintParam(c, "id", "report")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	h.runTrash(c, action, []uint{id})
}

func (h *AdminHandler) runTrash(c *gin.Context, action usecases.TrashAction, ids []uint) {
	result, err := h.trashUC.Execute(c.Request.Context(), usecases.ManageTrashCommand{
		ReportIDs: ids,
		Action:    action,
		StaffName: middleware.StaffName(c),
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	messages := map[usecases.TrashAction]string{
		usecases.ActionTrash:       "Reports moved to trash",
		usecases.ActionRestore:     "Reports restored",
		usecases.ActionForceDelete: "Reports permanently deleted",
	}
	utils.SuccessResponse(c, http.StatusOK, messages[action], gin.H{"affected": result.Affected})
}

// GetStats handles GET /api/admin/reports/stats
func (h *AdminHandler) GetStats(c *gin.Context) {
	var query usecases.GetReportStatsQuery
	if s := c.Query("year"); s != "" {
		year, err := strconv.Atoi(s)
		if err != nil {
			utils.ErrorResponseWithError(c, errors.NewFieldValidationError("year", "The year must be a valid year."))
			return
		}
		query.Year = year
	}

	result, err := h.statsUC.Execute(c.Request.Context(), query)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}
