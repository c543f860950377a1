package place

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/civicwatch/civicwatch/internal/application/place/usecases"
	"github.com/civicwatch/civicwatch/internal/shared/logger"
	"github.com/civicwatch/civicwatch/internal/shared/utils"
)

type PlaceHandler struct {
	listPlacesUC usecases.ListPlacesExecutor
	logger       logger.Interface
}

func NewPlaceHandler(listPlacesUC usecases.ListPlacesExecutor, logger logger.Interface) *PlaceHandler {
	return &PlaceHandler{listPlacesUC: listPlacesUC, logger: logger}
}

// ListPlaces handles GET /api/places. Pass ?all=true to include places not
// yet accepting reports.
func (h *PlaceHandler) ListPlaces(c *gin.Context) {
	result, err := h.listPlacesUC.Execute(c.Request.Context(), usecases.ListPlacesQuery{
		AvailableOnly: c.Query("all") != "true",
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	c.Header("Cache-Control", "public, max-age=300")
	utils.SuccessResponse(c, http.StatusOK, "", result)
}
