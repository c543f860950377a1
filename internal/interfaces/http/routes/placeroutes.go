package routes

import (
	"github.com/gin-gonic/gin"

	placehandlers "github.com/civicwatch/civicwatch/internal/interfaces/http/handlers/place"
)

type PlaceRouteConfig struct {
	PlaceHandler *placehandlers.PlaceHandler
}

func SetupPlaceRoutes(engine *gin.Engine, config *PlaceRouteConfig) {
	engine.GET("/api/places", config.PlaceHandler.ListPlaces)
}
