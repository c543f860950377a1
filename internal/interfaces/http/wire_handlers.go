package http

import (
	placeHandlers "github.com/civicwatch/civicwatch/internal/interfaces/http/handlers/place"
	reportHandlers "github.com/civicwatch/civicwatch/internal/interfaces/http/handlers/report"
)

type allHandlers struct {
	publicReportHandler *reportHandlers.PublicHandler
	adminReportHandler  *reportHandlers.AdminHandler
	placeHandler        *placeHandlers.PlaceHandler
}

func (c *Container) initHandlers() {
	log := c.log.Named("http")
	c.hdlrs = &allHandlers{
		publicReportHandler: reportHandlers.NewPublicHandler(
			c.ucs.submitReport,
			c.ucs.trackReport,
			c.ucs.checkDuplicates,
			log,
		),
		adminReportHandler: reportHandlers.NewAdminHandler(
			c.ucs.listReports,
			c.ucs.getReport,
			c.ucs.changeStatus,
			c.ucs.manageTrash,
			c.ucs.checkDuplicates,
			c.ucs.mergeDuplicates,
			c.ucs.reportStats,
			log,
		),
		placeHandler: placeHandlers.NewPlaceHandler(c.ucs.listPlaces, log),
	}
}
