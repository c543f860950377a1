package http

import (
	placeUsecases "github.com/civicwatch/civicwatch/internal/application/place/usecases"
	reportUsecases "github.com/civicwatch/civicwatch/internal/application/report/usecases"
	"github.com/civicwatch/civicwatch/internal/infrastructure/cache"
)

type allUseCases struct {
	submitReport    *reportUsecases.SubmitReportUseCase
	trackReport     *reportUsecases.TrackReportUseCase
	getReport       *reportUsecases.GetReportUseCase
	listReports     *reportUsecases.ListReportsUseCase
	changeStatus    *reportUsecases.ChangeReportStatusUseCase
	manageTrash     *reportUsecases.ManageTrashUseCase
	checkDuplicates *reportUsecases.CheckDuplicatesUseCase
	mergeDuplicates *reportUsecases.MergeDuplicatesUseCase
	reportStats     *reportUsecases.GetReportStatsUseCase
	listPlaces      *placeUsecases.ListPlacesUseCase
}

func (c *Container) initUseCases() {
	log := c.log.Named("reports")
	r := c.repos

	c.ucs = &allUseCases{
		submitReport: reportUsecases.NewSubmitReportUseCase(
			c.svcs.placeGuard,
			c.svcs.verifier,
			c.svcs.blobs,
			c.svcs.analyzer,
			c.svcs.classifier,
			c.svcs.allocator,
			c.gateway,
			c.svcs.sanitizer,
			reportUsecases.SubmitReportConfig{
				MaxImageBytes:     int64(c.cfg.Report.MaxImageSizeKB) * 1024,
				AllowedImageTypes: c.cfg.Report.AllowedImageTypes,
			},
			log,
		),
		trackReport:     reportUsecases.NewTrackReportUseCase(r.reportRepo, log),
		getReport:       reportUsecases.NewGetReportUseCase(r.reportRepo, log),
		listReports:     reportUsecases.NewListReportsUseCase(r.reportRepo, log),
		changeStatus:    reportUsecases.NewChangeReportStatusUseCase(r.reportRepo, r.txManager, log),
		manageTrash:     reportUsecases.NewManageTrashUseCase(r.reportRepo, r.txManager, c.svcs.blobs, log),
		checkDuplicates: reportUsecases.NewCheckDuplicatesUseCase(r.reportRepo, c.svcs.detector, log),
		mergeDuplicates: reportUsecases.NewMergeDuplicatesUseCase(r.reportRepo, r.txManager, log),
		reportStats:     reportUsecases.NewGetReportStatsUseCase(r.reportRepo, log),
		listPlaces:      placeUsecases.NewListPlacesUseCase(r.placeRepo, r.issueTypeRepo, c.log.Named("places")),
	}

	if c.redis != nil {
		c.ucs.listPlaces.SetCache(cache.NewRedisPlacesCache(c.redis, c.log.Named("cache")))
	}
}
