package http

import (
	"github.com/civicwatch/civicwatch/internal/infrastructure/repository"
	"github.com/civicwatch/civicwatch/internal/shared/db"
)

type repositories struct {
	reportRepo    *repository.ReportRepository
	placeRepo     *repository.PlaceRepository
	issueTypeRepo *repository.IssueTypeRepository
	txManager     *db.TransactionManager
}

func (c *Container) initRepositories() {
	c.repos = &repositories{
		reportRepo:    repository.NewReportRepository(c.db),
		placeRepo:     repository.NewPlaceRepository(c.db),
		issueTypeRepo: repository.NewIssueTypeRepository(c.db),
		txManager:     db.NewTransactionManager(c.db),
	}
}
