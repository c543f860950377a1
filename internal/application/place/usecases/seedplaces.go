package usecases

import (
	"context"
	"fmt"

	"github.com/civicwatch/civicwatch/internal/domain/issuetype"
	"github.com/civicwatch/civicwatch/internal/domain/place"
	vo "github.com/civicwatch/civicwatch/internal/domain/report/valueobjects"
	"github.com/civicwatch/civicwatch/internal/shared/db"
	"github.com/civicwatch/civicwatch/internal/shared/logger"
)

type SeedIssueType struct {
	Name     string `yaml:"name"`
	Priority string `yaml:"priority"`
	Active   *bool  `yaml:"active"`
}

type SeedSitio struct {
	Name      string `yaml:"name"`
	Available *bool  `yaml:"available"`
}

type SeedBarangay struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Available   bool        `yaml:"available"`
	Sitios      []SeedSitio `yaml:"sitios"`
}

// SeedPlacesCommand is the reference data loaded by the seed command.
type SeedPlacesCommand struct {
	IssueTypes []SeedIssueType `yaml:"issue_types"`
	Barangays  []SeedBarangay  `yaml:"barangays"`
}

type SeedPlacesResult struct {
	IssueTypes int
	Barangays  int
	Sitios     int
}

// SeedPlacesUseCase upserts issue types, barangays and sitios by name, so
// running it twice changes nothing.
type SeedPlacesUseCase struct {
	placeRepo     place.Repository
	issueTypeRepo issuetype.Repository
	txManager     db.Transactor
	logger        logger.Interface
}

func NewSeedPlacesUseCase(placeRepo place.Repository, issueTypeRepo issuetype.Repository, txManager db.Transactor, logger logger.Interface) *SeedPlacesUseCase {
	return &SeedPlacesUseCase{
		placeRepo:     placeRepo,
		issueTypeRepo: issueTypeRepo,
		txManager:     txManager,
		logger:        logger,
	}
}

func (uc *SeedPlacesUseCase) Execute(ctx context.Context, cmd SeedPlacesCommand) (*SeedPlacesResult, error) {
	issueTypes, err := buildIssueTypes(cmd.IssueTypes)
	if err != nil {
		return nil, err
	}
	barangays, sitios, err := buildBarangays(cmd.Barangays)
	if err != nil {
		return nil, err
	}

	err = uc.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		for _, it := range issueTypes {
			if err := uc.issueTypeRepo.Upsert(ctx, it); err != nil {
				return fmt.Errorf("failed to seed issue type %q: %w", it.Name, err)
			}
		}
		for _, b := range barangays {
			if err := uc.placeRepo.UpsertBarangay(ctx, b); err != nil {
				return fmt.Errorf("failed to seed barangay %q: %w", b.Name, err)
			}
		}
		return nil
	})
	if err != nil {
		uc.logger.Errorw("seeding failed", "error", err)
		return nil, err
	}

	uc.logger.Infow("reference data seeded",
		"issue_types", len(issueTypes),
		"barangays", len(barangays),
		"sitios", sitios,
	)
	return &SeedPlacesResult{IssueTypes: len(issueTypes), Barangays: len(barangays), Sitios: sitios}, nil
}

func buildIssueTypes(in []SeedIssueType) ([]*issuetype.IssueType, error) {
	out := make([]*issuetype.IssueType, 0, len(in))
	for _, s := range in {
		var priority vo.Priority
		if s.Priority != "" {
			p, err := vo.NewPriority(s.Priority)
			if err != nil {
				return nil, fmt.Errorf("issue type %q: %w", s.Name, err)
			}
			priority = p
		}
		it, err := issuetype.NewIssueType(s.Name, priority)
		if err != nil {
			return nil, err
		}
		if s.Active != nil {
			it.Active = *s.Active
		}
		out = append(out, it)
	}
	return out, nil
}

func buildBarangays(in []SeedBarangay) ([]*place.Barangay, int, error) {
	out := make([]*place.Barangay, 0, len(in))
	sitios := 0
	for _, s := range in {
		if s.Name == "" {
			return nil, 0, fmt.Errorf("barangay name is required")
		}
		b := &place.Barangay{Name: s.Name, Description: s.Description, IsAvailable: s.Available}
		for _, st := range s.Sitios {
			if st.Name == "" {
				return nil, 0, fmt.Errorf("barangay %q: sitio name is required", s.Name)
			}
			available := true
			if st.Available != nil {
				available = *st.Available
			}
			b.Sitios = append(b.Sitios, place.Sitio{Name: st.Name, IsAvailable: available})
			sitios++
		}
		out = append(out, b)
	}
	return out, sitios, nil
}
