package seed

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/civicwatch/civicwatch/internal/application/place/usecases"
	"github.com/civicwatch/civicwatch/internal/infrastructure/migration"
	"github.com/civicwatch/civicwatch/internal/infrastructure/repository"
	"github.com/civicwatch/civicwatch/internal/interfaces/cli/bootstrap"
	"github.com/civicwatch/civicwatch/internal/shared/db"
)

//go:embed default.yaml
var defaultSeed []byte

var (
	env  string
	file string
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load issue types, barangays and sitios",
		Long: `Upsert the reference data used by report submission. Without --file the
built-in data set is loaded. Running the command twice changes nothing.`,
		RunE: run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML file with issue_types and barangays")

	return cmd
}

// Parse decodes a seed document, rejecting unknown keys.
func Parse(data []byte) (usecases.SeedPlacesCommand, error) {
	var seed usecases.SeedPlacesCommand
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&seed); err != nil {
		return seed, fmt.Errorf("failed to parse seed data: %w", err)
	}
	return seed, nil
}

func run(cmd *cobra.Command, args []string) error {
	data := defaultSeed
	if file != "" {
		b, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read seed file: %w", err)
		}
		data = b
	}

	seed, err := Parse(data)
	if err != nil {
		return err
	}

	rt, err := bootstrap.Init(env, true)
	if err != nil {
		return err
	}
	defer rt.Close()

	if rt.Config.Database.Driver == "sqlite" {
		if err := migration.NewManager("sqlite", rt.Logger).Migrate(rt.DB); err != nil {
			return err
		}
	}

	uc := usecases.NewSeedPlacesUseCase(
		repository.NewPlaceRepository(rt.DB),
		repository.NewIssueTypeRepository(rt.DB),
		db.NewTransactionManager(rt.DB),
		rt.Logger.Named("seed"),
	)
	result, err := uc.Execute(cmd.Context(), seed)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d issue types, %d barangays and %d sitios\n",
		result.IssueTypes, result.Barangays, result.Sitios)
	return nil
}
