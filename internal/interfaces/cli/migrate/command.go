package migrate

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"

	"github.com/civicwatch/civicwatch/internal/infrastructure/migration"
	"github.com/civicwatch/civicwatch/internal/interfaces/cli/bootstrap"
)

const defaultScriptsDir = "./internal/infrastructure/migration/scripts"

var (
	env        string
	name       string
	scriptsDir string
	steps      int
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration tools",
		Long:  `Manage database migrations including running migrations, checking status, and creating new migration files.`,
	}

	cmd.PersistentFlags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")

	cmd.AddCommand(
		newUpCommand(),
		newDownCommand(),
		newStatusCommand(),
		newCreateCommand(),
	)

	return cmd
}

func newUpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Run all pending migrations",
		Long:  `Apply all pending database migrations to bring the database schema up to date.`,
		RunE:  runUp,
	}
}

func newDownCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "down",
		Short: "Rollback migrations",
		Long:  `Rollback a specified number of database migrations. Only MySQL databases keep a version history.`,
		RunE:  runDown,
	}

	cmd.Flags().IntVarP(&steps, "steps", "n", 1, "Number of migrations to rollback")

	return cmd
}

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		Long:  `Display the current migration version and status of the database.`,
		RunE:  runStatus,
	}
}

func newCreateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new migration",
		Long:  `Create a new timestamped SQL migration file.`,
		RunE:  runCreate,
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Name of the migration (required)")
	cmd.Flags().StringVar(&scriptsDir, "dir", defaultScriptsDir, "Directory holding migration scripts")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func runUp(cmd *cobra.Command, args []string) error {
	rt, err := bootstrap.Init(env, true)
	if err != nil {
		return err
	}
	defer rt.Close()

	rt.Logger.Infow("running up migrations", "environment", env, "driver", rt.Config.Database.Driver)
	return migration.NewManager(rt.Config.Database.Driver, rt.Logger).Migrate(rt.DB)
}

func runDown(cmd *cobra.Command, args []string) error {
	rt, err := bootstrap.Init(env, true)
	if err != nil {
		return err
	}
	defer rt.Close()

	rt.Logger.Infow("running down migrations", "environment", env, "steps", steps)
	if err := migration.NewManager(rt.Config.Database.Driver, rt.Logger).Down(rt.DB, steps); err != nil {
		return fmt.Errorf("down migration failed: %w", err)
	}

	rt.Logger.Infow("down migration completed successfully")
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	rt, err := bootstrap.Init(env, true)
	if err != nil {
		return err
	}
	defer rt.Close()

	m := migration.NewManager(rt.Config.Database.Driver, rt.Logger)
	version, err := m.Version(rt.DB)
	if err != nil {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\nMigration Status:\n")
	fmt.Fprintf(out, "  Environment:     %s\n", env)
	fmt.Fprintf(out, "  Strategy:        %s\n", m.GetStrategy().GetName())
	fmt.Fprintf(out, "  Current Version: %d\n\n", version)

	gs, ok := m.GetStrategy().(*migration.GooseStrategy)
	if !ok {
		return nil
	}
	statuses, err := gs.Status(rt.DB)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "VERSION\tSTATE\tAPPLIED AT\tSCRIPT")
	for _, s := range statuses {
		applied := "-"
		if s.State == goose.StateApplied {
			applied = s.AppliedAt.UTC().Format("2006-01-02 15:04:05")
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", s.Source.Version, s.State, applied, s.Source.Path)
	}
	return w.Flush()
}

func runCreate(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(scriptsDir); err != nil {
		return fmt.Errorf("migration directory %s: %w", scriptsDir, err)
	}
	if err := migration.Create(scriptsDir, name); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Migration '%s' created in %s\n", name, scriptsDir)
	return nil
}
