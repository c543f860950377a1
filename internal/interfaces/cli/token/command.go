package token

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/civicwatch/civicwatch/internal/infrastructure/auth"
	"github.com/civicwatch/civicwatch/internal/interfaces/cli/bootstrap"
)

var (
	env       string
	staffID   string
	staffName string
	ttl       time.Duration
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a staff access token",
		Long: `Sign a bearer token for the staff API. Staff accounts live outside this
service, so operators mint tokens for them here.`,
		RunE: run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")
	cmd.Flags().StringVar(&staffID, "staff-id", "", "Identifier of the staff member (required)")
	cmd.Flags().StringVar(&staffName, "name", "", "Display name recorded on actions taken with the token")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "Token lifetime (defaults to auth.token_ttl_hours)")
	_ = cmd.MarkFlagRequired("staff-id")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	rt, err := bootstrap.Init(env, false)
	if err != nil {
		return err
	}

	lifetime := rt.Config.Auth.TokenTTL()
	if ttl > 0 {
		lifetime = ttl
	}

	svc := auth.NewJWTService(rt.Config.Auth.JWTSecret, rt.Config.Auth.Issuer, lifetime)
	signed, expiresAt, err := svc.Generate(staffID, staffName)
	if err != nil {
		return fmt.Errorf("failed to issue token: %w", err)
	}

	rt.Logger.Infow("staff token issued", "staff_id", staffID, "expires_at", expiresAt)

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, signed)
	fmt.Fprintf(out, "expires %s (%s)\n", expiresAt.Format(time.RFC3339), humanize.Time(expiresAt))
	return nil
}
