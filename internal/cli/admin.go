package cli

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"maturity-dashboard/internal/config"
	"maturity-dashboard/internal/repository"
	"maturity-dashboard/internal/service"
	"maturity-dashboard/pkg/db"
	"maturity-dashboard/pkg/logger"
	"maturity-dashboard/pkg/outbox"
)

// withDB loads the service config and opens the database for one command.
func withDB(fn func(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool, log *zap.Logger) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.NewLogger()
	defer log.Sync()

	pool, err := db.NewConnection(cfg.DB, log)
	if err != nil {
		return err
	}
	defer pool.Close()

	return fn(context.Background(), cfg, pool, log)
}

func newOutboxCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "outbox",
		Short: "Inspect and replay outbox events",
	}

	var (
		eventID int64
		limit   int
	)
	replay := &cobra.Command{
		Use:   "replay",
		Short: "Reset failed outbox events to pending",
		Long: `Reset failed outbox events so the API's dispatcher publishes them again.
With --id a single event is reset regardless of its status.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(ctx context.Context, _ *config.Config, pool *pgxpool.Pool, log *zap.Logger) error {
				svc := outbox.NewReplayService(outbox.NewRepository(pool), log)
				if eventID > 0 {
					if err := svc.ReplayEvent(ctx, eventID); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "event %d queued for replay\n", eventID)
					return nil
				}

				n, err := svc.ReplayFailedEvents(ctx, limit)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d failed event(s) queued for replay\n", n)
				return nil
			})
		},
	}
	replay.Flags().Int64Var(&eventID, "id", 0, "replay a single event")
	replay.Flags().IntVar(&limit, "limit", 100, "maximum number of failed events to reset")

	cmd.AddCommand(replay)
	return cmd
}

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage dashboard users",
	}

	var (
		tenantID int64
		email    string
		password string
		roles    []string
	)
	add := &cobra.Command{
		Use:   "add",
		Short: "Create a user with one or more roles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool, log *zap.Logger) error {
				users := repository.NewUserRepository(pool, log)
				svc := service.NewAuthService(users, cfg.JWT.Secret, cfg.JWT.TokenTTL(), log)
				u, err := svc.Register(ctx, tenantID, email, password, roles)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created user %d (%s) in tenant %d\n", u.ID, u.Email, u.TenantID)
				return nil
			})
		},
	}
	add.Flags().Int64Var(&tenantID, "tenant", 0, "tenant id")
	add.Flags().StringVar(&email, "email", "", "login email")
	add.Flags().StringVar(&password, "password", "", "initial password")
	add.Flags().StringSliceVar(&roles, "role", []string{"viewer"}, "role (admin, project_manager, engineer, viewer), repeatable")
	_ = add.MarkFlagRequired("tenant")
	_ = add.MarkFlagRequired("email")
	_ = add.MarkFlagRequired("password")

	cmd.AddCommand(add)
	return cmd
}
