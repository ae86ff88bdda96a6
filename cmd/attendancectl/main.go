package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/config"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
	"github.com/cmlabs-hris/attendance-backend-go/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/attendance-backend-go/internal/service/attendance"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var cfg *config.Config

	root := &cobra.Command{
		Use:           "attendancectl",
		Short:         "Operator tools for the attendance service",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load()
			if err != nil {
				return err
			}
			cfg = loaded
			slog.SetDefault(slog.New(slog.NewJSONHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
				Level: cfg.App.SlogLevel(),
			})))
			return nil
		},
	}

	root.AddCommand(newSweepCommand(func() *config.Config { return cfg }))
	root.AddCommand(newTokenCommand(func() *config.Config { return cfg }))
	return root
}

func newSweepCommand(cfg func() *config.Config) *cobra.Command {
	var date string

	sweep := &cobra.Command{
		Use:   "sweep",
		Short: "Mark employees absent for days whose shifts have ended",
	}
	sweep.PersistentFlags().StringVar(&date, "date", "", "Sweep this date (YYYY-MM-DD) for every expected employee")

	request := func() attendance.SweepRequest {
		if date == "" {
			return attendance.SweepRequest{}
		}
		return attendance.SweepRequest{Date: &date}
	}

	sweep.AddCommand(&cobra.Command{
		Use:   "run",
		Short: "Write absent records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAbsenceService(cmd.Context(), cfg(), func(svc attendance.AbsenceService) error {
				result, err := svc.SweepAbsences(cmd.Context(), request())
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), result)
			})
		},
	})

	sweep.AddCommand(&cobra.Command{
		Use:   "preview",
		Short: "Show what a sweep would write without writing it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAbsenceService(cmd.Context(), cfg(), func(svc attendance.AbsenceService) error {
				preview, err := svc.PreviewAbsences(cmd.Context(), request())
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), preview)
			})
		},
	})

	return sweep
}

func newTokenCommand(cfg func() *config.Config) *cobra.Command {
	var (
		userID string
		email  string
		role   string
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an access token for a profile (local testing)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !validator.IsValidUUID(userID) {
				return fmt.Errorf("invalid user id %q: want a UUID", userID)
			}
			r := employee.Role(role)
			if !r.Valid() {
				return fmt.Errorf("invalid role %q: want admin or employee", role)
			}
			c := cfg()
			token, expiresAt, err := jwt.NewJWTService(c.JWT.Secret, c.JWT.AccessExpiration).GenerateAccessToken(userID, email, r)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]interface{}{
				"access_token": token,
				"expires_at":   time.Unix(expiresAt, 0).UTC().Format(time.RFC3339),
			})
		},
	}
	cmd.Flags().StringVar(&userID, "user-id", "", "Profile id (UUID)")
	cmd.Flags().StringVar(&email, "email", "", "Email claim")
	cmd.Flags().StringVar(&role, "role", string(employee.RoleEmployee), "admin or employee")
	_ = cmd.MarkFlagRequired("user-id")

	return cmd
}

func withAbsenceService(ctx context.Context, cfg *config.Config, fn func(attendance.AbsenceService) error) error {
	loc, err := cfg.Attendance.Location()
	if err != nil {
		return err
	}

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL(), database.PoolConfig{
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		return fmt.Errorf("error connecting to database: %w", err)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := postgresql.EnsureSchema(ctx, db); err != nil {
			return err
		}
	}

	svc := attendanceService.NewAbsenceService(
		postgresql.NewAttendanceRepository(db),
		postgresql.NewEmployeeRepository(db),
		nil,
		loc,
		nil,
	)
	return fn(svc)
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
