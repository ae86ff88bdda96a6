package postgresql

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
)

//go:embed schema.sql
var schemaSQL string

// EnsureSchema creates the profiles and attendance tables if they are missing.
func EnsureSchema(ctx context.Context, db *database.DB) error {
	err := WithTransaction(ctx, db, func(txCtx context.Context) error {
		_, err := GetQuerier(txCtx, db).Exec(txCtx, schemaSQL)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	slog.Info("Database schema ensured")
	return nil
}
