package cmds

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/codes"

	"github.com/autograde/grader/internal/config"
	gradingerrors "github.com/autograde/grader/internal/grading_errors"
	"github.com/autograde/grader/internal/logger"
	"github.com/autograde/grader/internal/store"
	"github.com/autograde/grader/internal/store/migrations"
	"github.com/autograde/grader/internal/types"
)

var migrateCmd = &cobra.Command{
	Use:       "migrate [up|down]",
	Short:     "Apply or roll back the grade store schema",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"up", "down"},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, span := tracer.Start(cmd.Context(), "migrateCmd")
		defer span.End()

		cfg, err := config.GetConfig()
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to load config")
			return gradingerrors.ExitErrorWrap(types.ExitErrored, err)
		}

		db, err := store.Open(ctx, cfg)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to open database")
			return gradingerrors.ExitErrorWrap(types.ExitErrored, err)
		}
		defer func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}()

		switch args[0] {
		case "up":
			err = migrations.Up(ctx, db)
		case "down":
			err = migrations.Down(ctx, db)
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to migrate")
			return gradingerrors.ExitErrorWrap(types.ExitErrored, fmt.Errorf("migrate %s: %w", args[0], err))
		}

		logger.Logger.InfoContext(ctx, "migrated grade store", "direction", args[0])

		span.RecordError(nil)
		span.SetStatus(codes.Ok, "migrated")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
