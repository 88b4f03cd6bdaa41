package cmds

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/autograde/grader/cmd/worker/internal/common"
	"github.com/autograde/grader/internal/codeanalysis"
	gradingerrors "github.com/autograde/grader/internal/grading_errors"
	"github.com/autograde/grader/internal/logger"
	"github.com/autograde/grader/internal/types"
)

var inspectPath string

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Print the language and heuristic code issues the grader would attach to a coding submission",
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, span := tracer.Start(cmd.Context(), "inspectCmd")
		defer span.End()

		content, err := os.ReadFile(inspectPath)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to read file")
			return gradingerrors.ExitErrorWrap(types.ExitErrored, err)
		}

		report := inspect(filepath.Base(inspectPath), content)
		span.SetAttributes(attribute.String("language", report.Language))

		if err := common.WriteJSON("", report); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to write report")
			return gradingerrors.ExitErrorWrap(types.ExitErrored, err)
		}

		span.RecordError(nil)
		span.SetStatus(codes.Ok, "inspected file")
		return nil
	},
}

// The file name only helps detection, analysis runs on the content
func inspect(filename string, content []byte) codeanalysis.Report {
	return codeanalysis.Analyze(codeanalysis.DetectLanguage(filename, content), string(content))
}

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().StringVar(&inspectPath, "path", "", "Path to file to check (required)")
	if err := inspectCmd.MarkFlagRequired("path"); err != nil {
		logger.Logger.Error("error setting flag required", "flag", "path", "error", err)
		os.Exit(types.ExitErrored)
	}
}
