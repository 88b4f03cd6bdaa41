package cmds

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/autograde/grader/cmd/worker/internal/common"
	"github.com/autograde/grader/internal/audit"
	"github.com/autograde/grader/internal/config"
	gradingerrors "github.com/autograde/grader/internal/grading_errors"
	"github.com/autograde/grader/internal/logger"
	"github.com/autograde/grader/internal/pipeline"
	"github.com/autograde/grader/internal/store"
	"github.com/autograde/grader/internal/types"
	"github.com/autograde/grader/internal/validator"
)

var (
	gradeInput  string
	gradeOutput string
	gradeLocal  bool
)

type gradeFile struct {
	BatchID string `json:"batch_id"`
	// Stored before grading, or the only configs a local run knows about
	Configs     []types.AssignmentGradingConfig `json:"configs"`
	Submissions []types.Submission              `json:"submissions"`
}

type gradeReport struct {
	BatchID   string `json:"batch_id,omitempty"`
	Error     string `json:"error,omitempty"`
	Succeeded int    `json:"succeeded"`
	Failed    int    `json:"failed"`
	types.BatchResult
}

var gradeCmd = &cobra.Command{
	Use:   "grade",
	Short: "Grade a batch of submissions read from a file",
	Long: `
- Exits with 0 when every submission was graded.
- Exits with 2 when the batch finished but at least one submission failed.
- Exits with 3 when a grade record could not be stored. The batch stops early.
- Exits with 1 for all other errors.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, span := tracer.Start(cmd.Context(), "gradeCmd")
		defer span.End()

		span.SetAttributes(
			attribute.String("input", gradeInput),
			attribute.Bool("local", gradeLocal),
		)

		var in gradeFile
		if err := common.ReadJSON(gradeInput, &in); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to read input")
			return gradingerrors.ExitErrorWrap(types.ExitErrored, err)
		}

		p, err := buildPipeline(ctx, in.Configs)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to build grading pipeline")
			return gradingerrors.ExitErrorWrap(types.ExitErrored, err)
		}
		defer func() {
			if err := p.Close(); err != nil {
				logger.Logger.WarnContext(ctx, "failed to close grading pipeline", "error", err)
			}
		}()

		report, err := runGrade(ctx, p, in)
		if werr := common.WriteJSON(gradeOutput, report); werr != nil {
			span.RecordError(werr)
			span.SetStatus(codes.Error, "failed to write report")
			return gradingerrors.ExitErrorWrap(types.ExitErrored, errors.Join(err, werr))
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to grade batch")
			return err
		}

		span.RecordError(nil)
		span.SetStatus(codes.Ok, "graded batch")
		return nil
	},
}

func buildPipeline(ctx context.Context, configs []types.AssignmentGradingConfig) (*pipeline.Pipeline, error) {
	if gradeLocal {
		cfg, err := config.GetLocalConfig()
		if err != nil {
			return nil, err
		}

		for i := range configs {
			if err := configs[i].Validate(); err != nil {
				return nil, fmt.Errorf("grading config %s: %w", configs[i].AssignmentID, err)
			}
		}

		return pipeline.NewLocal(cfg, store.NewMemoryAssignmentSource(configs...)), nil
	}

	cfg, err := config.GetConfig()
	if err != nil {
		return nil, err
	}

	p, err := pipeline.New(ctx, cfg)
	if err != nil {
		return nil, err
	}

	for i := range configs {
		if err := p.Assignments.Put(ctx, &configs[i]); err != nil {
			return nil, errors.Join(fmt.Errorf("failed to store grading config %s: %w", configs[i].AssignmentID, err), p.Close())
		}
	}

	return p, nil
}

// The report is filled in even when an error carrying the exit code is returned
func runGrade(ctx context.Context, p *pipeline.Pipeline, in gradeFile) (gradeReport, error) {
	report := gradeReport{BatchID: in.BatchID, BatchResult: types.BatchResult{Items: []types.BatchItem{}}}

	if !validator.ValidateBatchSize(len(in.Submissions)) {
		err := fmt.Errorf("batch must hold between 1 and %d submissions", validator.MaxBatchSize)
		report.Error = err.Error()
		return report, gradingerrors.ExitErrorWrap(types.ExitErrored, err)
	}

	if in.BatchID != "" {
		ctx = audit.WithBatchID(ctx, in.BatchID)
	}

	result, err := p.Bulk.GradeMany(ctx, in.Submissions)
	audit.LogBatchCompleted(audit.ContextFrom(ctx, ""), result, err != nil)

	report.BatchResult = result
	report.Succeeded, report.Failed = result.Counts()

	switch {
	case gradingerrors.IsFatal(err):
		report.Error = "a grade record could not be stored, the batch was stopped"
		return report, gradingerrors.ExitErrorWrap(types.ExitPersistence, err)
	case err != nil:
		report.Error = err.Error()
		return report, gradingerrors.ExitErrorWrap(types.ExitErrored, err)
	case report.Failed > 0:
		return report, gradingerrors.ExitErrorWrap(
			types.ExitItemsFailed,
			fmt.Errorf("%d of %d submissions failed", report.Failed, len(result.Items)),
		)
	}

	return report, nil
}

func init() {
	rootCmd.AddCommand(gradeCmd)

	gradeCmd.Flags().StringVar(&gradeInput, "input", "", "Batch file with configs and submissions, - for stdin (required)")
	if err := gradeCmd.MarkFlagRequired("input"); err != nil {
		logger.Logger.Error("error setting flag required", "flag", "input", "error", err)
		os.Exit(types.ExitErrored)
	}

	gradeCmd.Flags().StringVar(&gradeOutput, "output", "", "Where to write the batch report. Defaults to stdout.")
	gradeCmd.Flags().
		BoolVar(&gradeLocal, "local", false, "Dry run with the similarity scorer and in memory stores")
}
