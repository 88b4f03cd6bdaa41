package cmds

import (
	"os"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/autograde/grader/cmd/worker/internal/common"
	"github.com/autograde/grader/internal/analytics"
	gradingerrors "github.com/autograde/grader/internal/grading_errors"
	"github.com/autograde/grader/internal/logger"
	"github.com/autograde/grader/internal/types"
)

var (
	analyticsInput     string
	analyticsOutput    string
	analyticsCurveMean float64
	analyticsNormalize bool
)

type analyticsFile struct {
	Samples      []types.GradeSample   `json:"samples"`
	Bands        types.BandTable       `json:"bands,omitempty"`
	OutlierRule  analytics.OutlierRule `json:"outlier_rule,omitempty"`
	TotalPoints  float64               `json:"total_points,omitempty"`
	OutlierSigma float64               `json:"outlier_sigma,omitempty"`
}

type analyticsReport struct {
	types.AssignmentAnalytics
	// Aligned with the input samples
	Curved     []float64 `json:"curved,omitempty"`
	Normalized []float64 `json:"normalized,omitempty"`
}

var analyticsCmd = &cobra.Command{
	Use:   "analytics",
	Short: "Summarize a set of grades read from a file",
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, span := tracer.Start(cmd.Context(), "analyticsCmd")
		defer span.End()

		var in analyticsFile
		if err := common.ReadJSON(analyticsInput, &in); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to read input")
			return gradingerrors.ExitErrorWrap(types.ExitErrored, err)
		}

		span.SetAttributes(attribute.Int("analytics.samples", len(in.Samples)))

		report := runAnalytics(in, analyticsCurveMean, analyticsNormalize)
		if err := common.WriteJSON(analyticsOutput, report); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to write report")
			return gradingerrors.ExitErrorWrap(types.ExitErrored, err)
		}

		span.RecordError(nil)
		span.SetStatus(codes.Ok, "computed analytics")
		return nil
	},
}

// curveMean of 0 leaves the scores uncurved
func runAnalytics(in analyticsFile, curveMean float64, normalize bool) analyticsReport {
	opts := analytics.Options{
		Bands:        in.Bands,
		OutlierRule:  in.OutlierRule,
		TotalPoints:  in.TotalPoints,
		OutlierSigma: in.OutlierSigma,
	}
	report := analyticsReport{AssignmentAnalytics: analytics.Compute(in.Samples, opts)}

	total := in.TotalPoints
	if total <= 0 {
		total = analytics.DefaultTotalPoints
	}

	scores := make([]float64, len(in.Samples))
	for i, s := range in.Samples {
		scores[i] = s.Score
	}

	if curveMean > 0 {
		report.Curved = analytics.Curve(scores, curveMean, total)
	}
	if normalize {
		report.Normalized = analytics.Normalize(scores, total)
	}

	return report
}

func init() {
	rootCmd.AddCommand(analyticsCmd)

	analyticsCmd.Flags().StringVar(&analyticsInput, "input", "", "File with grade samples, - for stdin (required)")
	if err := analyticsCmd.MarkFlagRequired("input"); err != nil {
		logger.Logger.Error("error setting flag required", "flag", "input", "error", err)
		os.Exit(types.ExitErrored)
	}

	analyticsCmd.Flags().StringVar(&analyticsOutput, "output", "", "Where to write the report. Defaults to stdout.")
	analyticsCmd.Flags().
		Float64Var(&analyticsCurveMean, "curve-mean", 0, "Also shift the scores so their mean lands here")
	analyticsCmd.Flags().
		BoolVar(&analyticsNormalize, "normalize", false, "Also rescale the scores linearly onto the full range")
}
