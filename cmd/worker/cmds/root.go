package cmds

import (
	"context"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("github.com/autograde/grader/cmd/worker/cmds")

var rootCmd = &cobra.Command{
	Use:   "worker",
	Short: "Grade submission batches from files or the batch queue",
	// errors are logged by main with their exit code
	SilenceErrors: true,
	SilenceUsage:  true,
}

func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
