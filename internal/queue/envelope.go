package queue

import (
	"context"
	"encoding/json"

	otelgrader "github.com/autograde/grader/internal/otel"
)

// Wire form of every enqueued message. Trace holds the producer's propagation headers.
type envelope struct {
	Trace map[string]string `json:"trace,omitempty"`
	Body  json.RawMessage   `json:"body"`
}

func seal(ctx context.Context, message any) ([]byte, error) {
	body, err := json.Marshal(message)
	if err != nil {
		return nil, err
	}

	return json.Marshal(envelope{
		Trace: otelgrader.InjectMessage(ctx),
		Body:  body,
	})
}

// Body and producer context of a raw message. Text that is not an envelope is returned as is.
func open(ctx context.Context, raw []byte) (context.Context, []byte) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil || len(env.Body) == 0 {
		return ctx, raw
	}

	return otelgrader.ExtractMessage(ctx, env.Trace), env.Body
}
