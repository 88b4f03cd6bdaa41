package queue

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("github.com/autograde/grader/internal/queue")

//go:generate mockgen -destination ./mock/mock.go -package mock . Queuer,MessageHandler

// Work queue carrying batch requests in and batch results out
type Queuer interface {
	// May block while queuing data
	Enqueue(ctx context.Context, message any) error
	// May block while waiting for data to dequeue
	//
	// If handler returns a poison error the message is dropped, other errors leave it to reappear
	// once its visibility timeout expires.
	Dequeue(ctx context.Context, timeout time.Duration, handler MessageHandler) error
}

type MessageHandler interface {
	Handle(ctx context.Context, message []byte) error
}

type HandlerFunc func(ctx context.Context, message []byte) error

func (f HandlerFunc) Handle(ctx context.Context, message []byte) error {
	return f(ctx, message)
}

// Mark a message as unprocessable. It will not be requeued.
type PoisonError struct {
	Err error
}

func (p PoisonError) Error() string {
	return fmt.Sprintf("poisoned message: %v", p.Err)
}

func (p PoisonError) Unwrap() error {
	return p.Err
}

func WrapPoisonError(err error) error {
	return &PoisonError{Err: err}
}
