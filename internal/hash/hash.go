package hash

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"path"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("github.com/autograde/grader/internal/hash")

var ErrSizeMismatch = errors.New("content size does not match the declared length")

// Content address of an archived object
type Digest struct {
	Sum  string
	Size int64
}

// Digest of everything left in r. A non-negative `expected` must match the bytes read.
func Of(ctx context.Context, r io.Reader, expected int64) (Digest, error) {
	_, span := tracer.Start(ctx, "Of")
	defer span.End()

	h := sha256.New()
	n, err := io.Copy(h, r)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to read content into hasher")
		return Digest{}, err
	}

	if expected >= 0 && n != expected {
		err = fmt.Errorf("%w: read %d, expected %d", ErrSizeMismatch, n, expected)
		span.RecordError(err)
		span.SetStatus(codes.Error, "size mismatch")
		return Digest{}, err
	}

	d := Digest{Sum: hex.EncodeToString(h.Sum(nil)), Size: n}
	span.SetAttributes(attribute.String("sum", d.Sum), attribute.Int64("size", n))

	return d, nil
}

func Bytes(b []byte) Digest {
	h := sha256.Sum256(b)
	return Digest{Sum: hex.EncodeToString(h[:]), Size: int64(len(b))}
}

// Object name under `prefix`, sharded on the first two hex digits so no listing grows unbounded.
// Empty prefix gives the bare layout.
func (d Digest) Object(prefix string) string {
	if len(d.Sum) < 2 {
		return path.Join(prefix, d.Sum)
	}

	return path.Join(prefix, d.Sum[:2], d.Sum)
}
