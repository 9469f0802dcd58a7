package service

import (
	"context"
	"time"

	"github.com/allisson/sessiontoken/internal/metrics"
)

// transformWithMetrics decorates a Transformer with metrics instrumentation.
type transformWithMetrics struct {
	next    Transformer
	metrics metrics.OperationMetrics
}

// NewTransformWithMetrics wraps a Transformer with metrics recording.
func NewTransformWithMetrics(transformer Transformer, m metrics.OperationMetrics) Transformer {
	return &transformWithMetrics{
		next:    transformer,
		metrics: m,
	}
}

// Encode records metrics for token encode operations.
func (t *transformWithMetrics) Encode(plaintext string) (string, error) {
	start := time.Now()
	token, err := t.next.Encode(plaintext)

	status := "success"
	if err != nil {
		status = "error"
	}

	ctx := context.Background()
	t.metrics.RecordOperation(ctx, "token", "token_encode", status)
	t.metrics.RecordDuration(ctx, "token", "token_encode", time.Since(start), status)

	return token, err
}

// Decode records metrics for token decode operations.
func (t *transformWithMetrics) Decode(token string) (string, error) {
	start := time.Now()
	plaintext, err := t.next.Decode(token)

	status := "success"
	if err != nil {
		status = "error"
	}

	ctx := context.Background()
	t.metrics.RecordOperation(ctx, "token", "token_decode", status)
	t.metrics.RecordDuration(ctx, "token", "token_decode", time.Since(start), status)

	return plaintext, err
}
