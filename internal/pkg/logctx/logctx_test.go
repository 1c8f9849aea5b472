package logctx

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrom_DefaultWhenMissing(t *testing.T) {
	assert.Same(t, slog.Default(), From(context.Background()))
}

func TestIntoFrom_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(slog.NewTextHandler(&buf, nil))

	ctx := Into(context.Background(), l)
	From(ctx).Info("hello")

	assert.Contains(t, buf.String(), "msg=hello")
}
