package ctxlog

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromContext(t *testing.T) {
	t.Run("returns the embedded logger", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		ctx := WithLogger(context.Background(), logger)

		FromContext(ctx).Info("hello", "module", "Core")
		assert.Contains(t, buf.String(), "module=Core")
	})

	t.Run("falls back to a silent logger", func(t *testing.T) {
		logger := FromContext(context.Background())
		assert.NotNil(t, logger)
		assert.False(t, logger.Enabled(context.Background(), slog.LevelError))
	})
}
