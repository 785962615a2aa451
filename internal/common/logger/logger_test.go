package logger

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"DEBUG":   zapcore.DebugLevel,
		"warn":    zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"info":    zapcore.InfoLevel,
		"":        zapcore.InfoLevel,
		"verbose": zapcore.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestZapAdapter_FieldsAndErrors(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewZapAdapter(zap.New(core)).WithFields(map[string]interface{}{"panel": "billing-series"})

	log.Warn("segment not allowed", map[string]interface{}{
		"segment": "Unknown",
		"error":   errors.New("boom"),
	})

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		ctx := entries[0].ContextMap()
		assert.Equal(t, "billing-series", ctx["panel"])
		assert.Equal(t, "Unknown", ctx["segment"])
		assert.Equal(t, "boom", ctx["error"])
		assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	}
}

func TestZapAdapter_WithError(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewZapAdapter(zap.New(core)).WithError(errors.New("redis: connection refused"))

	log.Warn("segment cache read failed", nil)

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, "redis: connection refused", entries[0].ContextMap()["error"])
	}
}

func TestContextRoundTrip(t *testing.T) {
	fallback := NewNoOpLogger()
	assert.Same(t, fallback, FromContext(context.Background(), fallback))

	scoped := NewTestLogger(t).With(map[string]interface{}{"requestId": "abc"})
	ctx := IntoContext(context.Background(), scoped)
	assert.Same(t, scoped, FromContext(ctx, fallback))
}
