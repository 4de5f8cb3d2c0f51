package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		" WARN ":  zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"info":    zapcore.InfoLevel,
		"":        zapcore.InfoLevel,
		"fatal":   zapcore.InfoLevel,
		"verbose": zapcore.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestNamedAndWith(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := wrap(zap.New(core))

	log.Named("guard").With(String("email", "admin@example.com")).
		Warn("sign-in rejected", Error(errors.New("not allowed")))
	log.Infof("listening on %s", ":8080")

	entries := logs.All()
	require.Len(t, entries, 2)

	fields := entries[0].ContextMap()
	assert.Equal(t, "sign-in rejected", entries[0].Message)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, "guard", fields["component"])
	assert.Equal(t, "admin@example.com", fields["email"])
	assert.Equal(t, "not allowed", fields["error"])

	assert.Equal(t, "listening on :8080", entries[1].Message)
}

func TestNewBuildsBothEncoders(t *testing.T) {
	assert.NotNil(t, New("debug", true))
	assert.NotNil(t, New("info", false))
	assert.NoError(t, NewNop().Sync())
}
