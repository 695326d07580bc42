package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestLoggerConfig(t *testing.T) {
	tests := []struct {
		verbose  int
		encoding string
		level    zapcore.Level
	}{
		{0, "json", zapcore.WarnLevel},
		{1, "console", zapcore.InfoLevel},
		{2, "console", zapcore.DebugLevel},
		{5, "console", zapcore.DebugLevel},
	}
	for _, tt := range tests {
		cfg := loggerConfig(tt.verbose)
		assert.Equal(t, tt.encoding, cfg.Encoding, "verbose=%d", tt.verbose)
		assert.Equal(t, tt.level, cfg.Level.Level(), "verbose=%d", tt.verbose)
	}
}

func TestLoggerConfigBuilds(t *testing.T) {
	for v := 0; v < 3; v++ {
		log, err := loggerConfig(v).Build()
		assert.NoError(t, err)
		assert.NotNil(t, log)
	}
}
