// Copyright (c) 2026-present the Firefly Framework authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package logger_test

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fireflyframework/pyfly-sub003/internal/logger"
)

func TestNewLevelMapping(t *testing.T) {
	tests := []struct {
		name  string
		input string
		level slog.Level
	}{
		{name: "debug", input: "DEBUG", level: slog.LevelDebug},
		{name: "sanitization", input: "  debug  ", level: slog.LevelDebug},
		{name: "info", input: "INFO", level: slog.LevelInfo},
		{name: "warn", input: "warn", level: slog.LevelWarn},
		{name: "error", input: "ERROR", level: slog.LevelError},
		{name: "empty", input: "", level: slog.LevelInfo},
		{name: "unknown", input: "UNKNOWN", level: slog.LevelInfo},
	}

	ctx := t.Context()
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			log := logger.New(tc.input, "")
			require.NotNil(t, log)

			assert.True(t, log.Handler().Enabled(ctx, tc.level),
				"expected level %v enabled", tc.level)
			if tc.level != slog.LevelDebug {
				prev := tc.level - 4 // slog levels use increments of 4
				assert.False(t, log.Handler().Enabled(ctx, prev),
					"expected lower level %v disabled", prev)
			}
		})
	}
}

func TestNewFormat(t *testing.T) {
	assert.IsType(t, &slog.JSONHandler{}, logger.New("info", "").Handler())
	assert.IsType(t, &slog.JSONHandler{}, logger.New("info", "json").Handler())
	assert.IsType(t, &slog.TextHandler{}, logger.New("info", "text").Handler())
	assert.IsType(t, &slog.TextHandler{}, logger.New("info", " TEXT ").Handler())
}

func TestSilent(t *testing.T) {
	log := logger.New("silent", "json")
	require.NotNil(t, log)
	log.Debug("must not panic")
	log.Error("must not panic either")
}
