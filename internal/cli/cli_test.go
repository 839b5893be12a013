package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	var out bytes.Buffer
	cfg, shouldExit, err := Parse([]string{"-post", "grbl", "-out", "build", "-log-level", "DEBUG", "job.json"}, &out, "/tmp/config.json")

	require.NoError(t, err)
	require.False(t, shouldExit)
	assert.Equal(t, &Config{
		JobPath:     "job.json",
		ConfigPath:  "/tmp/config.json",
		Post:        "grbl",
		OutDir:      "build",
		HoleDepth:   -3,
		HoleRetract: 2,
		LogFormat:   "text",
		LogLevel:    "debug",
	}, cfg)
	assert.Empty(t, out.String())
}

func TestParse_JobFlagWins(t *testing.T) {
	cfg, _, err := Parse([]string{"-job", "a.json", "-tool-library", "tools.csv", "-bundle", "b.json", "c.json"}, &bytes.Buffer{}, "")

	require.NoError(t, err)
	assert.Equal(t, "a.json", cfg.JobPath)
	assert.Equal(t, "tools.csv", cfg.ToolLibrary)
	assert.Equal(t, "b.json", cfg.Bundle)
}

func TestParse_ListPostsNeedsNoJob(t *testing.T) {
	cfg, shouldExit, err := Parse([]string{"-list-posts"}, &bytes.Buffer{}, "")

	require.NoError(t, err)
	assert.False(t, shouldExit)
	assert.True(t, cfg.ListPosts)

	cfg, shouldExit, err = Parse([]string{"-list-machines"}, &bytes.Buffer{}, "")
	require.NoError(t, err)
	assert.False(t, shouldExit)
	assert.True(t, cfg.ListMachines)
}

func TestParse_Usage(t *testing.T) {
	for _, args := range [][]string{{"-h"}, {}} {
		var out bytes.Buffer
		cfg, shouldExit, err := Parse(args, &out, "")

		require.NoError(t, err)
		assert.True(t, shouldExit, "args %v", args)
		assert.Nil(t, cfg)
		assert.Contains(t, out.String(), "postcut [options] JOB_PATH")
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		msg  string
	}{
		{"unknown flag", []string{"-nope"}, "flag provided but not defined: -nope"},
		{"log format", []string{"-log-format", "xml", "job.json"}, "invalid log-format: must be 'text' or 'json'"},
		{"log level", []string{"-log-level", "trace", "job.json"}, "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Parse(tt.args, &bytes.Buffer{}, "")

			var exitErr *ExitError
			require.True(t, errors.As(err, &exitErr), "got %v", err)
			assert.Equal(t, 2, exitErr.Code)
			assert.Equal(t, tt.msg, exitErr.Message)
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&Config{LogFormat: "json", LogLevel: "warn"}, &buf)

	logger.Info("hidden")
	logger.Warn("shown", "section", "G54")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), "exactly one JSON record")
	assert.Equal(t, "shown", entry["msg"])
	assert.Equal(t, "G54", entry["section"])
}

func TestNewLogger_Text(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&Config{LogFormat: "text", LogLevel: "debug"}, &buf)

	logger.Debug("assembled", "lines", 3)
	assert.Contains(t, buf.String(), "level=DEBUG msg=assembled lines=3")
}
