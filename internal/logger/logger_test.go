package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func capture(t *testing.T, level string, format OutputFormat, fn func()) string {
	t.Helper()
	buf := &bytes.Buffer{}
	SetTestOutput(buf)
	t.Cleanup(func() {
		UnsetTestOutput()
		mu.Lock()
		logger = nil
		mu.Unlock()
	})

	InitLogger(level, format)
	fn()
	return buf.String()
}

func TestLevels(t *testing.T) {
	tests := []struct {
		name     string
		level    string
		contains []string
		excludes []string
	}{
		{
			name:     "debug shows workflow decisions",
			level:    "debug",
			contains: []string{"selected update", "id=Contoso.App", "level=WARN", "status=success"},
		},
		{
			name:     "info hides debug",
			level:    "info",
			contains: []string{"Source added", "status=success"},
			excludes: []string{"selected update"},
		},
		{
			name:     "error from config hides everything below",
			level:    "error",
			excludes: []string{"selected update", "Source added", "default config path"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := capture(t, tt.level, FormatText, func() {
				Debug("selected update", Fields{"id": "Contoso.App", "version": "2.0.0"})
				Warn("default config path", Fields{"error": "no home"})
				Success("Source added", Fields{"name": "main"})
			})
			for _, want := range tt.contains {
				assert.Contains(t, out, want)
			}
			for _, notWant := range tt.excludes {
				assert.NotContains(t, out, notWant)
			}
		})
	}
}

func TestJSONOutput(t *testing.T) {
	out := capture(t, "debug", FormatJSON, func() {
		Debug("batch finished", Fields{"succeeded": 2, "failed": 0, "dry_run": true})
	})

	var record map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(out)), &record))
	assert.Equal(t, "batch finished", record["msg"])
	assert.Equal(t, "DEBUG", record["level"])
	assert.Equal(t, float64(2), record["succeeded"])
	assert.Equal(t, true, record["dry_run"])
}

func TestInitLoggerSwitchesFormat(t *testing.T) {
	buf := &bytes.Buffer{}
	SetTestOutput(buf)
	defer UnsetTestOutput()

	InitLogger("info", FormatText)
	Success("Configuration updated")
	assert.Contains(t, buf.String(), `msg="Configuration updated"`)

	buf.Reset()
	InitLogger("info", FormatJSON)
	Success("Configuration updated")
	assert.Contains(t, buf.String(), `"msg":"Configuration updated"`)
	assert.Contains(t, buf.String(), `"status":"success"`)
}

func TestGetLoggerConcurrentInit(t *testing.T) {
	SetTestOutput(&bytes.Buffer{})
	defer UnsetTestOutput()
	mu.Lock()
	logger = nil
	mu.Unlock()

	var wg sync.WaitGroup
	loggers := make([]*slog.Logger, 8)
	for i := range loggers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			loggers[i] = GetLogger()
			Debug("fork evaluated", Fields{"index": i})
		}()
	}
	wg.Wait()

	for _, l := range loggers {
		assert.Same(t, loggers[0], l)
	}
}

func TestMergeFields(t *testing.T) {
	attrs := mergeFields(Fields{"id": "A"}, Fields{"id": "B", "count": 1})

	result := make(map[string]any)
	for i := 0; i < len(attrs); i += 2 {
		result[attrs[i].(string)] = attrs[i+1]
	}
	assert.Equal(t, map[string]any{"id": "B", "count": 1}, result)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}
