package slogobs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanhariharan/ViralFlow.ai/providers/observability"
)

func decodeLines(testCase *testing.T, buffer *bytes.Buffer) []map[string]any {
	testCase.Helper()
	var records []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buffer.String()), "\n") {
		if line == "" {
			continue
		}
		record := map[string]any{}
		require.NoError(testCase, json.Unmarshal([]byte(line), &record))
		records = append(records, record)
	}
	return records
}

func TestObserverLogsRenameErrorAndCarryRequestID(testCase *testing.T) {
	var buffer bytes.Buffer
	observer := New(WithFormat(FormatJSON), WithOutput(&buffer), WithLevel(slog.LevelDebug))

	ctx := ContextWithRequestID(context.Background(), "req-1")
	observer.Warn(ctx, "step fell back",
		observability.String(observability.AttrStep, "hashtags"),
		observability.Error(errors.New("search down")),
	)

	records := decodeLines(testCase, &buffer)
	require.Len(testCase, records, 1)
	assert.Equal(testCase, "WARN", records[0]["level"])
	assert.Equal(testCase, "search down", records[0]["err"])
	assert.Equal(testCase, "req-1", records[0][observability.AttrRequestID])
	assert.Equal(testCase, "hashtags", records[0][observability.AttrStep])
}

func TestObserverFiltersBelowLevel(testCase *testing.T) {
	var buffer bytes.Buffer
	observer := New(WithFormat(FormatJSON), WithOutput(&buffer), WithLevel(slog.LevelInfo))

	observer.Debug(context.Background(), "hidden")
	observer.Trace(context.Background(), "hidden too")
	observer.Info(context.Background(), "shown")

	records := decodeLines(testCase, &buffer)
	require.Len(testCase, records, 1)
	assert.Equal(testCase, "shown", records[0]["msg"])
}

func TestObserverTraceLevelName(testCase *testing.T) {
	var buffer bytes.Buffer
	observer := New(WithFormat(FormatJSON), WithOutput(&buffer), WithLevel(LevelTrace))

	observer.Trace(context.Background(), "very detailed")

	records := decodeLines(testCase, &buffer)
	require.Len(testCase, records, 1)
	assert.Equal(testCase, "TRACE", records[0]["level"])
}

func TestObserverSpanLifecycle(testCase *testing.T) {
	var buffer bytes.Buffer
	observer := New(WithFormat(FormatJSON), WithOutput(&buffer), WithLevel(slog.LevelDebug))

	ctx, span := observer.StartSpan(context.Background(), "graph.execute", observability.Int("graph.total_nodes", 3))
	assert.Equal(testCase, span, observability.SpanFromContext(ctx))

	span.SetStatus(observability.StatusOK, "done")
	span.End()

	records := decodeLines(testCase, &buffer)
	require.Len(testCase, records, 2)
	assert.Equal(testCase, "span.start", records[0]["event"])
	assert.Equal(testCase, "span.end", records[1]["event"])
	assert.Equal(testCase, "ok", records[1][observability.AttrStatus])
}

func TestObserverCounterAccumulates(testCase *testing.T) {
	observer := New(WithOutput(&bytes.Buffer{}))

	observer.Counter("requests").Add(context.Background(), 2)
	observer.Counter("requests").Add(context.Background(), 3)

	assert.Equal(testCase, int64(5), observer.CounterValue("requests"))
	assert.Equal(testCase, int64(0), observer.CounterValue("missing"))
}

func TestParseLogLevel(testCase *testing.T) {
	cases := map[string]slog.Level{
		"":        slog.LevelInfo,
		"debug":   slog.LevelDebug,
		"WARNING": slog.LevelWarn,
		" error ": slog.LevelError,
		"trace":   LevelTrace,
	}
	for input, expected := range cases {
		level, err := ParseLogLevel(input)
		require.NoError(testCase, err, input)
		assert.Equal(testCase, expected, level, input)
	}

	_, err := ParseLogLevel("loud")
	assert.Error(testCase, err)
}

func TestParseFormat(testCase *testing.T) {
	assert.Equal(testCase, FormatJSON, ParseFormat("JSON"))
	assert.Equal(testCase, FormatText, ParseFormat("pretty"))
}
