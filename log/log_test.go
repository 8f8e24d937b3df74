package log_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/docmigrate-dev/docmigrate/log"
)

func TestNew_TextLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := log.New(&buf, "text", slog.LevelInfo, nil)

	if logger == nil {
		t.Fatal("expected non-nil logger")
	}

	logger.Info("test message")

	output := buf.String()
	if !strings.Contains(output, "test message") {
		t.Errorf("expected output to contain 'test message', got: %s", output)
	}
}

func TestNew_JSONLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := log.New(&buf, "json", slog.LevelInfo, nil)

	if logger == nil {
		t.Fatal("expected non-nil logger")
	}

	logger.Info("json test")

	output := buf.String()
	if !strings.Contains(output, `"msg":"json test"`) {
		t.Errorf("expected JSON output, got: %s", output)
	}
}

func TestNew_InvalidFormatDefaultsToText(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := log.New(&buf, "invalid", slog.LevelInfo, nil)

	logger.Info("fallback test")

	output := buf.String()
	if strings.Contains(output, `"msg"`) {
		t.Errorf("expected text output, got JSON: %s", output)
	}
	if !strings.Contains(output, "fallback test") {
		t.Errorf("expected output to contain 'fallback test', got: %s", output)
	}
}

func TestNew_LevelFiltering(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := log.New(&buf, "text", slog.LevelWarn, nil)

	logger.Info("should be filtered")
	logger.Warn("should appear")

	output := buf.String()
	if strings.Contains(output, "should be filtered") {
		t.Errorf("expected info message to be filtered, got: %s", output)
	}
	if !strings.Contains(output, "should appear") {
		t.Errorf("expected warn message to appear, got: %s", output)
	}
}

func TestContextHandler_RunKeys(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := log.New(&buf, "json", slog.LevelInfo, nil)

	ctx := context.WithValue(context.Background(), log.RunIDKey, "run-123")
	ctx = context.WithValue(ctx, log.DatabaseNameKey, "appdb")

	logger.InfoContext(ctx, "with context")

	output := buf.String()
	if !strings.Contains(output, `"runId":"run-123"`) {
		t.Errorf("expected runId attribute, got: %s", output)
	}
	if !strings.Contains(output, `"database":"appdb"`) {
		t.Errorf("expected database attribute, got: %s", output)
	}
}

func TestContextHandler_ExtraKeys(t *testing.T) {
	t.Parallel()

	type customKey string
	const deployKey customKey = "deploy"

	var buf bytes.Buffer
	logger := log.New(&buf, "json", slog.LevelInfo, map[string]any{"deployId": deployKey})

	ctx := context.WithValue(context.Background(), deployKey, "deploy-7")

	logger.InfoContext(ctx, "with extra key")

	output := buf.String()
	if !strings.Contains(output, `"deployId":"deploy-7"`) {
		t.Errorf("expected deployId attribute, got: %s", output)
	}
}

func TestSetDefault(t *testing.T) {
	var buf bytes.Buffer
	original := log.Logger
	t.Cleanup(func() { log.SetDefault(original) })

	log.SetDefault(log.New(&buf, "text", slog.LevelInfo, nil))
	log.Info("via default")

	if !strings.Contains(buf.String(), "via default") {
		t.Errorf("expected output to contain 'via default', got: %s", buf.String())
	}
}
