package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestSetupParsesLevel(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	var buf bytes.Buffer
	setup(&buf, "warn", true)
	if got := zerolog.GlobalLevel(); got != zerolog.WarnLevel {
		t.Fatalf("GlobalLevel = %v, want %v", got, zerolog.WarnLevel)
	}

	// 非法级别回落到 info
	setup(&buf, "loud", true)
	if got := zerolog.GlobalLevel(); got != zerolog.InfoLevel {
		t.Fatalf("GlobalLevel = %v, want %v", got, zerolog.InfoLevel)
	}
}

func TestComponentAddsField(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	var buf bytes.Buffer
	setup(&buf, "debug", true)
	l := Component("scheduler")
	l.Info().Msg("hello")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not json: %v (%q)", err, buf.String())
	}
	if entry["component"] != "scheduler" {
		t.Fatalf("component = %v, want scheduler", entry["component"])
	}
	if entry["message"] != "hello" {
		t.Fatalf("message = %v, want hello", entry["message"])
	}

	buf.Reset()
	CronLogger{L: log.Logger}.Printf("tick %d", 1)
	if !bytes.Contains(buf.Bytes(), []byte("tick 1")) {
		t.Fatalf("cron logger output = %q", buf.String())
	}
}
