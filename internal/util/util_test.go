package util

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	constants "github.com/CodeAndHammer/mysterybox/internal/constants"
)

func TestDirExists(t *testing.T) {
	dir := t.TempDir()
	if !DirExists(dir) {
		t.Errorf("Expected DirExists to return true for existing dir")
	}
	if DirExists(dir + "-notfound") {
		t.Errorf("Expected DirExists to return false for non-existent dir")
	}
}

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data", "nested")
	if err := EnsureDir(dir); err != nil {
		t.Fatalf("EnsureDir: %v", err)
	}
	if !DirExists(dir) {
		t.Errorf("Expected %s to exist", dir)
	}
	if err := EnsureDir("."); err != nil {
		t.Errorf("EnsureDir(.) = %v, want nil", err)
	}
}

func TestFormatUptime(t *testing.T) {
	cases := []struct {
		dur      time.Duration
		expected string
	}{
		{time.Second * 5, "5 seconds"},
		{time.Second * 65, "1 minute, 5 seconds"},
		{time.Second * 3665, "1 hour, 1 minute, 5 seconds"},
		{time.Second * 3600, "1 hour, 0 minutes, 0 seconds"},
		{time.Second * 60, "1 minute, 0 seconds"},
		{time.Second * 1, "1 second"},
	}
	for _, c := range cases {
		got := FormatUptime(c.dur)
		if got != c.expected {
			t.Errorf("FormatUptime(%v) = %q, want %q", c.dur, got, c.expected)
		}
	}
}

func TestPlural(t *testing.T) {
	if plural(1) != "" {
		t.Errorf("plural(1) = %q, want \"\"", plural(1))
	}
	if plural(2) != "s" {
		t.Errorf("plural(2) = %q, want \"s\"", plural(2))
	}
	if plural(0) != "s" {
		t.Errorf("plural(0) = %q, want \"s\"", plural(0))
	}
}

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("TEST_DURATION", "2s")
	if got := GetEnvDuration("TEST_DURATION", time.Second); got != 2*time.Second {
		t.Errorf("GetEnvDuration = %v, want 2s", got)
	}
	t.Setenv("TEST_DURATION", "notaduration")
	if got := GetEnvDuration("TEST_DURATION", 3*time.Second); got != 3*time.Second {
		t.Errorf("GetEnvDuration fallback = %v, want 3s", got)
	}
	t.Setenv("TEST_DURATION", "")
	if got := GetEnvDuration("TEST_DURATION", 4*time.Second); got != 4*time.Second {
		t.Errorf("GetEnvDuration fallback unset = %v, want 4s", got)
	}
}

func TestGetEnvInt(t *testing.T) {
	t.Setenv("TEST_INT", "42")
	if got := GetEnvInt("TEST_INT", 7); got != 42 {
		t.Errorf("GetEnvInt = %d, want 42", got)
	}
	t.Setenv("TEST_INT", "notanint")
	if got := GetEnvInt("TEST_INT", 8); got != 8 {
		t.Errorf("GetEnvInt fallback = %d, want 8", got)
	}
	t.Setenv("TEST_INT", "")
	if got := GetEnvInt("TEST_INT", 9); got != 9 {
		t.Errorf("GetEnvInt fallback unset = %d, want 9", got)
	}
}

func TestGetEnvStringAndList(t *testing.T) {
	t.Setenv("TEST_STRING", "  sqlite ")
	if got := GetEnvString("TEST_STRING", "file"); got != "sqlite" {
		t.Errorf("GetEnvString = %q, want sqlite", got)
	}
	t.Setenv("TEST_STRING", "")
	if got := GetEnvString("TEST_STRING", "file"); got != "file" {
		t.Errorf("GetEnvString fallback = %q, want file", got)
	}

	t.Setenv("TEST_LIST", "https://a.example, ,https://b.example")
	want := []string{"https://a.example", "https://b.example"}
	if got := GetEnvList("TEST_LIST", nil); !reflect.DeepEqual(got, want) {
		t.Errorf("GetEnvList = %v, want %v", got, want)
	}
	t.Setenv("TEST_LIST", " , ")
	if got := GetEnvList("TEST_LIST", []string{"x"}); !reflect.DeepEqual(got, []string{"x"}) {
		t.Errorf("GetEnvList fallback = %v, want [x]", got)
	}
}

func TestRequestPrefix(t *testing.T) {
	if got := RequestPrefix(context.Background()); got != "" {
		t.Errorf("RequestPrefix without id = %q, want empty", got)
	}
	ctx := context.WithValue(context.Background(), constants.RequestIDKey, "abc")
	if got := RequestPrefix(ctx); got != "[request_id=abc] " {
		t.Errorf("RequestPrefix = %q", got)
	}
}

func TestInitLoggerRejectsBadLevel(t *testing.T) {
	if err := InitLogger(false, "loud"); err == nil {
		t.Error("Expected error for unknown log level")
	}
	if err := InitLogger(false, "debug"); err != nil {
		t.Errorf("InitLogger(debug) = %v", err)
	}
}
