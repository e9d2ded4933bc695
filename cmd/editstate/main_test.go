package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/dshills/editstate/internal/config"
	"github.com/dshills/editstate/internal/focus"
)

func TestReplay_BurstPersistsOnce(t *testing.T) {
	var out bytes.Buffer
	err := replay(&out, replayOptions{count: 5, interval: 50 * time.Millisecond, quiet: 250 * time.Millisecond})
	if err != nil {
		t.Fatalf("replay() error = %v", err)
	}

	got := out.String()
	if n := strings.Count(got, "persist revision"); n != 1 {
		t.Errorf("persists = %d, want 1\n%s", n, got)
	}
	if !strings.Contains(got, "450ms  persist revision 5") {
		t.Errorf("missing persist at 450ms\n%s", got)
	}
	if !strings.Contains(got, "persisted revision 5 of 5") {
		t.Errorf("close summary missing\n%s", got)
	}
}

func TestReplay_FailureRetriedOnClose(t *testing.T) {
	var out bytes.Buffer
	err := replay(&out, replayOptions{count: 2, interval: 10 * time.Millisecond, quiet: 100 * time.Millisecond, failures: 1})
	if err != nil {
		t.Fatalf("replay() error = %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "persist revision 2 failed") {
		t.Errorf("missing failed persist\n%s", got)
	}
	if !strings.Contains(got, "persisted revision 2 of 2") {
		t.Errorf("close did not retry\n%s", got)
	}
}

func TestParseValue(t *testing.T) {
	reg := config.New(config.WithEnv(false), config.WithWatcher(false)).Registry()

	tests := []struct {
		key     string
		arg     string
		want    any
		wantErr bool
	}{
		{config.KeyTabWidth, "8", 8, false},
		{config.KeyTabWidth, "eight", nil, true},
		{config.KeyWrapLines, "false", false, false},
		{config.KeyLineHeight, "1.5", 1.5, false},
		{config.KeyTheme, " dracula ", "dracula", false},
	}
	for _, tt := range tests {
		got, err := parseValue(reg.Get(tt.key), tt.arg)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseValue(%s, %q) error = %v", tt.key, tt.arg, err)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("parseValue(%s, %q) = %v, want %v", tt.key, tt.arg, got, tt.want)
		}
	}
}

func TestNextGroup(t *testing.T) {
	groups := []focus.GroupID{"1", "2", "3"}
	if got := nextGroup(groups, "3"); got != "1" {
		t.Errorf("nextGroup(3) = %s, want 1", got)
	}
	if got := nextGroup(groups, ""); got != "1" {
		t.Errorf("nextGroup(none) = %s, want 1", got)
	}
}
