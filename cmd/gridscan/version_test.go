package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestReadBuildInfo(t *testing.T) {
	t.Parallel()

	info := readBuildInfo()
	// Every field resolves to ldflags, embedded build metadata, or a
	// placeholder; none may come back empty.
	if info.version == "" {
		t.Error("readBuildInfo() returned empty version")
	}
	if info.commit == "" {
		t.Error("readBuildInfo() returned empty commit")
	}
	if info.date == "" {
		t.Error("readBuildInfo() returned empty date")
	}
}

func TestGetVersion(t *testing.T) {
	t.Parallel()

	if getVersion() == "" {
		t.Error("getVersion() returned empty string")
	}
}

func TestShortHash(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		rev  string
		want string
	}{
		{
			name: "full revision is truncated",
			rev:  "0123456789abcdef0123456789abcdef01234567",
			want: "0123456",
		},
		{
			name: "short revision is kept",
			rev:  "abc",
			want: "abc",
		},
		{
			name: "empty revision stays empty",
			rev:  "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := shortHash(tt.rev); got != tt.want {
				t.Errorf("shortHash(%q) = %q, expected %q", tt.rev, got, tt.want)
			}
		})
	}
}

func TestNewVersionCmd(t *testing.T) {
	t.Parallel()

	cmd := NewVersionCmd()

	t.Run("command has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "version" {
			t.Errorf("expected Use to be 'version', got %q", cmd.Use)
		}
	})

	t.Run("command has short description", func(t *testing.T) {
		t.Parallel()
		if cmd.Short == "" {
			t.Error("expected Short to be non-empty")
		}
	})

	t.Run("command outputs version info", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		cmd := NewVersionCmd()
		cmd.SetOut(&buf)
		cmd.SetArgs([]string{})

		err := cmd.Execute()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "gridscan version") {
			t.Errorf("expected output to contain 'gridscan version', got %q", output)
		}
		if !strings.Contains(output, "commit:") {
			t.Errorf("expected output to contain 'commit:', got %q", output)
		}
		if !strings.Contains(output, "built:") {
			t.Errorf("expected output to contain 'built:', got %q", output)
		}
	})
}
