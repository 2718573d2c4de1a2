package fuzzy

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNew(t *testing.T) {
	prompt := "Test prompt"
	finder := New(prompt)

	if finder == nil {
		t.Fatal("New should return a non-nil finder")
	}

	if finder.prompt != prompt {
		t.Errorf("Expected prompt '%s', got '%s'", prompt, finder.prompt)
	}

	if len(finder.options) != 0 {
		t.Errorf("Expected 0 options, got %d", len(finder.options))
	}
}

func TestAddOption(t *testing.T) {
	finder := New("Test")

	finder.AddOption("cloud", "github.com")
	finder.AddOption("selfmanaged", "GitHub Enterprise Server")

	if len(finder.options) != 2 {
		t.Errorf("Expected 2 options, got %d", len(finder.options))
	}

	if finder.options[0].Value != "cloud" {
		t.Errorf("Expected first option value 'cloud', got '%s'", finder.options[0].Value)
	}

	if finder.options[1].Description != "GitHub Enterprise Server" {
		t.Errorf("Expected second option description 'GitHub Enterprise Server', got '%s'", finder.options[1].Description)
	}
}

func TestSelectNoOptions(t *testing.T) {
	finder := New("Test")

	if _, err := finder.Select(); err == nil {
		t.Error("Expected error when selecting with no options")
	}
}

// withStdin runs fn with os.Stdin reading the given input.
func withStdin(t *testing.T, input string, fn func()) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "stdin")
	if err := os.WriteFile(path, []byte(input), 0600); err != nil {
		t.Fatalf("failed to write stdin file: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open stdin file: %v", err)
	}
	defer func() { _ = file.Close() }()

	original := os.Stdin
	os.Stdin = file
	defer func() { os.Stdin = original }()

	fn()
}

func TestSelect(t *testing.T) {
	finder := New("Pick a mode")
	finder.AddOption("cloud", "github.com")
	finder.AddOption("selfmanaged", "GitHub Enterprise Server")

	withStdin(t, "2\n", func() {
		selected, err := finder.Select()
		if err != nil {
			t.Fatalf("Select failed: %v", err)
		}
		if selected != "selfmanaged" {
			t.Errorf("Expected 'selfmanaged', got '%s'", selected)
		}
	})
}

func TestSelectInvalidInput(t *testing.T) {
	finder := New("Pick a mode")
	finder.AddOption("cloud", "github.com")

	withStdin(t, "nope\n", func() {
		if _, err := finder.Select(); err == nil {
			t.Error("Expected error for non-numeric input")
		}
	})

	withStdin(t, "5\n", func() {
		if _, err := finder.Select(); err == nil {
			t.Error("Expected error for out-of-range selection")
		}
	})
}
