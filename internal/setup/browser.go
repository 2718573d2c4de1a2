package setup

import (
	"fmt"
	"os/exec"
	"runtime"
)

// BrowserOpener opens URLs in the operator's default browser.
type BrowserOpener interface {
	Open(url string) error
}

// SystemBrowser implements cross-platform browser opening.
type SystemBrowser struct{}

// NewBrowserOpener creates a browser opener for the current platform.
func NewBrowserOpener() *SystemBrowser {
	return &SystemBrowser{}
}

// Open opens the specified URL in the default browser.
func (b *SystemBrowser) Open(url string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}

	return nil
}
