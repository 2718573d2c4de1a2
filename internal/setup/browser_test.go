package setup

import (
	"testing"
)

func TestNewBrowserOpener(t *testing.T) {
	opener := NewBrowserOpener()
	if opener == nil {
		t.Error("NewBrowserOpener() returned nil")
	}
}

func TestBrowserOpenerInterface(t *testing.T) {
	// SystemBrowser must satisfy BrowserOpener; actually opening a browser
	// is not possible in automated tests.
	var _ BrowserOpener = NewBrowserOpener()
}
