package view

import (
	"fmt"

	"github.com/pkg/browser"

	"github.com/danielolaszy/spira/internal/logging"
)

// Browser opens links outside the terminal.
type Browser interface {
	OpenURL(url string) error
}

// SystemBrowser opens links with the desktop's default browser.
type SystemBrowser struct{}

// OpenURL implements Browser.
func (SystemBrowser) OpenURL(url string) error {
	logging.Debug("opening browser", "url", url)
	if err := browser.OpenURL(url); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	return nil
}
