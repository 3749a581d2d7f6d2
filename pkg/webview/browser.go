package webview

import (
	"fmt"
	"os/exec"
	"runtime"
)

// browserCommand returns the platform-specific command that hands a URL
// to the default browser. Split out from OpenBrowser so the dispatch
// can be tested without spawning anything.
func browserCommand(goos, url string) (*exec.Cmd, error) {
	switch goos {
	case "linux":
		return exec.Command("xdg-open", url), nil
	case "darwin":
		return exec.Command("open", url), nil
	case "windows":
		return exec.Command("cmd", "/c", "start", url), nil
	default:
		return nil, fmt.Errorf("no browser launcher for platform %s", goos)
	}
}

// OpenBrowser opens the URL in the platform's default browser. The
// browser process is started and left running; sign-in completion is
// observed through the callback server, not the process.
func OpenBrowser(url string) error {
	cmd, err := browserCommand(runtime.GOOS, url)
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	return nil
}
