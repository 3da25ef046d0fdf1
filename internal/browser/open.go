// Package browser opens API pages in the user's default browser.
package browser

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
	"strings"
)

// Command returns the OS command that opens target.
func Command(goos, target string) (*exec.Cmd, error) {
	switch goos {
	case "darwin":
		return exec.Command("open", target), nil
	case "linux", "freebsd", "openbsd":
		return exec.Command("xdg-open", target), nil
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", target), nil
	default:
		return nil, fmt.Errorf("browser: unsupported OS: %s", goos)
	}
}

// Open launches the default browser on target without waiting for it.
func Open(target string) error {
	u, err := url.Parse(target)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("browser: refusing to open %q", target)
	}
	cmd, err := Command(runtime.GOOS, u.String())
	if err != nil {
		return err
	}
	return cmd.Start()
}

// APIPage joins an API base URL and a page path such as "/docs".
func APIPage(base, page string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(page, "/")
}
