package roam

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
)

// AppDeepLink raises the Roam desktop app, starting it if necessary.
const AppDeepLink = "roam://"

// PageDeepLink returns the URL that focuses a page inside a graph.
func PageDeepLink(graphName, pageUID string) string {
	return fmt.Sprintf("roam://#/app/%s/page/%s", url.PathEscape(graphName), url.PathEscape(pageUID))
}

// OpenPage brings a page to the foreground in the desktop app via its deep
// link, using the client's launcher so tests can intercept.
func (c *Client) OpenPage(pageUID string) error {
	return c.launch(PageDeepLink(c.graph.Name, pageUID))
}

// OpenDeepLink hands a roam:// URL to the OS opener without waiting for it.
// Callers treat failure as advisory: Roam may simply not be installed on
// this machine, or the opener may be missing from PATH.
func OpenDeepLink(link string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", link)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", link)
	default:
		cmd = exec.Command("xdg-open", link)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("open deep link: %w", err)
	}
	// Reap the opener in the background; its exit status is not actionable.
	go func() { _ = cmd.Wait() }()
	return nil
}
