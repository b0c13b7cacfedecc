package browser

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os/exec"
	"runtime"

	"github.com/fredcamaral/slidemark/internal/domain/ports"
)

// ErrNoOpener is returned when no launcher command exists on this system
var ErrNoOpener = errors.New("no command to open a browser found")

// candidate is one way of handing a URL to the desktop
type candidate struct {
	command string
	args    []string
}

// Opener opens preview URLs with the platform's launcher command
type Opener struct {
	candidates []candidate
	lookPath   func(file string) (string, error)
	start      func(cmd *exec.Cmd) error
}

// NewOpener creates an opener for the running platform
func NewOpener() *Opener {
	return &Opener{
		candidates: candidatesFor(runtime.GOOS),
		lookPath:   exec.LookPath,
		start:      startDetached,
	}
}

// Open validates rawURL and hands it to the first available launcher
func (o *Opener) Open(ctx context.Context, rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parsing preview URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("refusing to open %q: only http and https URLs are supported", rawURL)
	}

	c, err := o.resolve()
	if err != nil {
		return err
	}

	args := append(append([]string(nil), c.args...), u.String())
	cmd := exec.CommandContext(ctx, c.command, args...) // #nosec G204 - fixed launcher, validated URL
	if err := o.start(cmd); err != nil {
		return fmt.Errorf("starting %s: %w", c.command, err)
	}
	return nil
}

// resolve returns the first candidate whose command is installed
func (o *Opener) resolve() (candidate, error) {
	for _, c := range o.candidates {
		if _, err := o.lookPath(c.command); err == nil {
			return c, nil
		}
	}
	return candidate{}, ErrNoOpener
}

func startDetached(cmd *exec.Cmd) error {
	if err := cmd.Start(); err != nil {
		return err
	}
	// Reap the launcher; browsers usually outlive it
	go func() { _ = cmd.Wait() }()
	return nil
}

func candidatesFor(goos string) []candidate {
	switch goos {
	case "darwin":
		return []candidate{{command: "open"}}
	case "windows":
		return []candidate{{command: "rundll32", args: []string{"url.dll,FileProtocolHandler"}}}
	case "linux", "freebsd", "openbsd", "netbsd":
		return []candidate{
			{command: "xdg-open"},
			{command: "sensible-browser"},
			{command: "x-www-browser"},
		}
	default:
		return nil
	}
}

var _ ports.BrowserOpener = (*Opener)(nil)
