package browser

import (
	"context"
	"errors"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeOpener records the command instead of starting it
func fakeOpener(installed map[string]bool, candidates []candidate) (*Opener, *[]*exec.Cmd) {
	var started []*exec.Cmd
	o := &Opener{
		candidates: candidates,
		lookPath: func(file string) (string, error) {
			if installed[file] {
				return "/usr/bin/" + file, nil
			}
			return "", exec.ErrNotFound
		},
		start: func(cmd *exec.Cmd) error {
			started = append(started, cmd)
			return nil
		},
	}
	return o, &started
}

func TestOpener_Open(t *testing.T) {
	linux := candidatesFor("linux")

	t.Run("uses first installed launcher", func(t *testing.T) {
		o, started := fakeOpener(map[string]bool{"sensible-browser": true, "x-www-browser": true}, linux)

		require.NoError(t, o.Open(context.Background(), "http://localhost:1000/"))
		require.Len(t, *started, 1)
		assert.Equal(t, []string{"sensible-browser", "http://localhost:1000/"}, (*started)[0].Args)
	})

	t.Run("keeps fixed launcher arguments", func(t *testing.T) {
		o, started := fakeOpener(map[string]bool{"rundll32": true}, candidatesFor("windows"))

		require.NoError(t, o.Open(context.Background(), "https://example.com/deck"))
		assert.Equal(t, []string{"rundll32", "url.dll,FileProtocolHandler", "https://example.com/deck"}, (*started)[0].Args)
	})

	t.Run("no launcher installed", func(t *testing.T) {
		o, started := fakeOpener(nil, linux)

		err := o.Open(context.Background(), "http://localhost:1000/")
		assert.ErrorIs(t, err, ErrNoOpener)
		assert.Empty(t, *started)
	})

	t.Run("unsupported platform", func(t *testing.T) {
		o, _ := fakeOpener(map[string]bool{"xdg-open": true}, candidatesFor("plan9"))
		assert.ErrorIs(t, o.Open(context.Background(), "http://localhost/"), ErrNoOpener)
	})

	t.Run("start failure is wrapped", func(t *testing.T) {
		o, _ := fakeOpener(map[string]bool{"open": true}, candidatesFor("darwin"))
		o.start = func(*exec.Cmd) error { return errors.New("boom") }

		err := o.Open(context.Background(), "http://localhost/")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "starting open")
	})
}

func TestOpener_RejectsNonHTTP(t *testing.T) {
	tests := []string{
		"file:///etc/passwd",
		"javascript:alert(1)",
		"localhost:1000",
		"%zz",
	}

	for _, raw := range tests {
		t.Run(raw, func(t *testing.T) {
			o, started := fakeOpener(map[string]bool{"xdg-open": true}, candidatesFor("linux"))
			assert.Error(t, o.Open(context.Background(), raw))
			assert.Empty(t, *started)
		})
	}
}

func TestNewOpener(t *testing.T) {
	o := NewOpener()
	assert.NotNil(t, o.lookPath)
	assert.NotNil(t, o.start)
}
