package ports

import "context"

// BrowserOpener shows the preview in the user's browser
type BrowserOpener interface {
	// Open opens an http(s) URL without waiting for the browser to exit
	Open(ctx context.Context, url string) error
}
