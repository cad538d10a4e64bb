package auth

import (
	"context"

	"github.com/desertthunder/sonorous/internal/shared"
)

// Location is where the session sends the user to authorize and where the callback
// fragment lives until it is consumed.
type Location interface {
	// Navigate leaves the app for url.
	Navigate(ctx context.Context, url string) error
	// ClearFragment drops the consumed callback fragment.
	ClearFragment() error
}

// BrowserLocation opens the system browser and delegates fragment clearing to the
// callback listener. The zero value opens the browser and clears nothing.
type BrowserLocation struct {
	Open     func(url string) error      // defaults to shared.OpenBrowser
	OnFailed func(url string, err error) // called instead of failing when Open errors
	Clear    func() error
}

func (b *BrowserLocation) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	open := b.Open
	if open == nil {
		open = shared.OpenBrowser
	}

	if err := open(url); err != nil {
		if b.OnFailed == nil {
			return err
		}
		b.OnFailed(url, err)
	}
	return nil
}

func (b *BrowserLocation) ClearFragment() error {
	if b.Clear == nil {
		return nil
	}
	return b.Clear()
}
