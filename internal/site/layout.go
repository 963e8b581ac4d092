package site

import (
	"context"
	"io"

	"github.com/pranayvarade/livefolio/pkg/core"
	"github.com/pranayvarade/livefolio/pkg/router"
)

// Layout returns the router layout that wraps the first render in the full
// document. Components exposing DarkMode get the presentation class on the
// root element so the page does not flash light before the socket joins.
func Layout(cfg PageConfig) router.Layout {
	return func(ctx context.Context, w io.Writer, comp core.Component, content string) error {
		dark := false
		if m, ok := comp.(interface{ DarkMode() bool }); ok {
			dark = m.DarkMode()
		}
		_, err := io.WriteString(w, RenderDocument(cfg, router.GetCSPNonce(ctx), dark, content))
		return err
	}
}
