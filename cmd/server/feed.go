package main

import (
	"context"
	"encoding/json"
	"io"
	"time"
)

func runFeed(ctx context.Context, out io.Writer, statsOnly bool) error {
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		a.close(shutdownCtx)
	}()

	feed, err := a.gallery.Build(ctx)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if statsOnly {
		return enc.Encode(feed.Stats)
	}
	return enc.Encode(feed)
}
