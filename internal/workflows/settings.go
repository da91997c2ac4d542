package workflows

import (
	"context"
	"fmt"
)

// SetURLOptions configures the set-url workflow.
type SetURLOptions struct {
	Common

	URL string
}

// SetURL points the local config at another server. Project entries are
// kept; they remain valid only on the server that issued them.
func SetURL(ctx context.Context, opts SetURLOptions) (string, error) {
	c, err := opts.newClient(opts.URL)
	if err != nil {
		return "", err
	}

	cfg, err := opts.loadConfig()
	if err != nil {
		return "", err
	}

	cfg.APIURL = c.BaseURL()
	if err := opts.saveConfig(cfg); err != nil {
		return "", err
	}
	return cfg.APIURL, nil
}

// PingOptions configures the ping workflow.
type PingOptions struct {
	Common
}

// PingResult reports the server that answered.
type PingResult struct {
	APIURL string
	Store  string
}

// Ping checks that the configured server and its store are reachable.
func Ping(ctx context.Context, opts PingOptions) (*PingResult, error) {
	cfg, err := opts.loadConfig()
	if err != nil {
		return nil, err
	}

	c, err := opts.newClient(cfg.APIURL)
	if err != nil {
		return nil, err
	}

	resp, err := c.Ping(ctx)
	if err != nil {
		return nil, fmt.Errorf("pinging %s: %w", cfg.APIURL, err)
	}

	return &PingResult{APIURL: cfg.APIURL, Store: resp.Store}, nil
}
