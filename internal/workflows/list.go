package workflows

import "context"

// ListOptions configures the list workflow.
type ListOptions struct {
	Common
}

// ListResult describes the local config.
type ListResult struct {
	ConfigPath string
	APIURL     string
	Projects   []string
}

// List returns the projects of the local config in lexical order.
func List(ctx context.Context, opts ListOptions) (*ListResult, error) {
	cfg, err := opts.loadConfig()
	if err != nil {
		return nil, err
	}

	return &ListResult{
		ConfigPath: opts.configPath(),
		APIURL:     cfg.APIURL,
		Projects:   cfg.ProjectIDs(),
	}, nil
}
