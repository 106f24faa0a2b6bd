// Copyright © 2024 The GHLS authors

package cmd

import (
	"context"

	"github.com/spf13/viper"

	"github.com/luthersystems/ghls/provider"
	"github.com/luthersystems/ghls/provider/github"
	"github.com/luthersystems/ghls/session"
)

// Option configures an exported command factory (LSPCommand, CacheCommand).
type Option func(*cmdConfig)

type cmdConfig struct {
	provider provider.Provider
	dir      string
}

// WithProvider injects the provider the session loads from. The GitHub
// client built from the configuration is used otherwise.
func WithProvider(p provider.Provider) Option {
	return func(c *cmdConfig) { c.provider = p }
}

// WithDir sets the directory whose origin remote names the repository when
// owner and repo are not configured. Defaults to the working directory.
func WithDir(dir string) Option {
	return func(c *cmdConfig) { c.dir = dir }
}

func newConfig(opts []Option) cmdConfig {
	cfg := cmdConfig{dir: "."}
	for _, o := range opts {
		o(&cfg)
	}
	return cfg
}

// newSession builds the session shared by the language server and the
// cache command from the viper configuration.
func (c *cmdConfig) newSession(ctx context.Context) (*session.Session, error) {
	owner, repo := viper.GetString("owner"), viper.GetString("repo")
	if owner == "" || repo == "" {
		o, r, err := github.DiscoverRepository(ctx, c.dir)
		if err != nil {
			log.Warningf("%s; issues and wiki pages will not be loaded", err)
		} else {
			if owner == "" {
				owner = o
			}
			if repo == "" {
				repo = r
			}
		}
	}

	p := c.provider
	if p == nil {
		token, err := github.ResolveToken(ctx, viper.GetString("token"))
		if err != nil {
			return nil, err
		}
		p = github.New(token,
			github.WithAPIURL(viper.GetString("api-url")),
			github.WithHost(viper.GetString("host")),
			github.WithPerPage(viper.GetInt("per-page")),
		)
	}

	log.Infof("repository %s/%s", owner, repo)
	return session.New(p,
		session.WithRepository(owner, repo),
		session.WithHost(viper.GetString("host")),
		session.WithBudgets(viper.GetDuration("local-timeout"), viper.GetDuration("remote-timeout")),
	), nil
}
