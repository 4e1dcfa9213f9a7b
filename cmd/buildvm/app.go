package main

import (
	"errors"
	"log/slog"

	"github.com/buildvm/buildvm/internal/shell/cloud"
	"github.com/buildvm/buildvm/internal/shell/poller"
	"github.com/buildvm/buildvm/internal/shell/provision"
	"github.com/buildvm/buildvm/internal/shell/registry"
	"github.com/buildvm/buildvm/internal/shell/status"
)

// app wires configuration into the shell packages. Commands construct it in
// their RunE so config errors surface as command errors.
type app struct {
	cfg    *Config
	logger *slog.Logger
	api    cloud.InstanceAPI
	meta   *registry.MetadataStore
}

// loadApp loads config and builds shared dependencies. requireToken is false
// only for commands that never touch the cloud API, such as render.
func loadApp(requireToken bool) (*app, error) {
	cfg, err := LoadConfig(flagConfig)
	if err != nil {
		return nil, err
	}
	logger := SetupLogger(cfg)

	a := &app{
		cfg:    cfg,
		logger: logger,
		meta:   registry.NewMetadataStore(cfg.Registry.ResolveMetadataPath()),
	}
	if requireToken {
		if cfg.Linode.Token == "" {
			return nil, errors.New("linode API token is not set (set BUILDVM_LINODE_TOKEN or linode.token in the config file)")
		}
		a.api = cloud.NewLinodeClient(cfg.Linode.Token, logger)
	}
	return a, nil
}

func (a *app) provisioner() *provision.Provisioner {
	opts := provision.Options{
		WaitTimeout:  a.cfg.Provision.WaitTimeout,
		WaitInterval: a.cfg.Provision.WaitInterval,
	}
	return provision.New(a.api, a.meta, opts, a.logger)
}

func (a *app) registry() *registry.Registry {
	return registry.New(a.api, a.meta, a.logger)
}

func (a *app) reconciler() *status.Reconciler {
	return status.New(a.api, a.logger)
}

func (a *app) poller() *poller.Poller {
	cfg := poller.Config{
		Workers:        a.cfg.Poll.Workers,
		CallsPerMinute: a.cfg.Poll.CallsPerMinute,
		CacheTTL:       a.cfg.Poll.CacheTTL,
	}
	return poller.New(a.reconciler(), cfg, a.logger)
}
