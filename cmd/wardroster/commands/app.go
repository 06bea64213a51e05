package commands

import (
	"fmt"
	"os"
	"wardroster/internal/config"
	"wardroster/internal/photos"
	"wardroster/internal/registry"
	"wardroster/internal/resources"
	"wardroster/lib/cachedir"
	"wardroster/lib/restyutil"
	"wardroster/lib/scrapers/mls"
	"wardroster/lib/telemetry"
)

// app is everything a command needs, the mls client is only created (and
// credentials only asked for) when a command talks to MLS.
type app struct {
	cfg      config.Config
	flags    *globalFlags
	tel      telemetry.API
	prompter config.Prompter

	raw    cachedir.RawStore
	photos cachedir.PhotoStore
	client *mls.Client
}

// promptOverride replaces the terminal prompter in tests.
var promptOverride config.Prompter

func newApp(flags *globalFlags) (*app, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv(os.Getenv)
	if flags.cacheDir != "" {
		cfg.CacheDir = flags.cacheDir
	}
	err = cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	var prompter config.Prompter = config.NewTerminalPrompter()
	if promptOverride != nil {
		prompter = promptOverride
	}

	return &app{
		cfg:      cfg,
		flags:    flags,
		tel:      telemetry.SlogAPI{},
		prompter: prompter,
		raw:      cachedir.NewRawStore(cfg.CacheDir),
		photos:   cachedir.NewPhotoStore(cfg.CacheDir),
	}, nil
}

func (a *app) mlsClient() (*mls.Client, error) {
	if a.client != nil {
		return a.client, nil
	}

	opts := a.cfg.ClientOptions()
	opts.Tel = a.tel
	opts.Credentials = func() (string, string, error) {
		err := a.cfg.ResolveCredentials(a.prompter)
		return a.cfg.Username, a.cfg.Password, err
	}
	if a.flags.dumpHttp != "" {
		output, err := restyutil.NewFilesystemOutput(a.flags.dumpHttp)
		if err != nil {
			return nil, fmt.Errorf("dump directory: %w", err)
		}
		opts.Output = output
	}

	client, err := mls.NewClient(opts)
	if err != nil {
		return nil, err
	}
	a.client = client
	return client, nil
}

func (a *app) registry() (*registry.Registry, error) {
	client, err := a.mlsClient()
	if err != nil {
		return nil, err
	}
	reg := registry.New(a.raw, a.tel)
	resources.Register(reg, client, a.raw)
	return reg, nil
}

func (a *app) photoFetcher(batchSize int) (*photos.Fetcher, error) {
	client, err := a.mlsClient()
	if err != nil {
		return nil, err
	}
	return photos.NewFetcher(client, a.raw, a.photos, photos.Options{
		BatchSize:  batchSize,
		BatchDelay: a.cfg.BatchDelay(),
		Tel:        a.tel,
	}), nil
}
