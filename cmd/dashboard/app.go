package main

import (
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/CalebMUC/Quickcrate-Merchant-Dashboard-sub000/internal/catalog"
	"github.com/CalebMUC/Quickcrate-Merchant-Dashboard-sub000/internal/client"
	"github.com/CalebMUC/Quickcrate-Merchant-Dashboard-sub000/internal/config"
	"github.com/CalebMUC/Quickcrate-Merchant-Dashboard-sub000/internal/logger"
)

// app is the state shared by all commands.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	stdout io.Writer
	stderr io.Writer
}

// services are the catalog services over one API client.
type services struct {
	client           *client.Client
	categories       *catalog.CategoryService
	subCategories    *catalog.SubCategoryService
	subSubCategories *catalog.SubSubCategoryService
}

func newApp(opts globalOptions, stdout, stderr io.Writer) (*app, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}

	if opts.baseURL != "" {
		cfg.API.BaseURL = opts.baseURL
	}
	if opts.token != "" {
		cfg.Auth.Type = config.AuthBearer
		cfg.Auth.Token = opts.token
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log, err := newLogger(cfg.Log, stdout, stderr)
	if err != nil {
		return nil, err
	}

	return &app{cfg: cfg, logger: log, stdout: stdout, stderr: stderr}, nil
}

// newLogger routes stdout and stderr output to the writers the command was
// given, so tests and pipes see the same streams.
func newLogger(cfg config.LogConfig, stdout, stderr io.Writer) (*zap.Logger, error) {
	lc := logger.Config{Level: cfg.Level, Format: cfg.Format, Output: cfg.Output}
	switch strings.ToLower(cfg.Output) {
	case "", "stderr":
		return logger.NewWithWriter(lc, stderr), nil
	case "stdout":
		return logger.NewWithWriter(lc, stdout), nil
	default:
		return logger.New(lc)
	}
}

// connect builds the API client and the catalog services.
func (a *app) connect(clientOpts ...client.Option) (*services, error) {
	opts := append([]client.Option{client.WithLogger(a.logger)}, clientOpts...)
	c, err := client.New(a.cfg.API, a.cfg.Auth, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating API client: %w", err)
	}

	svcOpts := []catalog.Option{
		catalog.WithLogger(a.logger),
		catalog.WithNotifier(catalog.LogNotifier{Logger: a.logger.Named("notify")}),
	}
	return &services{
		client:           c,
		categories:       catalog.NewCategoryService(c, svcOpts...),
		subCategories:    catalog.NewSubCategoryService(c, svcOpts...),
		subSubCategories: catalog.NewSubSubCategoryService(c, svcOpts...),
	}, nil
}

func (s *services) loader(cfg config.LoaderConfig, log *zap.Logger, opts ...catalog.LoaderOption) *catalog.HierarchyLoader {
	base := []catalog.LoaderOption{
		catalog.WithMaxConcurrency(cfg.MaxConcurrency),
		catalog.WithPageSize(cfg.PageSize),
		catalog.WithLoaderLogger(log),
	}
	return catalog.NewHierarchyLoader(s.categories, s.subCategories, s.subSubCategories, append(base, opts...)...)
}
