// Package app assembles the runtime from a Config: the observer stack, the
// language model client, the search clients and the pipeline.
package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/sanhariharan/ViralFlow.ai/core/client"
	"github.com/sanhariharan/ViralFlow.ai/core/client/middleware"
	"github.com/sanhariharan/ViralFlow.ai/internal/config"
	"github.com/sanhariharan/ViralFlow.ai/internal/pipeline"
	"github.com/sanhariharan/ViralFlow.ai/internal/server"
	"github.com/sanhariharan/ViralFlow.ai/internal/utils"
	"github.com/sanhariharan/ViralFlow.ai/providers/ai"
	"github.com/sanhariharan/ViralFlow.ai/providers/ai/eino"
	"github.com/sanhariharan/ViralFlow.ai/providers/ai/openai"
	"github.com/sanhariharan/ViralFlow.ai/providers/observability"
	"github.com/sanhariharan/ViralFlow.ai/providers/observability/promobs"
	"github.com/sanhariharan/ViralFlow.ai/providers/observability/slogobs"
	"github.com/sanhariharan/ViralFlow.ai/providers/tool/serper"
	"github.com/sanhariharan/ViralFlow.ai/providers/tool/tavily"
)

// App is a fully wired ViralFlow runtime.
type App struct {
	Config   *config.Config
	Observer observability.Provider
	Registry *prometheus.Registry
	Workflow *pipeline.Workflow
}

type options struct {
	logOutput io.Writer
	provider  ai.Provider
}

// Option customizes New.
type Option func(*options)

// WithLogOutput sends log records to output instead of stderr.
func WithLogOutput(output io.Writer) Option {
	return func(o *options) {
		o.logOutput = output
	}
}

// WithProvider replaces the configured language model backend.
func WithProvider(provider ai.Provider) Option {
	return func(o *options) {
		o.provider = provider
	}
}

// New wires every collaborator described by cfg.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	settings := options{logOutput: os.Stderr}
	for _, opt := range opts {
		opt(&settings)
	}

	level, err := slogobs.ParseLogLevel(cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	logs := slogobs.New(
		slogobs.WithFormat(slogobs.ParseFormat(cfg.Log.Format)),
		slogobs.WithLevel(level),
		slogobs.WithOutput(settings.logOutput),
	)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	observer := promobs.New(logs, registry)

	provider := settings.provider
	if provider == nil {
		provider, err = newProvider(ctx, cfg.LLM)
		if err != nil {
			return nil, err
		}
	}

	llm, err := client.New(provider,
		client.WithModel(cfg.LLM.Model),
		client.WithTemperature(cfg.LLM.Temperature),
		client.WithMaxTokens(cfg.LLM.MaxTokens),
		client.WithObserver(observer),
		client.WithMiddleware(
			middleware.NewLoggingMiddleware(logs.Logger(), middleware.ParseLogLevel(cfg.LLM.LogLevel)),
			middleware.NewRetryMiddleware(middleware.RetryConfig{
				MaxRetries:     cfg.LLM.MaxRetries,
				InitialBackoff: cfg.LLM.RetryBackoff,
			}),
			middleware.NewTimeoutMiddleware(cfg.LLM.Timeout),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("llm client: %w", err)
	}

	deps := pipeline.Dependencies{
		LLM:            llm,
		Observer:       observer,
		SearchResults:  cfg.Search.MaxResults,
		ImageCount:     cfg.Search.ImageCount,
		MaxConcurrency: cfg.Pipeline.MaxConcurrency,
		Timeout:        cfg.Pipeline.Timeout,
		Pricing:        cfg.LLM.Pricing(),
	}

	if cfg.Search.TavilyAPIKey != "" {
		search, err := tavily.New(cfg.Search.TavilyAPIKey, tavily.WithTimeout(cfg.Search.Timeout))
		if err != nil {
			return nil, fmt.Errorf("tavily client: %w", err)
		}
		deps.WebSearch = search
	} else {
		logs.Warn(ctx, "TAVILY_API_KEY not set, hashtag research runs without search context")
	}

	if cfg.Search.SerperAPIKey != "" {
		images, err := serper.New(cfg.Search.SerperAPIKey, serper.WithTimeout(cfg.Search.Timeout))
		if err != nil {
			return nil, fmt.Errorf("serper client: %w", err)
		}
		deps.ImageSearch = images
	} else {
		logs.Warn(ctx, "SERPER_API_KEY not set, visuals are disabled")
	}

	workflow, err := pipeline.NewWorkflow(deps)
	if err != nil {
		return nil, err
	}

	return &App{
		Config:   cfg,
		Observer: observer,
		Registry: registry,
		Workflow: workflow,
	}, nil
}

func newProvider(ctx context.Context, cfg config.LLMConfig) (ai.Provider, error) {
	switch cfg.Backend {
	case config.BackendEino:
		provider, err := eino.New(ctx, eino.Config{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			MaxTokens:   cfg.MaxTokens,
			Temperature: utils.Ptr(cfg.Temperature),
		})
		if err != nil {
			return nil, fmt.Errorf("eino backend: %w", err)
		}
		return provider, nil
	default:
		return openai.NewOpenAIProvider(cfg.APIKey).WithBaseURL(cfg.BaseURL), nil
	}
}

// Server returns the HTTP API over the workflow.
func (a *App) Server() *server.Server {
	return server.New(a.Workflow,
		server.WithObserver(a.Observer),
		server.WithGatherer(a.Registry),
	)
}
