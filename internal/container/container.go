// Package container provides dependency injection for the rbc2mm application.
// It centralizes the creation and wiring of all application dependencies,
// making them explicit and testable.
package container

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"rbc2mm/internal/batch"
	"rbc2mm/internal/categorizer"
	"rbc2mm/internal/config"
	"rbc2mm/internal/fileutils"
	"rbc2mm/internal/logging"
	"rbc2mm/internal/rbcparser"
	"rbc2mm/internal/reconcile"
	"rbc2mm/internal/store"

	"github.com/shopspring/decimal"
)

// Options overrides the collaborators NewContainer would otherwise create.
type Options struct {
	Logger   logging.Logger
	AIClient categorizer.AIClient
	Stdin    io.Reader
	Stdout   io.Writer
}

// Container holds all application dependencies and provides methods to access them.
//
// Container is immutable after creation - all fields are private and can only
// be accessed through getter methods.
type Container struct {
	logger     logging.Logger
	config     *config.Config
	mappings   *store.MappingStore
	taxonomy   *store.Taxonomy
	accounts   *store.AccountTranslator
	aiClient   categorizer.AIClient
	fallback   categorizer.FallbackStrategy
	resolver   *categorizer.Resolver
	parser     *rbcparser.Parser
	aggregator *batch.Aggregator
	driver     *batch.Driver
}

// NewContainer creates and wires all application dependencies.
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	return NewContainerWithOptions(ctx, cfg, Options{})
}

// NewContainerWithOptions is NewContainer with injected collaborators.
func NewContainerWithOptions(ctx context.Context, cfg *config.Config, opts Options) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}

	// Create logger first as it's needed by other components
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewLogrusAdapter(cfg.Log.Level, cfg.Log.Format)
	}

	mappings, err := store.LoadMappingStore(cfg.Files.Mappings, logger)
	if err != nil {
		return nil, err
	}

	taxonomy := store.NewTaxonomy(nil)
	if cfg.Files.Categories != "" {
		if cfg.Categorization.Fallback != config.FallbackNone || fileutils.FileExists(cfg.Files.Categories) {
			taxonomy, err = store.LoadTaxonomy(cfg.Files.Categories, logger)
			if err != nil {
				return nil, err
			}
		}
	}

	accounts := store.NewAccountTranslator(nil, logger)
	if cfg.Files.Accounts != "" {
		if fileutils.FileExists(cfg.Files.Accounts) {
			accounts, err = store.LoadAccountTranslator(cfg.Files.Accounts, logger)
			if err != nil {
				return nil, err
			}
		} else {
			logger.Warn("Account translation file not found, keeping raw account numbers",
				logging.Field{Key: logging.FieldFile, Value: cfg.Files.Accounts})
		}
	}

	c := &Container{
		logger:   logger,
		config:   cfg,
		mappings: mappings,
		taxonomy: taxonomy,
		accounts: accounts,
	}

	if err := c.selectFallback(ctx, opts); err != nil {
		return nil, err
	}

	c.resolver = categorizer.NewResolver(mappings, c.fallback, categorizer.Options{
		PersistAIResults: cfg.Categorization.PersistAIResults,
	}, logger)
	c.parser = rbcparser.NewParser(accounts, logger)
	c.aggregator = batch.NewAggregator(logger)
	c.driver = batch.NewDriver(c.resolver, batch.Options{
		OnFailure:     cfg.Categorization.OnFailure,
		Currency:      cfg.Categorization.Currency,
		SkipReconcile: !cfg.Reconcile.Enabled,
		Reconcile: reconcile.Options{
			Tolerance:         decimal.NewFromFloat(cfg.Reconcile.Tolerance),
			LegacyDenominator: cfg.Reconcile.LegacyDenominator,
		},
	}, logger)

	logger.Info("Container initialized successfully",
		logging.Field{Key: "mappings", Value: mappings.Len()},
		logging.Field{Key: "categories", Value: taxonomy.Len()},
		logging.Field{Key: logging.FieldStrategy, Value: c.resolver.FallbackName()})

	return c, nil
}

// selectFallback builds the one fallback strategy named by configuration.
func (c *Container) selectFallback(ctx context.Context, opts Options) error {
	cfg := c.config
	switch cfg.Categorization.Fallback {
	case config.FallbackAI:
		client := opts.AIClient
		if client == nil && cfg.AI.APIKey != "" {
			gemini, err := categorizer.NewGeminiClient(ctx, cfg.AI.APIKey, cfg.AI.Model, c.logger)
			if err != nil {
				return fmt.Errorf("failed to create AI client: %w", err)
			}
			client = gemini
		}
		if client == nil {
			c.logger.Warn("AI fallback selected but GEMINI_API_KEY is not set; unmatched transactions will fail")
		}
		c.aiClient = client
		c.fallback = categorizer.NewAIStrategy(client, c.taxonomy, categorizer.AIOptions{
			MaxAttempts:       uint(cfg.AI.MaxAttempts),
			RetryDelay:        time.Duration(cfg.AI.RetryDelayMS) * time.Millisecond,
			Timeout:           time.Duration(cfg.AI.TimeoutSeconds) * time.Second,
			RequestsPerMinute: cfg.AI.RequestsPerMinute,
		}, c.logger)
	case config.FallbackManual:
		in, out := opts.Stdin, opts.Stdout
		if in == nil {
			in = os.Stdin
		}
		if out == nil {
			out = os.Stdout
		}
		c.fallback = categorizer.NewManualStrategy(in, out, c.taxonomy, c.logger)
	case config.FallbackNone, "":
		c.fallback = nil
	default:
		return fmt.Errorf("unknown fallback strategy: %s", cfg.Categorization.Fallback)
	}
	return nil
}

// GetLogger returns the container's logger instance.
func (c *Container) GetLogger() logging.Logger {
	return c.logger
}

// GetConfig returns the container's configuration instance.
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetMappingStore returns the loaded mapping store.
func (c *Container) GetMappingStore() *store.MappingStore {
	return c.mappings
}

// GetTaxonomy returns the category taxonomy. It is empty when none is configured.
func (c *Container) GetTaxonomy() *store.Taxonomy {
	return c.taxonomy
}

// GetAccounts returns the account translator.
func (c *Container) GetAccounts() *store.AccountTranslator {
	return c.accounts
}

// GetAIClient returns the AI client, or nil when the AI fallback is not in use.
func (c *Container) GetAIClient() categorizer.AIClient {
	return c.aiClient
}

// GetResolver returns the categorization resolver.
func (c *Container) GetResolver() *categorizer.Resolver {
	return c.resolver
}

// GetParser returns the RBC CSV parser.
func (c *Container) GetParser() *rbcparser.Parser {
	return c.parser
}

// GetAggregator returns the multi-file aggregator.
func (c *Container) GetAggregator() *batch.Aggregator {
	return c.aggregator
}

// GetDriver returns the batch driver.
func (c *Container) GetDriver() *batch.Driver {
	return c.driver
}

// Close releases the AI client connection, if any.
func (c *Container) Close() error {
	if closer, ok := c.aiClient.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			return err
		}
	}
	c.logger.Debug("Container closed")
	return nil
}
