package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/linkaudit/internal/classifier"
	"github.com/nao1215/linkaudit/internal/config"
	"github.com/nao1215/linkaudit/internal/crawler"
	"github.com/nao1215/linkaudit/internal/database"
	"github.com/nao1215/linkaudit/internal/fetcher"
	"github.com/nao1215/linkaudit/internal/log"
	"github.com/nao1215/linkaudit/internal/model"
	"github.com/nao1215/linkaudit/internal/pipeline"
	"github.com/nao1215/linkaudit/internal/storage"
	"github.com/nao1215/linkaudit/internal/tor"
)

// app holds the collaborators shared by the extraction commands.
type app struct {
	cfg    *config.Config
	logger *slog.Logger

	// status receives progress messages meant for the user.
	status io.Writer

	parser  *crawler.Parser
	service *pipeline.Service
	storage *storage.LocalStorage

	// closers run in reverse order on Close.
	closers []func() error
}

// newApp wires the extraction service from cfg. Tor is started or
// verified here, so newApp may block until the proxy is ready.
func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger, status io.Writer) (*app, error) {
	a := &app{
		cfg:    cfg,
		logger: logger,
		status: status,
		parser: crawler.NewParser(),
	}

	client, err := a.httpClient(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	var rules config.ClassifierRules
	if cfg.SiteConfigs != nil {
		rules = cfg.SiteConfigs.Classifier
	}
	cls, err := classifier.New(classifier.WithRules(rules), classifier.WithLogger(logger))
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("invalid classifier rules: %w", err)
	}

	opts := []pipeline.ServiceOption{
		pipeline.WithUserAgent(cfg.UserAgent),
		pipeline.WithServiceLogger(logger),
	}
	if cfg.Save {
		store, err := a.openStorage()
		if err != nil {
			a.Close()
			return nil, err
		}
		a.storage = store
		opts = append(opts, pipeline.WithStorage(store))
	}

	a.service = pipeline.NewService(fetcher.NewFromConfig(cfg, client, logger), a.parser, cls, opts...)
	return a, nil
}

// httpClient returns the client used for page fetches. Without Tor it is
// nil and the fetcher builds its own.
func (a *app) httpClient(ctx context.Context) (*http.Client, error) {
	switch {
	case a.cfg.TorProxyAddress != "":
		client, err := tor.NewClient(a.cfg.TorProxyAddress, a.cfg.Timeout)
		if err != nil {
			return nil, fmt.Errorf("failed to create Tor client: %w", err)
		}
		if err := client.CheckConnection(ctx).Err(); err != nil {
			return nil, fmt.Errorf("tor proxy check failed (make sure Tor is running at %s): %w",
				a.cfg.TorProxyAddress, err)
		}
		a.logger.Info("Tor proxy connection verified", "address", a.cfg.TorProxyAddress)
		return client.HTTPClient(), nil

	case a.cfg.UseEmbeddedTor:
		embedded := tor.NewEmbeddedTor(
			tor.WithStartupTimeout(a.cfg.TorStartupTimeout),
			tor.WithLogger(a.logger),
		)
		fmt.Fprintln(a.status, "Starting embedded Tor daemon (this may take a while)...")
		if err := embedded.Start(ctx); err != nil {
			return nil, fmt.Errorf("failed to start embedded Tor: %w", err)
		}
		a.closers = append(a.closers, func() error {
			a.logger.Info("stopping embedded Tor daemon")
			return embedded.Stop()
		})
		client, err := embedded.NewClient(a.cfg.Timeout)
		if err != nil {
			return nil, fmt.Errorf("failed to create Tor client: %w", err)
		}
		return client.HTTPClient(), nil

	default:
		return nil, nil
	}
}

// openStorage opens the history database and the result directory.
func (a *app) openStorage() (*storage.LocalStorage, error) {
	db, err := database.Open(a.cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	a.closers = append(a.closers, db.Close)
	a.logger.Debug("history database opened", "path", db.Path())

	return storage.NewLocalStorage(a.cfg.OutputDir,
		storage.WithRecorder(db),
		storage.WithLogger(a.logger),
	), nil
}

// spiderFor returns a spider configured for the host of startURL and the
// page budget to use with it.
func (a *app) spiderFor(startURL string) (*crawler.Spider, int) {
	var host string
	if u, err := model.ParseAbsoluteURL(startURL); err == nil {
		host = u.Hostname()
	}
	site := a.cfg.SiteConfigs.GetSiteConfig(host)

	maxPages := a.cfg.MaxPages
	if site.MaxPages > 0 {
		maxPages = site.MaxPages
	}

	spider := crawler.NewSpider(a.service, a.parser,
		crawler.WithDelay(a.cfg.CrawlDelay),
		crawler.WithIgnorePatterns(site.IgnorePatterns),
		crawler.WithFollowPatterns(site.FollowPatterns),
		crawler.WithSpiderLogger(a.logger),
	)
	return spider, maxPages
}

// save persists a crawl result, which does not pass through the
// extraction pipeline. It returns "" when saving is disabled.
func (a *app) save(ctx context.Context, result *model.ExtractionResult) (string, error) {
	if a.storage == nil {
		return "", nil
	}
	return a.storage.Save(ctx, result, "")
}

// Close releases the database and stops embedded Tor.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Error("cleanup failed", "error", err)
		}
	}
	a.closers = nil
}

// addFetchFlags registers the flags shared by every command that fetches
// pages.
func addFetchFlags(cmd *cobra.Command) {
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout, "Timeout of each fetch attempt")
	cmd.Flags().Int("retries", config.DefaultMaxRetries, "Number of fetch attempts, including the first")
	cmd.Flags().String("user-agent", config.DefaultUserAgent, "User-Agent header sent with requests")

	cmd.Flags().Bool("tor", false, "Fetch through an embedded Tor daemon")
	cmd.Flags().String("tor-proxy", "", "Fetch through an existing Tor SOCKS5 proxy (e.g., 127.0.0.1:9050)")
	cmd.Flags().Duration("tor-timeout", config.DefaultTorStartupTimeout, "Timeout for embedded Tor startup")
}

// addOutputFlags registers the flags that control how results are written
// and saved.
func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("format", "f", config.DefaultFormat, "Output format: json, text, markdown or csv")
	cmd.Flags().StringP("output", "o", "", "Write the result to a file instead of stdout")
	cmd.Flags().BoolP("save", "s", false, "Save the result as JSON and record it in the history")
	cmd.Flags().String("output-dir", config.DefaultOutputDir, "Directory saved results are written to")
	addDBFlag(cmd)
}

// addDBFlag registers the history database location.
func addDBFlag(cmd *cobra.Command) {
	cmd.Flags().String("db-dir", config.XDGDataDir(), "Directory of the history database")
}

// buildConfig layers defaults, the config file, LINKAUDIT_* variables and
// explicitly set flags, in that order, and validates the result.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error
	cfg.ConfigFilePath, err = cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return nil, err
	}

	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case configPath != "":
		cf, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		if err := cfg.ApplyFile(cf); err != nil {
			return nil, err
		}
	case explicitConfigPath:
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	default:
		cfg.SiteConfigs = &config.File{Sites: make(map[string]config.SiteConfig)}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if err := applyFlags(cmd, cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	return cfg, nil
}

// applyFlags copies the flags the user set into cfg. Flags a command does
// not define are skipped.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	changed := func(name string) bool {
		return flags.Lookup(name) != nil && flags.Changed(name)
	}

	var errs []error
	setString := func(name string, dst *string) {
		if changed(name) {
			v, err := flags.GetString(name)
			errs = append(errs, err)
			*dst = v
		}
	}
	setInt := func(name string, dst *int) {
		if changed(name) {
			v, err := flags.GetInt(name)
			errs = append(errs, err)
			*dst = v
		}
	}
	setBool := func(name string, dst *bool) {
		if changed(name) {
			v, err := flags.GetBool(name)
			errs = append(errs, err)
			*dst = v
		}
	}
	setDuration := func(name string, dst *time.Duration) {
		if changed(name) {
			v, err := flags.GetDuration(name)
			errs = append(errs, err)
			*dst = v
		}
	}

	setDuration("timeout", &cfg.Timeout)
	setInt("retries", &cfg.MaxRetries)
	setString("user-agent", &cfg.UserAgent)
	setBool("tor", &cfg.UseEmbeddedTor)
	setString("tor-proxy", &cfg.TorProxyAddress)
	setDuration("tor-timeout", &cfg.TorStartupTimeout)

	setString("format", &cfg.Format)
	setString("output", &cfg.OutputFile)
	setBool("save", &cfg.Save)
	setString("output-dir", &cfg.OutputDir)
	setString("db-dir", &cfg.DBDir)

	setInt("max-pages", &cfg.MaxPages)
	setDuration("delay", &cfg.CrawlDelay)
	setInt("concurrency", &cfg.Concurrency)
	setString("host", &cfg.Host)
	setInt("port", &cfg.Port)

	root := cmd.Root().PersistentFlags()
	var err error
	if cfg.Verbose, err = root.GetBool("verbose"); err != nil {
		errs = append(errs, err)
	}
	if cfg.JSONLogs, err = root.GetBool("json-logs"); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// newLogger creates the stderr logger. URLs and secrets are masked by the
// secure handler.
func newLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	if cfg.JSONLogs {
		return log.NewSecureJSONLogger(w, cfg.Verbose)
	}
	return log.NewSecureLogger(w, cfg.Verbose)
}

// setup builds the config and logger of a command.
func setup(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	logger := newLogger(cmd.ErrOrStderr(), cfg)
	slog.SetDefault(logger)
	return cfg, logger, nil
}

// siteCrawler applies the per-site crawl settings of the config file to
// each crawl request.
type siteCrawler struct {
	app *app
}

// CrawlAndExtract crawls startURL with the spider configured for its host.
func (c siteCrawler) CrawlAndExtract(ctx context.Context, startURL string, maxPages int) (*model.ExtractionResult, error) {
	spider, _ := c.app.spiderFor(startURL)
	return spider.CrawlAndExtract(ctx, startURL, maxPages)
}
