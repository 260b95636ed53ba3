package main

import (
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/nao1215/linkaudit/internal/api"
	"github.com/nao1215/linkaudit/internal/config"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve extraction and crawling over HTTP",
		Long: `Serve starts an HTTP API with the following endpoints:

  GET  /health   service status, version and uptime
  POST /extract  {"url": "...", "format": "json", "save_result": false}
  POST /crawl    {"url": "...", "max_pages": 5, "format": "json"}

Results saved through the API need the --save flag, which opens the result
directory and the history database. max_pages is capped at 50.

Examples:
  linkaudit serve
  linkaudit serve --host 0.0.0.0 --port 9000 --save`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}

	addFetchFlags(cmd)
	cmd.Flags().String("host", config.DefaultHost, "Listen address")
	cmd.Flags().Int("port", config.DefaultPort, "Listen port")
	cmd.Flags().IntP("max-pages", "m", config.DefaultMaxPages, "Default page budget of /crawl")
	cmd.Flags().Duration("delay", config.DefaultCrawlDelay, "Pause between page visits during a crawl")
	cmd.Flags().Bool("save", false, "Allow save_result by opening the result directory and history database")
	cmd.Flags().String("output-dir", config.DefaultOutputDir, "Directory saved results are written to")
	addDBFlag(cmd)

	return cmd
}

// runServeCmd executes the serve command.
func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	a, err := newApp(ctx, cfg, logger, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	gin.SetMode(gin.ReleaseMode)

	server := api.NewServer(a.service, siteCrawler{app: a},
		api.WithVersion(getVersion()),
		api.WithMaxPages(cfg.MaxPages),
		api.WithFormatter(newFormatter()),
		api.WithLogger(logger),
	)
	return server.ListenAndServe(ctx, cfg.Host, cfg.Port)
}
