package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/charmbracelet/log"
	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"

	"github.com/octobees/site-scraper/internal/bitable"
	"github.com/octobees/site-scraper/internal/config"
	"github.com/octobees/site-scraper/internal/entity"
	"github.com/octobees/site-scraper/internal/extractor"
	"github.com/octobees/site-scraper/internal/fetcher"
	"github.com/octobees/site-scraper/internal/logging"
	"github.com/octobees/site-scraper/internal/service"
)

type options struct {
	render  bool
	write   bool
	quiet   bool
	timeout time.Duration
}

// output is what the command prints for one url.
type output struct {
	URL     string                 `json:"url"`
	Mode    string                 `json:"mode"`
	Results entity.ExtractedRecord `json:"results"`
	Write   *writeOutput           `json:"write,omitempty"`
}

type writeOutput struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	RecordID string `json:"recordId,omitempty"`
}

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := options{}
	cmd := &cobra.Command{
		Use:          "extract <url>",
		Short:        "Extract contact details from a company website and print them as JSON",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger := logging.New(stderr, cfg.LogLevel)
			return run(cmd.Context(), cfg, opts, args[0], stdout, stderr, logger)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	flags := cmd.Flags()
	flags.BoolVar(&opts.render, "render", false, "load the page in headless Chrome before extracting")
	flags.BoolVar(&opts.write, "write", false, "append the record to the Bitable table configured in the environment")
	flags.BoolVarP(&opts.quiet, "quiet", "q", false, "disable the progress spinner")
	flags.DurationVar(&opts.timeout, "timeout", 0, "overall timeout, defaults to FETCH_TIMEOUT plus write time")
	return cmd
}

func run(ctx context.Context, cfg *config.Config, opts options, target string, stdout, stderr io.Writer, logger *log.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}
	timeout := opts.timeout
	if timeout <= 0 {
		timeout = cfg.Fetch.Timeout + cfg.Fetch.RenderTimeout + 10*time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var writer service.RecordWriter
	var defaults entity.FeishuConfig
	if opts.write {
		writer = service.NewBitableWriter(
			bitable.NewClient(&http.Client{Timeout: 10 * time.Second}, cfg.FeishuBaseURL, bitable.WithLogger(logger)),
			logger.WithPrefix("bitable"),
		)
		defaults = entity.FeishuConfig{
			AppID:           cfg.Feishu.AppID,
			AppSecret:       cfg.Feishu.AppSecret,
			TableID:         cfg.Feishu.TableID,
			BitableAppToken: cfg.Feishu.BitableAppToken,
		}
	}

	// the operator picks the target, so local and intranet hosts are fine
	extractOpts := []service.ExtractOption{
		service.WithDefaultConfig(defaults),
		service.WithLogger(logger),
		service.WithPrivateTargets(),
	}
	if opts.render {
		extractOpts = append(extractOpts, service.WithRenderer(
			fetcher.NewRenderer(cfg.Fetch.RenderTimeout, cfg.Fetch.UserAgent),
			extractor.New(extractor.WithVariant(extractor.VariantRendered)),
		))
	}
	svc := service.NewExtractService(
		fetcher.NewHTTPFetcher(nil, fetcher.Options{
			Timeout:   cfg.Fetch.Timeout,
			UserAgent: cfg.Fetch.UserAgent,
			MaxBytes:  cfg.Fetch.MaxBytes,
		}),
		extractor.New(),
		writer,
		extractOpts...,
	)

	var s *spinner.Spinner
	if !opts.quiet {
		s = spinner.New(spinner.CharSets[9], 100*time.Millisecond, spinner.WithWriter(stderr))
		s.Suffix = " extracting " + target
		s.Start()
	}

	out, err := svc.Extract(ctx, service.ExtractInput{URL: target, Render: opts.render})
	if s != nil {
		s.Stop()
	}
	if err != nil {
		return err
	}

	result := output{URL: out.URL, Mode: out.Mode, Results: out.Record}
	if opts.write {
		result.Write = &writeOutput{
			Status:   out.Write.Status,
			Message:  out.Write.Message,
			RecordID: out.Write.RecordID,
		}
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(result)
}
