// Package main is a one-shot probe: it runs the extraction pipeline against a
// single URL and prints the result as JSON.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"pricealert/packages/config"
	"pricealert/packages/domain"
	"pricealert/packages/logging"
	"pricealert/packages/pipeline"
)

var errExtractionFailed = errors.New("extraction failed")

func newRootCmd(stdout io.Writer) *cobra.Command {
	var (
		timeout   time.Duration
		rulesFile string
		verbose   bool
	)

	cmd := &cobra.Command{
		Use:           "pricealert <url>",
		Short:         "Fetch a product page and print its price, currency and name.",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(logging.NewHandler(cmd.ErrOrStderr(), "", level)))

			cfg := config.Load()
			if cmd.Flags().Changed("timeout") {
				cfg.FetchTimeout = timeout
			}
			if rulesFile != "" {
				cfg.CurrencyRulesFile = rulesFile
			}

			coordinator, err := pipeline.NewFromConfig(cfg)
			if err != nil {
				return err
			}
			return probe(cmd.Context(), coordinator, args[0], stdout)
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 8*time.Second, "page fetch timeout")
	cmd.Flags().StringVar(&rulesFile, "rules", "", "JSON file with extra currency rules")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log pipeline decisions to stderr")
	return cmd
}

type runner interface {
	Run(ctx context.Context, req domain.ExtractionRequest) (*domain.ExtractionResult, error)
}

// probe prints the result, or an {"error","status"} object and errExtractionFailed.
func probe(ctx context.Context, r runner, rawURL string, out io.Writer) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)

	res, err := r.Run(ctx, domain.ExtractionRequest{URL: rawURL})
	if err != nil {
		_ = enc.Encode(map[string]any{"error": err.Error(), "status": domain.StatusCode(err)})
		return fmt.Errorf("%w: %w", errExtractionFailed, err)
	}
	return enc.Encode(res)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout).ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errExtractionFailed) {
			fmt.Fprintln(os.Stderr, err)
		}
		stop()
		os.Exit(1)
	}
}
