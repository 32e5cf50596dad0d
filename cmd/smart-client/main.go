// Command smart-client ingests one web-form submission: it fetches the
// submission record by UUID, downloads the attached files, digests them and
// writes a metadata artifact next to the files.
//
// Usage:
//
//	smart-client [flags] <uuid>
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aarhusstadsarkiv/smart-client/internal/checksum"
	"github.com/aarhusstadsarkiv/smart-client/internal/config"
	"github.com/aarhusstadsarkiv/smart-client/internal/download"
	"github.com/aarhusstadsarkiv/smart-client/internal/history"
	"github.com/aarhusstadsarkiv/smart-client/internal/httpclient"
	"github.com/aarhusstadsarkiv/smart-client/internal/observability"
	"github.com/aarhusstadsarkiv/smart-client/internal/pipeline"
	"github.com/aarhusstadsarkiv/smart-client/internal/serialize"
	"github.com/aarhusstadsarkiv/smart-client/internal/storage/factory"
	"github.com/aarhusstadsarkiv/smart-client/internal/submission"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "smart-client: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	opts, err := parseFlags(cfg, os.Args[1:])
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := observability.NewStdoutLogger("smart-client", cfg.LogLevel, os.Stderr)
	metrics := observability.NewPrometheusMetrics("smart-client")

	p, cleanup, err := buildPipeline(ctx, cfg, opts, logger, metrics)
	if err != nil {
		return err
	}
	defer cleanup()

	summary, err := p.Run(ctx, opts)
	if err != nil {
		return err
	}

	printSummary(summary)
	return nil
}

// parseFlags resolves the run options from the command line, falling back
// to configured defaults. The format and checksum selectors are mutually
// exclusive within their group.
func parseFlags(cfg *config.Config, args []string) (pipeline.Options, error) {
	fs := flag.NewFlagSet("smart-client", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "Usage: smart-client [flags] <uuid>")
		fs.PrintDefaults()
	}

	dest := fs.String("dest", cfg.DefaultDestination, "destination directory (must exist)")
	jsonFlag := fs.Bool("json", false, "write metadata as submission.json")
	xmlFlag := fs.Bool("xml", false, "write metadata as submission.xml")
	arkibasFlag := fs.Bool("arkibas", false, "write metadata as journal.csv and indhold.csv")
	md5Flag := fs.Bool("md5", false, "digest files with md5")
	sha256Flag := fs.Bool("sha256", false, "digest files with sha256")

	if err := fs.Parse(args); err != nil {
		return pipeline.Options{}, err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return pipeline.Options{}, fmt.Errorf("expected exactly one submission uuid, got %d arguments", fs.NArg())
	}

	format, err := pickFormat(cfg, *jsonFlag, *xmlFlag, *arkibasFlag)
	if err != nil {
		return pipeline.Options{}, err
	}
	algo, err := pickAlgorithm(cfg, *md5Flag, *sha256Flag)
	if err != nil {
		return pipeline.Options{}, err
	}

	return pipeline.Options{
		UUID:        fs.Arg(0),
		Destination: *dest,
		Format:      format,
		Algorithm:   algo,
	}, nil
}

func pickFormat(cfg *config.Config, json, xml, arkibas bool) (serialize.Format, error) {
	selected := 0
	for _, set := range []bool{json, xml, arkibas} {
		if set {
			selected++
		}
	}
	if selected > 1 {
		return "", fmt.Errorf("flags -json, -xml and -arkibas are mutually exclusive")
	}
	switch {
	case json:
		return serialize.FormatJSON, nil
	case xml:
		return serialize.FormatXML, nil
	case arkibas:
		return serialize.FormatArkibas, nil
	default:
		return serialize.ParseFormat(cfg.DefaultFormat)
	}
}

func pickAlgorithm(cfg *config.Config, md5, sha256 bool) (checksum.Algorithm, error) {
	if md5 && sha256 {
		return "", fmt.Errorf("flags -md5 and -sha256 are mutually exclusive")
	}
	switch {
	case md5:
		return checksum.MD5, nil
	case sha256:
		return checksum.SHA256, nil
	default:
		return checksum.Parse(cfg.DefaultAlgorithm)
	}
}

// buildPipeline wires the run's components. The returned cleanup closes
// the history database.
func buildPipeline(ctx context.Context, cfg *config.Config, opts pipeline.Options, logger observability.Logger, metrics observability.Metrics) (*pipeline.Pipeline, func(), error) {
	client := httpclient.New(cfg.HTTP, cfg.APIKey)

	store, err := factory.New(ctx, cfg, opts.Destination, logger, metrics)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {}
	var journal *history.Store
	if cfg.History.Path != "" {
		journal, err = history.Open(cfg.History.Path, logger)
		if err != nil {
			// History is an audit aid; a broken journal must not block
			// an ingestion.
			logger.Warn("history database unavailable, continuing without it", "error", err)
		} else {
			cleanup = func() { journal.Close() }
		}
	}

	fetcher := submission.NewClient(client, cfg.SubmissionURL, logger, metrics)
	downloader := download.New(client, store, opts.Algorithm, logger, metrics)
	serializer := serialize.New(store, logger, metrics)

	if journal != nil {
		return pipeline.New(cfg, fetcher, downloader, serializer, journal, logger, metrics), cleanup, nil
	}
	return pipeline.New(cfg, fetcher, downloader, serializer, nil, logger, metrics), cleanup, nil
}

func printSummary(summary *pipeline.Summary) {
	fmt.Printf("Finished: %d files (%d downloaded, %d existing, %d missing, %d errored)\n",
		summary.Total(), summary.Downloaded, summary.Existing, summary.Missing, summary.Errored)

	for _, file := range summary.Files {
		if file.Checksum != "" {
			fmt.Printf("  %-10s %s (%s)\n", file.Outcome, file.Filename, file.Checksum)
		} else {
			fmt.Printf("  %-10s %s\n", file.Outcome, file.Filename)
		}
	}

	if len(summary.Artifacts) == 0 {
		fmt.Println("Metadata artifact already present, not overwritten.")
		return
	}
	for _, name := range summary.Artifacts {
		fmt.Printf("Wrote %s\n", name)
	}
}
