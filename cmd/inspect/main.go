// Command inspect loads the NEO catalog, links close approaches from a CAD
// export or a live CAD API query, and describes one NEO.
//
// Usage:
//
//	go run ./cmd/inspect -neos data/neos.csv -cad data/cad.json -pdes 433 -verbose
//	go run ./cmd/inspect -neos data/neos.csv -fetch -date-min 1900-01-01 -name Eros
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/couchcryptid/neo-approach-etl/internal/adapter/jpl"
	"github.com/couchcryptid/neo-approach-etl/internal/catalog"
	"github.com/couchcryptid/neo-approach-etl/internal/config"
	"github.com/couchcryptid/neo-approach-etl/internal/domain"
	"github.com/couchcryptid/neo-approach-etl/internal/observability"
)

type options struct {
	neoPath string
	cadPath string
	fetch   bool
	jplURL  string
	timeout time.Duration
	query   jpl.Query
	pdes    string
	name    string
	verbose bool
	debug   bool
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "inspect:", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	opts, err := parseFlags(args)
	if err != nil {
		return err
	}

	level := slog.LevelWarn
	if opts.debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cat, err := catalog.LoadNEOFile(opts.neoPath, logger)
	if err != nil {
		return err
	}

	neo := lookup(cat, opts)
	if neo == nil {
		fmt.Fprintln(out, "No matching NEOs exist in the database.")
		return nil
	}

	if opts.verbose {
		if err := linkApproaches(cat, neo, opts, logger); err != nil {
			return err
		}
	}

	fmt.Fprintln(out, neo)
	if opts.verbose {
		for _, ca := range cat.Approaches(neo) {
			fmt.Fprintf(out, "- %s\n", ca)
		}
	}
	return nil
}

// parseFlags reads flags, taking path and endpoint defaults from the service
// environment (NEO_CATALOG_PATH, JPL_CAD_URL, JPL_TIMEOUT).
func parseFlags(args []string) (options, error) {
	cfg, err := config.Load()
	if err != nil {
		return options{}, err
	}

	opts := options{timeout: cfg.JPLTimeout}
	fs := flag.NewFlagSet("inspect", flag.ContinueOnError)
	fs.StringVar(&opts.neoPath, "neos", cfg.NEOCatalogPath, "path to the SBDB NEO CSV export")
	fs.StringVar(&opts.cadPath, "cad", "", "path to a CAD JSON export")
	fs.BoolVar(&opts.fetch, "fetch", false, "query the JPL CAD API instead of reading -cad")
	fs.StringVar(&opts.jplURL, "jpl-url", cfg.JPLCADURL, "CAD API endpoint")
	fs.StringVar(&opts.query.DateMin, "date-min", "1900-01-01", "earliest approach date for -fetch")
	fs.StringVar(&opts.query.DateMax, "date-max", "2200-01-01", "latest approach date for -fetch")
	fs.StringVar(&opts.query.DistMax, "dist-max", "", "maximum approach distance for -fetch")
	fs.StringVar(&opts.pdes, "pdes", "", "primary designation of the NEO to inspect")
	fs.StringVar(&opts.name, "name", "", "IAU name of the NEO to inspect")
	fs.BoolVar(&opts.verbose, "verbose", false, "also list every linked close approach")
	fs.BoolVar(&opts.debug, "debug", false, "log catalog loading at debug level")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	if (opts.pdes == "") == (opts.name == "") {
		return options{}, errors.New("exactly one of -pdes or -name is required")
	}
	if opts.verbose && opts.cadPath == "" && !opts.fetch {
		return options{}, errors.New("-verbose needs -cad or -fetch")
	}
	if opts.cadPath != "" && opts.fetch {
		return options{}, errors.New("-cad and -fetch are mutually exclusive")
	}
	return opts, nil
}

func lookup(cat *catalog.Catalog, opts options) *domain.NearEarthObject {
	if opts.pdes != "" {
		return cat.ByDesignation(opts.pdes)
	}
	return cat.ByName(opts.name)
}

// linkApproaches loads close approaches for neo from the configured source and
// links them into cat.
func linkApproaches(cat *catalog.Catalog, neo *domain.NearEarthObject, opts options, logger *slog.Logger) error {
	if !opts.fetch {
		f, err := os.Open(opts.cadPath)
		if err != nil {
			return fmt.Errorf("open cad data: %w", err)
		}
		defer f.Close()

		approaches, stats, err := catalog.LoadApproaches(f, logger)
		if err != nil {
			return fmt.Errorf("load %s: %w", opts.cadPath, err)
		}
		return cat.LinkAndLog(approaches, stats, logger)
	}

	ctx, cancel := context.WithTimeout(context.Background(), opts.timeout)
	defer cancel()

	client := jpl.NewClient(opts.jplURL, opts.timeout, observability.NewMetrics(), logger)
	q := opts.query
	q.Designation = neo.Designation
	records, err := client.FetchApproaches(ctx, q)
	if err != nil {
		return err
	}

	var stats catalog.LoadStats
	approaches := catalog.BuildApproaches(records, &stats, logger)
	return cat.LinkAndLog(approaches, stats, logger)
}
