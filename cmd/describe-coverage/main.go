// Command describe-coverage prints the WCS 2.0 DescribeCoverage document for
// coverages in a catalog file.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mohammed-shakir/wcs-describe/internal/catalog"
	"github.com/mohammed-shakir/wcs-describe/internal/crs"
	"github.com/mohammed-shakir/wcs-describe/internal/logger"
	"github.com/mohammed-shakir/wcs-describe/internal/providers/h3meta"
	"github.com/mohammed-shakir/wcs-describe/internal/wcs"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "describe-coverage:", err)
		os.Exit(1)
	}
}

type options struct {
	catalogPath   string
	schemaBaseURL string
	h3Res         int
	h3MaxCells    int
	list          bool
	logLevel      string
}

func newRootCmd() *cobra.Command {
	opts := options{}
	cmd := &cobra.Command{
		Use:   "describe-coverage --catalog FILE [flags] ID...",
		Short: "Print the DescribeCoverage document for catalog coverages",
		Long: `Encode a WCS 2.0 CoverageDescriptions document for the given encoded
coverage ids (workspace__name) and write it to stdout. Nothing is written
when any coverage fails to encode.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, args)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.catalogPath, "catalog", "c", "", "coverage catalog YAML file")
	f.StringVar(&opts.schemaBaseURL, "schema-base-url", wcs.DefaultSchemaBaseURL, "base URL for xsi:schemaLocation")
	f.IntVar(&opts.h3Res, "h3-res", -1, "attach H3 footprint metadata at this resolution (negative disables)")
	f.IntVar(&opts.h3MaxCells, "h3-max-cells", h3meta.DefaultMaxCells, "upper bound on listed H3 cells")
	f.BoolVar(&opts.list, "list", false, "list the encoded coverage ids and exit")
	f.StringVar(&opts.logLevel, "log-level", "warn", "log level for diagnostics on stderr")
	_ = cmd.MarkFlagRequired("catalog")
	cmd.AddCommand(newPublishCmd())
	return cmd
}

func run(cmd *cobra.Command, opts options, ids []string) error {
	zl := logger.Build(logger.Config{
		Level:     opts.logLevel,
		Console:   true,
		Component: "describe-coverage",
	}, cmd.ErrOrStderr())
	log := logger.NewSlog(&zl)

	reg, err := crs.NewRegistry(64)
	if err != nil {
		return err
	}
	cat, err := catalog.Open(opts.catalogPath, reg, log)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.list {
		for _, id := range cat.IDs() {
			if _, err := fmt.Fprintln(out, id); err != nil {
				return fmt.Errorf("write id list: %w", err)
			}
		}
		return nil
	}
	if len(ids) == 0 {
		return fmt.Errorf("at least one coverage id is required")
	}

	providers := wcs.NewProviders()
	if opts.h3Res >= 0 {
		hp, err := h3meta.New(opts.h3Res, opts.h3MaxCells)
		if err != nil {
			return err
		}
		providers.Add(hp)
	}

	d := wcs.NewDescriber(cat,
		wcs.WithProviders(providers),
		wcs.WithSchemaBaseURL(opts.schemaBaseURL),
		wcs.WithLogger(log))
	return d.Describe(cmd.Context(), ids, out)
}
