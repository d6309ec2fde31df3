package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/alextreichler/embroiderystore/internal/api"
	"github.com/alextreichler/embroiderystore/internal/cache"
	"github.com/alextreichler/embroiderystore/internal/config"
	"github.com/alextreichler/embroiderystore/internal/files"
)

var (
	downloadDir   string
	downloadToken string
)

// storefront download <product-id> [format]
var downloadCmd = &cobra.Command{
	Use:   "download <product-id> [format]",
	Short: "Download the design files of a product into a directory",
	Long: "Downloads one machine format, or every format when none is given. " +
		"Several files are bundled into a zip; if the zip cannot be built the " +
		"files are saved one by one, DOWNLOAD_DELAY apart.",
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		client := api.NewClient(cfg.APIBaseURL, cfg.APITimeout, cache.NewMemory(), 0)
		if downloadToken != "" {
			client = client.As(downloadToken)
		}
		product, err := client.GetProduct(ctx, args[0])
		if err != nil {
			return fmt.Errorf("fetch product: %w", err)
		}

		format := ""
		if len(args) == 2 {
			format = args[1]
		}
		var pairs []files.Pair
		if format == "" {
			pairs = files.ForProduct(product)
		} else {
			pairs = files.FromDescriptor(product.Files[format])
		}

		if err := os.MkdirAll(downloadDir, 0o755); err != nil {
			return err
		}
		fetcher := files.NewHTTPFetcher(cfg.UploadTimeout)
		sink := &files.DiskSink{Dir: downloadDir, Fetcher: fetcher}
		out, err := files.NewDispatcher(fetcher, cfg.DownloadDelay).
			Dispatch(ctx, files.ArchiveName(product.Name, format), pairs, sink)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		for _, path := range sink.Written {
			fmt.Fprintln(w, path)
		}
		fmt.Fprintf(w, "%s: %d file(s), %d skipped\n", out.Mode, out.Files, out.Skipped)
		return nil
	},
}

func init() {
	downloadCmd.Flags().StringVarP(&downloadDir, "out", "o", ".", "directory to write into")
	downloadCmd.Flags().StringVar(&downloadToken, "token", os.Getenv("STOREFRONT_TOKEN"), "bearer token for the backend")
}
