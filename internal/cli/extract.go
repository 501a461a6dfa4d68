// internal/cli/extract.go
package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/law-makers/datalayer/internal/app"
	"github.com/law-makers/datalayer/internal/capture"
	"github.com/law-makers/datalayer/internal/config"
	"github.com/law-makers/datalayer/internal/engine"
	"github.com/law-makers/datalayer/internal/schema"
	"github.com/law-makers/datalayer/internal/ui"
	"github.com/law-makers/datalayer/internal/utils/headers"
	"github.com/law-makers/datalayer/internal/utils/output"
	urlutil "github.com/law-makers/datalayer/internal/utils/url"
)

func newExtractCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract <url>",
		Short: "Capture dataLayer events from a live page",
		Long: `Loads the page, scrolls to the bottom, clicks every link with navigation
suppressed, waits for instrumentation to settle, then reads window.dataLayer
once. Events whose name contains one of the keywords and that carry the
payload key are flattened and written as one table. Keyword matching is
case-sensitive: the default "impression" does not match "moduleImpression",
pass --keywords Impression,moduleInteraction for that naming.

Browser mode drives headless Chrome. Static mode fetches the HTML and runs
its inline scripts without a browser, capturing only page-load events.`,
		Example: `  # Capture with the defaults into extracted_data.csv
  datalayer extract https://shop.example.com

  # Custom payload key and keywords, JSON output
  datalayer extract https://shop.example.com --payload-key ecommerce --keywords view_item,select_item -o events.json

  # No browser available
  datalayer extract https://shop.example.com --mode static

  # Keep the raw queue for later replay
  datalayer extract https://shop.example.com --raw snapshot.json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runExtract,
	}
	config.RegisterCaptureFlags(cmd)
	return cmd
}

func runExtract(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return &usageError{fmt.Errorf("a target URL is required: %w", engine.ErrMissingURL)}
	}
	target, err := urlutil.Normalize(args[0])
	if err != nil {
		return &usageError{err}
	}

	rawHeaders, _ := cmd.Flags().GetStringArray("header")
	hdrs, err := headers.ParseHeaders(rawHeaders)
	if err != nil {
		return &usageError{err}
	}

	a := GetApp(cmd)
	driver, err := a.NewDriver(hdrs, progressWriter(cmd, a))
	if err != nil {
		return err
	}
	defer func() {
		if err := driver.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close driver")
		}
	}()

	return runCapture(cmd, a, driver, target)
}

// runCapture runs the pipeline with the configured exporter and prints a
// summary on success.
func runCapture(cmd *cobra.Command, a *app.Application, driver engine.PageDriver, target string) error {
	cfg := a.Config

	var format output.Format
	if cfg.OutputFormat != "" {
		f, err := output.ParseFormat(cfg.OutputFormat)
		if err != nil {
			return &usageError{err}
		}
		format = f
	}

	exporter := capture.ExporterFunc(func(table *schema.Table) error {
		return output.Save(table, cfg.OutputPath, format)
	})

	res, err := capture.New(driver, exporter, a.CaptureOptions()).Run(cmd.Context(), target)
	if err != nil {
		return err
	}

	if !isQuiet(cmd) {
		printSummary(cmd.OutOrStdout(), res, cfg.OutputPath)
	}
	return nil
}

func printSummary(w io.Writer, res *capture.Result, path string) {
	if res.Events < 0 {
		fmt.Fprintf(w, "%s\n", ui.Info("No event queue found on the page"))
	}
	fmt.Fprintf(w, "%s %s rows, %d columns from %d events\n",
		ui.Success("✓"), ui.Bold(fmt.Sprint(len(res.Table.Rows))), len(res.Table.Header), max(res.Events, 0))
	fmt.Fprintf(w, "  %s %s\n", ui.Dim("Output:"), path)
	fmt.Fprintf(w, "  %s %s\n", ui.Dim("Run ID:"), res.RunID)
	fmt.Fprintf(w, "  %s %s\n", ui.Dim("Took:  "), res.Timings.Total.Round(time.Millisecond))
}

func isQuiet(cmd *cobra.Command) bool {
	quiet, _ := cmd.Flags().GetBool("quiet")
	return quiet
}

// progressWriter returns where the link progress bar goes, or nil to hide it.
func progressWriter(cmd *cobra.Command, a *app.Application) io.Writer {
	if isQuiet(cmd) || a.Config.JSONLog {
		return nil
	}
	return cmd.ErrOrStderr()
}
