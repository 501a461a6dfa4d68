package cli

import (
	"github.com/spf13/cobra"

	"github.com/law-makers/datalayer/internal/engine/replay"
)

func newReplayCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "replay <snapshot.json>",
		Short: "Re-export a raw snapshot saved with --raw",
		Long: `Runs collection and export over a snapshot previously written by
"extract --raw", without loading the page again. Useful for trying other
keywords, payload keys or output formats on the same capture.`,
		Example: `  datalayer replay snapshot.json --keywords Impression -o events.md`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			driver := replay.New(args[0])
			defer driver.Close()
			return runCapture(cmd, GetApp(cmd), driver, args[0])
		},
	}
}
