package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/bracket-extract/internal/fetch"
)

func newFetchCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "fetch <url>",
		Short: "Download result PDFs",
		Long: `Download a results PDF. When the URL is not a PDF it is read as a web
page and every PDF it links to is downloaded into --out-dir.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}

			paths, err := fetch.New(cfg.OutDir).Fetch(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			for _, p := range paths {
				fmt.Fprintln(opts.stdout, p)
			}
			return nil
		},
	}
}
