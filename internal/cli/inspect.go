package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/bracket-extract/internal/extract"
	"github.com/pfrederiksen/bracket-extract/internal/pdfsource"
)

const separator = "================================================================================"

func newInspectCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <pdf> [page]",
		Short: "Dump text lines, word bands and tables of a PDF",
		Long: `Print what the extractor sees on each page: the plain text lines, the
words grouped into horizontal bands with their y position, and any tables the
geometric detector finds. Pages are numbered from 1.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}

			path := args[0]
			if err := checkFile(path); err != nil {
				return err
			}

			page := 0
			if len(args) > 1 {
				page, err = strconv.Atoi(args[1])
				if err != nil || page < 1 {
					return fmt.Errorf("invalid page number: %s", args[1])
				}
			}

			doc, err := pdfsource.Open(cfg.Backend, path)
			if err != nil {
				return fmt.Errorf("opening %s: %w", path, err)
			}
			defer doc.Close()

			wopts := pdfsource.WordOptions{
				XTolerance:     cfg.Words.XTolerance,
				YTolerance:     cfg.Words.YTolerance,
				KeepBlankChars: cfg.Words.KeepBlankChars,
			}
			return inspect(opts.stdout, doc, path, page, cfg.Category, wopts)
		},
	}
}

// inspect writes the debug dump of one page, or of every page when page is 0.
func inspect(w io.Writer, doc pdfsource.Document, path string, page int, category string, wopts pdfsource.WordOptions) error {
	count, err := doc.PageCount()
	if err != nil {
		return fmt.Errorf("counting pages: %w", err)
	}
	fmt.Fprintf(w, "PDFファイル: %s\n", path)
	fmt.Fprintf(w, "総ページ数: %d\n\n", count)

	first, last := 0, count-1
	if page > 0 {
		if page > count {
			return fmt.Errorf("page %d does not exist (document has %d pages)", page, count)
		}
		first, last = page-1, page-1
	}

	for i := first; i <= last; i++ {
		fmt.Fprintln(w, separator)
		fmt.Fprintf(w, "ページ %d\n", i+1)
		fmt.Fprintf(w, "%s\n\n", separator)

		text, err := doc.PageText(i)
		if err != nil {
			return fmt.Errorf("reading page %d: %w", i+1, err)
		}
		text = extract.Normalize(text)

		fmt.Fprintln(w, "【テキスト】")
		if strings.TrimSpace(text) == "" {
			fmt.Fprintln(w, "テキストが抽出できませんでした")
		} else {
			if category != "" && strings.Contains(text, extract.Normalize(category)) {
				fmt.Fprintf(w, ">>> %s のページ <<<\n", category)
			}
			for n, line := range strings.Split(text, "\n") {
				fmt.Fprintf(w, "%3d: %q\n", n, line)
			}
		}

		fmt.Fprintln(w, "\n【単語（y座標順）】")
		words, err := doc.PageWords(i, wopts)
		if err != nil {
			fmt.Fprintf(w, "単語を抽出できませんでした: %v\n", err)
		} else {
			for _, band := range pdfsource.Bands(words, wopts.YTolerance) {
				fmt.Fprintf(w, "Y=%3.0f: %s\n", band.Top, extract.Normalize(band.Text()))
			}
		}

		fmt.Fprintln(w, "\n【テーブル】")
		tables, err := doc.PageTables(i)
		switch {
		case err != nil:
			fmt.Fprintf(w, "テーブルを検出できませんでした: %v\n", err)
		case len(tables) == 0:
			fmt.Fprintln(w, "テーブルは検出されませんでした")
		default:
			for t, grid := range tables {
				fmt.Fprintf(w, "テーブル %d:\n", t+1)
				for r, row := range grid {
					if r == 5 {
						fmt.Fprintf(w, "  ... (%d 行)\n", len(grid))
						break
					}
					fmt.Fprintf(w, "  %q\n", row)
				}
			}
		}
		fmt.Fprintln(w)
	}
	return nil
}
