package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/plotloom/plotloom-cli/internal/csvio"
	"github.com/plotloom/plotloom-cli/internal/project"
	"github.com/plotloom/plotloom-cli/internal/sheet"
)

var (
	importSheet  string
	importPolicy string
)

var importCmd = &cobra.Command{
	Use:   "import <file.csv>",
	Short: "Import a CSV file into a worksheet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		file := args[0]

		policy := importPolicy
		if policy == "" {
			policy = cfg.CSVRowPolicy
		}
		rowPolicy, err := csvio.ParseRowPolicy(policy)
		if err != nil {
			return err
		}
		opts := csvio.Options{RowPolicy: rowPolicy}
		if cfg.CSVDelimiter != "" {
			opts.Delimiter = rune(cfg.CSVDelimiter[0])
		}

		f, err := os.Open(file)
		if err != nil {
			return fmt.Errorf("open %s: %w", file, err)
		}
		defer f.Close()
		table, err := csvio.Read(f, opts)
		if err != nil {
			return fmt.Errorf("import %s: %w", file, err)
		}

		path, err := resolveProjectPath(true)
		if err != nil {
			return err
		}
		w, err := project.Load(path)
		if err != nil {
			return err
		}

		title := importSheet
		if title == "" {
			title = strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
		}
		win, err := w.Worksheet(title)
		if err != nil {
			// No such worksheet yet: import into a fresh one.
			win = w.AddWorksheet(title, sheet.FromRows(table.Data))
		} else {
			// Overlay at the origin; the sheet grows as needed and keeps
			// any cells outside the imported block.
			if err := win.Sheet.PasteBlock(0, 0, table.Data); err != nil {
				return err
			}
		}
		// Header text is only used for the ingest heuristic; columns always
		// get synthetic letter names.

		if err := w.Save(path); err != nil {
			return err
		}
		fmt.Printf("✓ Imported %s into %s (%d rows x %d cols)\n",
			filepath.Base(file), win.Title, table.Rows(), table.Cols())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().StringVar(&importSheet, "sheet", "", "target worksheet title (default: file name)")
	importCmd.Flags().StringVar(&importPolicy, "policy", "", "malformed row policy: nan or drop (default from config)")
}
