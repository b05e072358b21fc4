package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/plotloom/plotloom-cli/internal/csvio"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export <sheet>",
	Short: "Export a worksheet as CSV",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if exportOut == "" {
			return fmt.Errorf("--out is required")
		}
		_, win, _, err := openWorkspace(args[0])
		if err != nil {
			return err
		}
		s := win.Sheet

		f, err := os.Create(exportOut)
		if err != nil {
			return fmt.Errorf("create %s: %w", exportOut, err)
		}
		defer f.Close()
		if err := csvio.Write(f, s.DisplayNames(), s.Matrix()); err != nil {
			return fmt.Errorf("export %s: %w", win.Title, err)
		}
		fmt.Printf("✓ Exported %s to %s (%d rows x %d cols)\n",
			win.Title, exportOut, s.Rows(), s.Cols())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output CSV path")
}
