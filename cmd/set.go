package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var setCmd = &cobra.Command{
	Use:   "set <sheet> <row> <col> <value>",
	Short: "Set a cell value (empty string clears the cell)",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		w, win, path, err := openWorkspace(args[0])
		if err != nil {
			return err
		}
		s := win.Sheet

		row, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("row %q is not an integer", args[1])
		}
		col, err := resolveColumn(s, args[2])
		if err != nil {
			return err
		}
		if err := s.SetCell(row, col, args[3]); err != nil {
			return err
		}
		if err := w.Save(path); err != nil {
			return err
		}
		fmt.Printf("✓ %s[%d,%s] = %q\n", win.Title, row, s.HeaderLabel(col), args[3])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(setCmd)
}
