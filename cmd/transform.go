package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/plotloom/plotloom-cli/internal/formula"
)

var (
	transformExpr string
	transformName string
)

var transformCmd = &cobra.Command{
	Use:   "transform <sheet>",
	Short: "Evaluate a column expression and append the result",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if transformExpr == "" {
			return fmt.Errorf("--expr is required")
		}
		w, win, path, err := openWorkspace(args[0])
		if err != nil {
			return err
		}
		s := win.Sheet

		values, err := formula.Eval(transformExpr, s.Locals())
		if err != nil {
			return err
		}
		name := transformName
		if name == "" {
			name = transformExpr
		}
		j, err := s.AddColumn(values, name)
		if err != nil {
			return err
		}
		if err := w.Save(path); err != nil {
			return err
		}
		fmt.Printf("✓ Added column %s to %s\n", s.HeaderLabel(j), win.Title)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(transformCmd)
	transformCmd.Flags().StringVar(&transformExpr, "expr", "", "column expression, e.g. \"2*A - 0.5*B\"")
	transformCmd.Flags().StringVar(&transformName, "name", "", "long name for the new column (default: the expression)")
}
