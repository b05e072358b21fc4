package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/plotloom/plotloom-cli/internal/graph"
)

var graphTitle string

var graphCmd = &cobra.Command{
	Use:   "graph <sheet>",
	Short: "Add a graph window bound to a worksheet's role columns",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w, win, path, err := openWorkspace(args[0])
		if err != nil {
			return err
		}

		g := graph.New(win.Sheet)
		gw := w.AddGraph(graphTitle, win.Title, g)
		if err := w.Save(path); err != nil {
			return err
		}

		series := g.Series()
		fmt.Printf("✓ Graph %s bound to %s (%d series)\n", gw.Title, win.Title, len(series))
		for _, sr := range series {
			fmt.Printf("  %s (%d points)\n", sr.Label, len(sr.Y))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().StringVar(&graphTitle, "title", "", "graph title (default Graph1)")
}
