package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/plotloom/plotloom-cli/internal/project"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Summarize the project's windows, shapes, and roles",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveProjectPath(true)
		if err != nil {
			return err
		}
		w, err := project.Load(path)
		if err != nil {
			return err
		}

		fmt.Printf("Project: %s (%d windows)\n", path, len(w.Windows()))
		for _, win := range w.Windows() {
			switch win.Kind {
			case project.KindWorksheet:
				s := win.Sheet
				fmt.Printf("  worksheet %-16s %d rows x %d cols, roles %s\n",
					win.Title, s.Rows(), s.Cols(), describeRoles(s))
			case project.KindGraph:
				fmt.Printf("  graph     %-16s -> %s (%d series, %d overlays)\n",
					win.Title, win.Source, len(win.Graph.Series()), len(win.Graph.Overlays()))
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
