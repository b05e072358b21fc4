package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/plotloom/plotloom-cli/internal/project"
	"github.com/plotloom/plotloom-cli/internal/sheet"
)

var newTitle string

var newCmd = &cobra.Command{
	Use:   "new",
	Short: "Create a project with one empty worksheet",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveProjectPath(false)
		if err != nil {
			return err
		}
		w := project.New()
		win := w.AddWorksheet(newTitle, sheet.New(cfg.DefaultRows, cfg.DefaultCols))
		if err := w.Save(path); err != nil {
			return err
		}
		fmt.Printf("✓ Project created: %s (worksheet %s, %dx%d)\n",
			path, win.Title, cfg.DefaultRows, cfg.DefaultCols)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(newCmd)
	newCmd.Flags().StringVar(&newTitle, "title", "", "worksheet title (default Book1)")
}
