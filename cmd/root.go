package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	cfgpkg "github.com/plotloom/plotloom-cli/internal/config"
	"github.com/plotloom/plotloom-cli/internal/project"
	"github.com/plotloom/plotloom-cli/internal/sheet"
	"github.com/plotloom/plotloom-cli/internal/utils"
)

const defaultProjectFile = "plotloom.olp"

var (
	// Global flags
	cfgFile     string
	projectFile string

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "plotloom",
	Short: "PlotLoom CLI: worksheet data analysis, graphing, and curve fitting",
	Long: `PlotLoom is a command-line data-analysis workbench. It manages project
archives of worksheets and graph views: import CSV data, derive columns from
expressions, tag plotting roles, and fit curves, all from the shell.`,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Initialize configuration before any command runs
	cobra.OnInitialize(loadConfig)
	// Persistent global flags available to all subcommands
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.plotloom/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&projectFile, "project", "p", "", "project archive (default is ./"+defaultProjectFile+")")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to built-in defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		cfg = &cfgpkg.Global{
			DefaultRows:  1000,
			DefaultCols:  2,
			CSVRowPolicy: "nan",
			FitSamples:   1000,
			FitMaxIter:   10000,
		}
		return
	}
	cfg = c
}

// resolveProjectPath returns the archive path a command should operate on.
// mustExist commands walk up from the working directory when no flag is set.
func resolveProjectPath(mustExist bool) (string, error) {
	if projectFile != "" {
		return projectFile, nil
	}
	if !mustExist {
		return defaultProjectFile, nil
	}
	path, err := utils.FindProjectFile("", defaultProjectFile)
	if err != nil {
		return "", fmt.Errorf("no project given and %w", err)
	}
	return path, nil
}

// openWorkspace loads the project archive plus the named worksheet.
func openWorkspace(sheetTitle string) (*project.Workspace, *project.Window, string, error) {
	path, err := resolveProjectPath(true)
	if err != nil {
		return nil, nil, "", err
	}
	w, err := project.Load(path)
	if err != nil {
		return nil, nil, "", err
	}
	win, err := w.Worksheet(sheetTitle)
	if err != nil {
		return nil, nil, "", err
	}
	return w, win, path, nil
}

// resolveColumn accepts either a base name ("A", "AB") or a zero-based index.
func resolveColumn(s *sheet.Sheet, arg string) (int, error) {
	if n, err := strconv.Atoi(arg); err == nil {
		if n < 0 || n >= s.Cols() {
			return 0, fmt.Errorf("column index %d out of range [0,%d)", n, s.Cols())
		}
		return n, nil
	}
	j, err := sheet.ColumnIndex(strings.ToUpper(arg))
	if err != nil {
		return 0, err
	}
	if j >= s.Cols() {
		return 0, fmt.Errorf("column %s beyond sheet width %d", arg, s.Cols())
	}
	return j, nil
}

func resolveColumnList(s *sheet.Sheet, csv string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(csv, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		j, err := resolveColumn(s, part)
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, nil
}
