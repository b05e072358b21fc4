package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/plotloom/plotloom-cli/internal/fit"
	"github.com/plotloom/plotloom-cli/internal/sheet"
)

var (
	fitModel string
	fitXCol  string
	fitYCol  string
	fitP0    string
)

var fitCmd = &cobra.Command{
	Use:   "fit <sheet>",
	Short: "Fit a model curve to a worksheet's X/Y data",
	Long: `Fit a model to the worksheet's role columns (or the columns named by
--x/--y). Prints the fitted parameters with one-sigma uncertainties and stores
the resampled curve as an overlay on every graph bound to the sheet.

Available models: ` + strings.Join(fit.ModelNames(), ", ") + `.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if fitModel == "" {
			return fmt.Errorf("--model is required (one of %s)", strings.Join(fit.ModelNames(), ", "))
		}
		model, err := fit.Lookup(fitModel)
		if err != nil {
			return err
		}

		w, win, path, err := openWorkspace(args[0])
		if err != nil {
			return err
		}
		s := win.Sheet

		xi, yi, err := fitColumns(s)
		if err != nil {
			return err
		}
		xcol, err := s.Column(xi)
		if err != nil {
			return err
		}
		ycol, err := s.Column(yi)
		if err != nil {
			return err
		}
		x, y := fit.FilterFinite(xcol, ycol)

		opts := []fit.Option{
			fit.WithSamples(cfg.FitSamples),
			fit.WithMaxIter(cfg.FitMaxIter),
		}
		if fitP0 != "" {
			p0, err := parseGuess(fitP0, len(model.Params))
			if err != nil {
				return err
			}
			opts = append(opts, fit.WithGuess(p0))
		}

		res, err := fit.Curve(x, y, model, opts...)
		if err != nil {
			return err
		}

		fmt.Printf("✓ Fit %s to %s (%s vs %s, %d points)\n",
			model.Name, win.Title, s.HeaderLabel(yi), s.HeaderLabel(xi), len(x))
		errs := res.StdErrs()
		for i, name := range model.Params {
			if errs != nil {
				fmt.Printf("  %-8s = %12.6g ± %.3g\n", name, res.Params[i], errs[i])
			} else {
				fmt.Printf("  %-8s = %12.6g\n", name, res.Params[i])
			}
		}

		label := fmt.Sprintf("%s fit of %s", model.Name, s.HeaderLabel(yi))
		for _, gw := range w.Graphs(win.Title) {
			gw.Graph.AddOverlay(label, res.XFit, res.YFit)
		}
		if err := w.Save(path); err != nil {
			return err
		}
		return nil
	},
}

// fitColumns picks the data columns: explicit flags win, then role tags,
// then the first two columns.
func fitColumns(s *sheet.Sheet) (xi, yi int, err error) {
	if fitXCol != "" {
		xi, err = resolveColumn(s, fitXCol)
		if err != nil {
			return 0, 0, err
		}
	} else if x, ok := s.RoleX(); ok {
		xi = x
	} else {
		xi = 0
	}

	if fitYCol != "" {
		yi, err = resolveColumn(s, fitYCol)
		if err != nil {
			return 0, 0, err
		}
		return xi, yi, nil
	}
	if ys := s.RoleYs(); len(ys) > 0 {
		return xi, ys[0], nil
	}
	if s.Cols() < 2 {
		return 0, 0, fmt.Errorf("sheet has no y column to fit")
	}
	return xi, 1, nil
}

func parseGuess(csv string, want int) ([]float64, error) {
	parts := strings.Split(csv, ",")
	if len(parts) != want {
		return nil, fmt.Errorf("--p0 needs %d values, got %d", want, len(parts))
	}
	out := make([]float64, len(parts))
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("--p0 value %q is not a number", part)
		}
		out[i] = v
	}
	return out, nil
}

func init() {
	rootCmd.AddCommand(fitCmd)
	fitCmd.Flags().StringVar(&fitModel, "model", "", "model name")
	fitCmd.Flags().StringVar(&fitXCol, "x", "", "x column (default: the X role, else column 0)")
	fitCmd.Flags().StringVar(&fitYCol, "y", "", "y column (default: the first Y role, else column 1)")
	fitCmd.Flags().StringVar(&fitP0, "p0", "", "comma-separated initial parameter guess")
}
