package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/plotloom/plotloom-cli/internal/sheet"
)

var (
	rolesX     string
	rolesY     string
	rolesZ     string
	rolesClear bool
)

var rolesCmd = &cobra.Command{
	Use:   "roles <sheet>",
	Short: "Assign plotting roles (X/Y/Z) to worksheet columns",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w, win, path, err := openWorkspace(args[0])
		if err != nil {
			return err
		}
		s := win.Sheet

		if rolesClear {
			s.ClearRoles()
		}
		if rolesX != "" {
			j, err := resolveColumn(s, rolesX)
			if err != nil {
				return err
			}
			if err := s.SetRoleX(j); err != nil {
				return err
			}
		}
		if rolesY != "" {
			ys, err := resolveColumnList(s, rolesY)
			if err != nil {
				return err
			}
			if err := s.AddRoleY(ys...); err != nil {
				return err
			}
		}
		if rolesZ != "" {
			j, err := resolveColumn(s, rolesZ)
			if err != nil {
				return err
			}
			if err := s.SetRoleZ(j); err != nil {
				return err
			}
		}

		if err := w.Save(path); err != nil {
			return err
		}
		fmt.Printf("✓ Roles on %s: %s\n", win.Title, describeRoles(s))
		return nil
	},
}

func describeRoles(s *sheet.Sheet) string {
	var parts []string
	if x, ok := s.RoleX(); ok {
		parts = append(parts, "X="+s.HeaderLabel(x))
	}
	for _, y := range s.RoleYs() {
		parts = append(parts, "Y="+s.HeaderLabel(y))
	}
	if z, ok := s.RoleZ(); ok {
		parts = append(parts, "Z="+s.HeaderLabel(z))
	}
	if len(parts) == 0 {
		return "(none)"
	}
	return strings.Join(parts, " ")
}

func init() {
	rootCmd.AddCommand(rolesCmd)
	rolesCmd.Flags().StringVar(&rolesX, "x", "", "column for the X role")
	rolesCmd.Flags().StringVar(&rolesY, "y", "", "comma-separated columns for the Y role")
	rolesCmd.Flags().StringVar(&rolesZ, "z", "", "column for the Z role")
	rolesCmd.Flags().BoolVar(&rolesClear, "clear", false, "clear existing roles first")
}
