package commands

import (
	"fmt"
	"slices"
	"strings"
	"wardroster/internal/registry"
	"wardroster/internal/resources"

	"github.com/spf13/cobra"
)

func newRefreshCmd(flags *globalFlags) *cobra.Command {
	var force []string

	cmd := &cobra.Command{
		Use:   "refresh [--force <resource>]",
		Short: "Fetches every MLS report that is not cached yet.",
		Long: "Fetches every MLS report that is not cached yet. Cached reports are never refetched " +
			"unless they are named with --force, which deletes them first.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(flags)
			if err != nil {
				return err
			}
			result, err := a.refresh(cmd, force)
			if err != nil {
				return err
			}
			printRefresh(cmd, result)
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&force, "force", nil, fmt.Sprintf(
		"Deletes these resources before fetching (one of %s).",
		strings.Join(resources.Names(), ", "),
	))
	return cmd
}

func (a *app) refresh(cmd *cobra.Command, force []string) (registry.Result, error) {
	known := resources.Names()
	for _, name := range force {
		if !slices.Contains(known, name) {
			return registry.Result{}, fmt.Errorf("unknown resource %q", name)
		}
	}
	for _, name := range force {
		err := a.raw.Delete(name)
		if err != nil {
			return registry.Result{}, fmt.Errorf("failed to delete %s: %w", name, err)
		}
	}

	reg, err := a.registry()
	if err != nil {
		return registry.Result{}, err
	}
	result, err := reg.Refresh(cmd.Context())
	if err != nil {
		return result, fmt.Errorf("failed to refresh: %w", err)
	}
	return result, nil
}

func printRefresh(cmd *cobra.Command, result registry.Result) {
	out := cmd.OutOrStdout()
	for _, name := range result.Fetched {
		fmt.Fprintf(out, "fetched %s\n", name)
	}
	for _, name := range result.Skipped {
		fmt.Fprintf(out, "cached  %s\n", name)
	}
}
