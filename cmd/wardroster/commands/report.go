package commands

import (
	"fmt"
	"wardroster/internal/report"
	"wardroster/lib/scrapers/mls"

	"github.com/spf13/cobra"
)

func newReportCmd(flags *globalFlags) *cobra.Command {
	var out, size string

	cmd := &cobra.Command{
		Use:   "report [--out <dir>] [--size <size>]",
		Short: "Renders the cached reports to a static html page.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(flags)
			if err != nil {
				return err
			}
			return a.writeReport(cmd, out, size)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "The directory to write index.html to (defaults to output_dir of the config).")
	cmd.Flags().StringVar(&size, "size", "", "The cached photo size to link (defaults to photo_size of the config).")
	return cmd
}

func (a *app) writeReport(cmd *cobra.Command, out, size string) error {
	if out == "" {
		out = a.cfg.OutputDir
	}
	if size == "" {
		size = a.cfg.PhotoSize
	}
	if !mls.ValidPhotoSize(size) {
		return fmt.Errorf("photo size %q is not one of %v", size, mls.PhotoSizes)
	}

	data, err := report.Build(a.raw)
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}
	path, err := report.WriteFile(out, a.cfg.Title, data, report.CachedPhotos(out, a.photos, size))
	if err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "report written to %s\n", path)
	return nil
}
