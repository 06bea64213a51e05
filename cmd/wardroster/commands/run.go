package commands

import (
	"github.com/spf13/cobra"
)

func newRunCmd(flags *globalFlags) *cobra.Command {
	pf := &photoFlags{}
	var skipPhotos bool
	var out string

	cmd := &cobra.Command{
		Use:   "run [--skip-photos] [--out <dir>]",
		Short: "Refreshes the cache, downloads missing photos and renders the report.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(flags)
			if err != nil {
				return err
			}

			result, err := a.refresh(cmd, nil)
			if err != nil {
				return err
			}
			printRefresh(cmd, result)

			if !skipPhotos {
				err = a.fetchPhotos(cmd, pf)
				if err != nil {
					return err
				}
			}
			return a.writeReport(cmd, out, pf.size)
		},
	}
	pf.register(cmd)
	cmd.Flags().BoolVar(&skipPhotos, "skip-photos", false, "Does not download photos.")
	cmd.Flags().StringVarP(&out, "out", "o", "", "The directory to write index.html to (defaults to output_dir of the config).")
	return cmd
}
