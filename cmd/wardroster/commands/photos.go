package commands

import (
	"fmt"
	"wardroster/internal/photos"
	"wardroster/lib/scrapers/mls"

	"github.com/spf13/cobra"
)

type photoFlags struct {
	size      string
	batchSize int
}

func (f *photoFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.size, "size", "", fmt.Sprintf("The photo size to download, one of %v (defaults to photo_size of the config).", mls.PhotoSizes))
	cmd.Flags().IntVar(&f.batchSize, "batch-size", photos.DefaultBatchSize, "How many photo urls are looked up per request.")
}

func (f *photoFlags) resolveSize(a *app) (string, error) {
	size := a.cfg.PhotoSize
	if f.size != "" {
		size = f.size
	}
	if !mls.ValidPhotoSize(size) {
		return "", fmt.Errorf("photo size %q is not one of %v", size, mls.PhotoSizes)
	}
	return size, nil
}

func newPhotosCmd(flags *globalFlags) *cobra.Command {
	pf := &photoFlags{}

	cmd := &cobra.Command{
		Use:   "photos [--size <size>] [--batch-size <n>]",
		Short: "Downloads the photos of every member in the cached member list that has none yet.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(flags)
			if err != nil {
				return err
			}
			return a.fetchPhotos(cmd, pf)
		},
	}
	pf.register(cmd)
	return cmd
}

func (a *app) fetchPhotos(cmd *cobra.Command, pf *photoFlags) error {
	size, err := pf.resolveSize(a)
	if err != nil {
		return err
	}
	fetcher, err := a.photoFetcher(pf.batchSize)
	if err != nil {
		return err
	}

	stats, err := fetcher.Fetch(cmd.Context(), size)
	fmt.Fprintf(
		cmd.OutOrStdout(),
		"photos: %d written, %d without photo, %d skipped (not jpeg), %d failed in %d batches\n",
		stats.Written, stats.NoPhoto, stats.WrongType, stats.Failed, stats.Batches,
	)
	if err != nil {
		return fmt.Errorf("failed to fetch photos: %w", err)
	}
	return nil
}
