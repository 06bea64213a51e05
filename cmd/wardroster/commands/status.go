package commands

import (
	"fmt"
	"time"
	"wardroster/internal/resources"
	"wardroster/lib/cachedir"
	"wardroster/lib/scrapers/mls"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newStatusCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Lists the cached resources and photos.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(flags)
			if err != nil {
				return err
			}
			return a.status(cmd)
		},
	}
}

func newTable(cmd *cobra.Command) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(cmd.OutOrStdout())
	return t
}

func (a *app) status(cmd *cobra.Command) error {
	entries, err := a.raw.List()
	if err != nil {
		return fmt.Errorf("failed to list cache: %w", err)
	}
	cached := make(map[string]cachedir.Entry, len(entries))
	for _, e := range entries {
		cached[e.Name] = e
	}

	t := newTable(cmd)
	t.AppendHeader(table.Row{"Resource", "Size", "Fetched"})
	for _, name := range resources.Names() {
		e, ok := cached[name]
		if !ok {
			t.AppendRow(table.Row{name, "-", "missing"})
			continue
		}
		t.AppendRow(table.Row{name, e.Size, e.Modified.Local().Format(time.DateTime)})
	}
	t.Render()

	t = newTable(cmd)
	t.AppendHeader(table.Row{"Photo size", "Cached"})
	for _, size := range mls.PhotoSizes {
		count, err := a.photos.Count(size)
		if err != nil {
			return fmt.Errorf("failed to count %s photos: %w", size, err)
		}
		t.AppendRow(table.Row{size, count})
	}
	t.Render()
	return nil
}
