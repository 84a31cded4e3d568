package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var (
	cacheCmd = &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the phoneme cache",
		Args:  cobra.NoArgs,
	}

	cacheStatsCmd = &cobra.Command{
		Use:   "stats",
		Short: "Show phoneme cache usage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := openCache(opts.Cache)
			if err != nil {
				return err
			}
			defer m.Close() //nolint:errcheck

			s := m.Detailed()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s\n", keyword("Location:"), m.Dir())
			fmt.Fprintf(out, "%s %s words\n", keyword("Entries: "), humanize.Comma(s.Disk.ItemCount))
			fmt.Fprintf(out, "%s %s of %s\n", keyword("Disk:    "),
				humanize.IBytes(uint64(s.Disk.Size)), humanize.IBytes(uint64(s.Disk.Capacity))) //nolint:gosec
			if !opts.Cache.Enabled {
				fmt.Fprintln(out, faint("The cache is disabled in the configuration."))
			}
			return nil
		},
	}

	cacheClearCmd = &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached pronunciation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := openCache(opts.Cache)
			if err != nil {
				return err
			}
			defer m.Close() //nolint:errcheck

			freed := m.Size()
			if err := m.Clear(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s from %s\n", humanize.IBytes(uint64(freed)), m.Dir()) //nolint:gosec
			return nil
		},
	}
)

func init() {
	cacheCmd.AddCommand(cacheStatsCmd, cacheClearCmd)
}
