package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"launchpad/internal/manifest"
	"launchpad/internal/settings"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	var dir string

	root := &cobra.Command{
		Use:           "clipctl",
		Short:         "Manage launchpad clip directories",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&dir, "dir", "d", settings.Defaults().Clips.ClipsDirectory, "clips directory")

	root.AddCommand(newInitCmd(&dir), newListCmd(&dir))
	return root
}

func newInitCmd(dir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the media directory and an empty clips.json",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store := manifest.NewStore(*dir)
			if err := store.EnsureLayout(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "clips directory ready: %s\n", store.Dir())
			return nil
		},
	}
}

func newListCmd(dir *string) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List clips, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := manifest.NewStore(*dir).List()
			if err != nil {
				return err
			}
			manifest.SortNewestFirst(entries)

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "    ")
				return enc.Encode(entries)
			}

			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "CREATED\tNAME\tSIZE\tAUDIO")
			for _, e := range entries {
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\n",
					e.Metadata.CreatedAt.Format("2006-01-02 15:04:05"),
					e.Name,
					e.Metadata.SizeBytes,
					audioTracks(e),
				)
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print entries as JSON")
	return cmd
}

func audioTracks(e manifest.Entry) string {
	switch {
	case e.HasDesktopAudio() && e.HasMicAudio():
		return "desktop+mic"
	case e.HasDesktopAudio():
		return "desktop"
	case e.HasMicAudio():
		return "mic"
	}
	return "-"
}
