package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/Lllllllleong/slidecast/internal/localstore"
	"github.com/Lllllllleong/slidecast/internal/services"
	"github.com/spf13/cobra"
)

var videosDir string

var videosCmd = &cobra.Command{
	Use:   "videos",
	Short: "Manage published videos",
}

var videosListCmd = &cobra.Command{
	Use:   "list",
	Short: "List published videos, oldest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		lib, err := openLibrary()
		if err != nil {
			return err
		}
		videos, err := lib.List(context.Background())
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tSIZE\tCREATED")
		for _, v := range videos {
			fmt.Fprintf(tw, "%s\t%d\t%s\n", v.Name, v.Size, v.CreatedAt.Format("2006-01-02 15:04:05"))
		}
		return tw.Flush()
	},
}

var videosDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a published video",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lib, err := openLibrary()
		if err != nil {
			return err
		}
		deleted, err := lib.Delete(context.Background(), args[0])
		if err != nil {
			return err
		}
		if !deleted {
			return fmt.Errorf("video %q not found", args[0])
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
		return nil
	},
}

func init() {
	videosCmd.PersistentFlags().StringVarP(&videosDir, "dir", "d", "slidecast-videos", "directory videos are published to")
	videosCmd.AddCommand(videosListCmd, videosDeleteCmd)
	rootCmd.AddCommand(videosCmd)
}

func openLibrary() (*services.Library, error) {
	store, err := localstore.New(videosDir)
	if err != nil {
		return nil, err
	}
	return services.NewLibrary(store, ""), nil
}
