package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var rootsCmd = &cobra.Command{
	Use:   "roots",
	Short: "List allowlisted navigation roots and their tokens",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := newClient()

		cap, err := c.RootCapability(context.Background())
		if err != nil {
			return err
		}
		if cap.Allowed {
			fmt.Println("root browsing: allowed")
		} else {
			fmt.Printf("root browsing: refused (%s)\n", cap.Reason)
		}

		resp, err := c.Roots(context.Background())
		if err != nil {
			return err
		}
		if len(resp.Roots) == 0 {
			fmt.Println("no navigation roots configured")
			return nil
		}
		for _, r := range resp.Roots {
			fmt.Printf("%s\n  token: %s\n", r.Path, r.Token)
		}
		return nil
	},
}

var lsCmd = &cobra.Command{
	Use:   "ls <token>",
	Short: "List one directory level addressed by a token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := newClient().List(context.Background(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("%s\n", resp.Path)
		for _, e := range resp.Entries {
			marker := ""
			if e.Type == "dir" {
				marker = "/"
			}
			fmt.Printf("  %s%s\n    token: %s\n", e.Name, marker, e.Token)
		}
		fmt.Printf("self token: %s\n", resp.SelfToken)
		return nil
	},
}

var materializeCmd = &cobra.Command{
	Use:   "materialize <token> <path>...",
	Short: "Expand a compressed selection under a base token into files",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := newClient().Materialize(context.Background(), args[0], args[1:])
		if err != nil {
			return err
		}
		for _, f := range resp.Files {
			fmt.Println(f)
		}
		fmt.Printf("%d files\n", len(resp.Files))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rootsCmd)
	rootCmd.AddCommand(lsCmd)
	rootCmd.AddCommand(materializeCmd)
}
