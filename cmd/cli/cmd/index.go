package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/heimgewebe/lenskit/pkg/types"
)

var indexCmd = &cobra.Command{
	Use:   "index <token> <path>...",
	Short: "Materialize a selection and build a retrieval index from it",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := newClient().BuildIndex(context.Background(), args[0], args[1:])
		if err != nil {
			return err
		}
		fmt.Printf("index %s built: %d files, %d chunks\n", resp.IndexID, resp.Files, resp.Chunks)
		return nil
	},
}

var (
	queryK    int
	queryPath string
	queryExt  string
)

var queryCmd = &cobra.Command{
	Use:   "query <index-id> [text]",
	Short: "Run a BM25 full-text query against a built index",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := types.QueryRequest{
			IndexID:      args[0],
			K:            queryK,
			PathContains: queryPath,
			Ext:          queryExt,
		}
		if len(args) > 1 {
			req.Query = args[1]
		}

		resp, err := newClient().Query(context.Background(), req)
		if err != nil {
			return err
		}
		fmt.Printf("mode=%s count=%d\n", resp.Mode, resp.Count)
		for _, h := range resp.Hits {
			fmt.Printf("  %s:%s score=%.3f chunk=%s\n", h.Path, h.Range, h.Score, h.ChunkID)
		}
		return nil
	},
}

func init() {
	queryCmd.Flags().IntVar(&queryK, "k", 10, "maximum number of hits")
	queryCmd.Flags().StringVar(&queryPath, "path", "", "filter hits to paths containing this substring")
	queryCmd.Flags().StringVar(&queryExt, "ext", "", "filter hits to this file extension")

	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(queryCmd)
}
