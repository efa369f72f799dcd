// internal/commands/index.go
package foliolab

import (
	"fmt"

	"github.com/mgearhart/foliolab/internal/logging"
	"github.com/mgearhart/foliolab/internal/offload"
	"github.com/mgearhart/foliolab/internal/prompt"
	"github.com/spf13/cobra"
)

var indexPreviewQuery string

// indexCmd builds the retrieval index and reports its shape; with --preview
// it also runs a query and prints the scored chunks and assembled context.
var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build the retrieval index and inspect it",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := requireConfig()
		if err != nil {
			return err
		}

		host := offload.NewHost(cfg.OffloadTimeout())
		defer host.Close()

		ctx := cmd.Context()
		chunks, generation, err := buildIndex(ctx, cfg, host)
		if err != nil {
			return err
		}

		status := func(format string, args ...any) {
			msg := fmt.Sprintf(format, args...)
			logging.LogEvent("%s", msg)
			fmt.Fprintln(cmd.OutOrStdout(), msg)
		}

		status("[index] corpus: %s", cfg.CorpusDir)
		status("[index] sources: %d", len(cfg.Sources))
		status("[index] chunks: %d", len(chunks))
		status("[index] generation: %d", generation)

		if indexPreviewQuery == "" {
			return nil
		}

		scored, err := host.TopK(ctx, indexPreviewQuery, cfg.RetrievalTopK())
		if err != nil {
			return err
		}

		status("[index] preview query: %s", indexPreviewQuery)
		status("[index] topK: %d", cfg.RetrievalTopK())
		for i, sc := range scored {
			status("[index] chunk %d score=%.6f section=%s id=%s", i+1, sc.Score, sc.Chunk.Section, sc.Chunk.ID)
			status("[index] chunk %d text: %s", i+1, sc.Chunk.Text)
		}

		context, tokens, coverage := prompt.FormatContext(scored, cfg.ContextTokenLimit)
		status("[index] context_tokens: %d", tokens)
		status("[index] source_coverage: %d", coverage)
		if context != "" {
			status("[index] context:\n%s", context)
		}
		return nil
	},
}

func init() {
	indexCmd.Flags().StringVar(&indexPreviewQuery, "preview", "", "preview retrieval and context assembly for this query")
	rootCmd.AddCommand(indexCmd)
}
