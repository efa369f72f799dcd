// internal/commands/models.go
package foliolab

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/mgearhart/foliolab/internal/providerfactory"
	"github.com/mgearhart/foliolab/internal/providers"
	"github.com/mgearhart/foliolab/internal/settings"
	"github.com/spf13/cobra"
)

// modelsCmd lists the models the local ollama server advertises. Discovery
// failures print an empty list rather than an error.
var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List models available on the local ollama server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}

		timeout := providerfactory.DiscoveryTimeout
		gen, err := providerfactory.New(providerfactory.Ollama, store, timeout)
		if err != nil {
			return err
		}
		lister, ok := gen.(providers.ModelLister)
		if !ok {
			return fmt.Errorf("provider %s does not support model discovery", gen.Name())
		}

		out := cmd.OutOrStdout()
		names := lister.ListModels(cmd.Context())
		if len(names) == 0 {
			fmt.Fprintf(out, "no models found at %s\n", store.Get(settings.KeyOllamaBase))
			return nil
		}

		name := color.New(color.FgGreen).SprintFunc()
		current := store.Get(settings.KeyOllamaModel)
		for _, m := range names {
			marker := " "
			if m == current {
				marker = "*"
			}
			fmt.Fprintf(out, "%s %s\n", marker, name(m))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}
