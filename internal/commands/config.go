// internal/commands/config.go
package foliolab

import (
	"fmt"
	"strings"

	"github.com/mgearhart/foliolab/internal/providerfactory"
	"github.com/mgearhart/foliolab/internal/settings"
	"github.com/spf13/cobra"
)

// configCmd groups settings-related subcommands.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and edit settings",
}

// configShowCmd renders the effective configuration: the config file values
// with their defaults applied, plus the settings store with keys masked.
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		if cfg := GetConfig(); cfg != nil {
			fmt.Fprintf(out, "configPath:        %s\n", cfg.ConfigPath)
			fmt.Fprintf(out, "corpusDir:         %s\n", cfg.CorpusDir)
			fmt.Fprintf(out, "sources:           %d\n", len(cfg.Sources))
			fmt.Fprintf(out, "topK:              %d\n", cfg.RetrievalTopK())
			fmt.Fprintf(out, "contextTokenLimit: %d\n", cfg.ContextTokenLimit)
			fmt.Fprintf(out, "requestTimeout:    %s\n", cfg.RequestTimeout())
			fmt.Fprintf(out, "offloadTimeout:    %s\n", cfg.OffloadTimeout())
			fmt.Fprintf(out, "logFile:           %s\n", cfg.LogFile)
			fmt.Fprintf(out, "debug:             %v\n", cfg.Debug)
		} else {
			fmt.Fprintln(out, "no config file loaded")
		}

		store, err := openStore()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "provider:          %s\n", orUnset(store.Get(settings.KeyProvider)))
		fmt.Fprintf(out, "ollamaBaseURL:     %s\n", store.Get(settings.KeyOllamaBase))
		fmt.Fprintf(out, "ollamaModel:       %s\n", orUnset(store.Get(settings.KeyOllamaModel)))
		for _, name := range providerfactory.Known() {
			if name == providerfactory.Ollama {
				continue
			}
			fmt.Fprintf(out, "%-18s %s\n", name+"ApiKey:", maskKey(store.Get(settings.APIKeyFor(name))))
		}
		return nil
	},
}

// configSetCmd writes one settings key. Provider names are validated;
// arbitrary keys are rejected to keep the store's shape known.
var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a settings key",
	Long:  `The 'set' subcommand writes one settings key. Valid keys: provider, ollama_base_url, ollama_model, and <provider>_api_key for groq, openrouter, and gemini. An empty value clears the key.`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]
		if err := validateSettingsKey(key, value); err != nil {
			return err
		}

		store, err := openStore()
		if err != nil {
			return err
		}
		if strings.TrimSpace(value) == "" {
			store.Clear(key)
		} else {
			store.Set(key, value)
		}
		if err := store.Save(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "saved %s\n", key)
		return nil
	},
}

func validateSettingsKey(key, value string) error {
	switch key {
	case settings.KeyProvider:
		for _, name := range providerfactory.Known() {
			if value == name {
				return nil
			}
		}
		return fmt.Errorf("unknown provider %q (known: %v)", value, providerfactory.Known())
	case settings.KeyOllamaBase, settings.KeyOllamaModel:
		return nil
	}
	for _, name := range providerfactory.Known() {
		if key == settings.APIKeyFor(name) {
			return nil
		}
	}
	return fmt.Errorf("unknown settings key %q", key)
}

func maskKey(key string) string {
	if key == "" {
		return "(unset)"
	}
	if len(key) <= 4 {
		return "****"
	}
	return "****" + key[len(key)-4:]
}

func orUnset(v string) string {
	if v == "" {
		return "(unset)"
	}
	return v
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}
