// internal/commands/ask.go
package foliolab

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/k0kubun/pp"
	"github.com/mgearhart/foliolab/internal/appconfig"
	"github.com/mgearhart/foliolab/internal/logging"
	"github.com/mgearhart/foliolab/internal/offload"
	"github.com/mgearhart/foliolab/internal/prompt"
	"github.com/mgearhart/foliolab/internal/providers"
	"github.com/mgearhart/foliolab/internal/tui"
	"github.com/spf13/cobra"
	"github.com/xeipuuv/gojsonschema"
)

type askOptions struct {
	interactive bool
	jsonMode    bool
	provider    string
}

var askOpts askOptions

// answerSchema constrains the structured reply requested in --json mode.
var answerSchema = gojsonschema.NewStringLoader(`{
	"type": "object",
	"required": ["answer"],
	"properties": {
		"answer":  {"type": "string"},
		"sources": {"type": "array", "items": {"type": "string"}}
	},
	"additionalProperties": false
}`)

// askCmd answers a question from the portfolio corpus: retrieval, prompt
// assembly, then a streamed provider reply.
var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question grounded in the portfolio corpus",
	Long:  `The 'ask' command retrieves the corpus chunks most relevant to a question, assembles a grounded prompt, and streams the provider's answer. With --interactive it opens a session for repeated questions instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := requireConfig()
		if err != nil {
			return err
		}
		store, err := openStore()
		if err != nil {
			return err
		}
		gen, err := resolveGenerator(askOpts.provider, store, cfg)
		if err != nil {
			return err
		}

		host := offload.NewHost(cfg.OffloadTimeout())
		defer host.Close()

		ctx := cmd.Context()
		if _, _, err := buildIndex(ctx, cfg, host); err != nil {
			return err
		}

		if askOpts.interactive {
			return tui.RunAsk(ctx, tui.Options{Config: cfg, Host: host, Generator: gen})
		}

		question := strings.TrimSpace(strings.Join(args, " "))
		if question == "" {
			return fmt.Errorf("question is required (or pass --interactive)")
		}
		if askOpts.jsonMode {
			return runAskJSON(ctx, cfg, host, gen, question, cmd.OutOrStdout())
		}
		return runAskStream(ctx, cfg, host, gen, question, cmd.OutOrStdout())
	},
}

func runAskStream(ctx context.Context, cfg *appconfig.Config, host *offload.Host, gen providers.Generator, question string, out io.Writer) error {
	scored, err := host.TopK(ctx, question, cfg.RetrievalTopK())
	if err != nil {
		return err
	}
	if DebugEnabled() {
		pp.Println(scored)
	}

	req := providers.GenerateRequest{
		Prompt: prompt.Build(question, scored, cfg.ContextTokenLimit),
		System: prompt.System,
	}
	logging.LogRequest("APP->LLM", gen.Name(), "", req.Prompt)

	if err := gen.GenerateStream(ctx, req, func(delta string) error {
		_, werr := io.WriteString(out, delta)
		return werr
	}); err != nil {
		return err
	}
	_, _ = io.WriteString(out, "\n")
	logging.LogRequest("LLM->APP", gen.Name(), "", "stream complete")
	return nil
}

func runAskJSON(ctx context.Context, cfg *appconfig.Config, host *offload.Host, gen providers.Generator, question string, out io.Writer) error {
	scored, err := host.TopK(ctx, question, cfg.RetrievalTopK())
	if err != nil {
		return err
	}

	req := providers.GenerateRequest{
		Prompt: prompt.Build(question, scored, cfg.ContextTokenLimit) +
			"\n\nRespond with a single JSON object of the form {\"answer\": string, \"sources\": string[]} and no prose outside it.",
		System: prompt.System,
	}
	logging.LogRequest("APP->LLM", gen.Name(), "", req.Prompt)

	raw, err := gen.Generate(ctx, req)
	if err != nil {
		return err
	}
	logging.LogRequest("LLM->APP", gen.Name(), "", raw)

	payload := extractJSONObject(raw)
	result, err := gojsonschema.Validate(answerSchema, gojsonschema.NewStringLoader(payload))
	if err != nil {
		return fmt.Errorf("model output is not valid JSON: %w", err)
	}
	if !result.Valid() {
		var details []string
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}
		return fmt.Errorf("model output failed validation: %s", strings.Join(details, "; "))
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, []byte(payload), "", "  "); err != nil {
		return fmt.Errorf("model output is not valid JSON: %w", err)
	}
	fmt.Fprintln(out, pretty.String())
	return nil
}

// extractJSONObject strips code fences and surrounding prose from a model
// reply, keeping the outermost object.
func extractJSONObject(raw string) string {
	s := strings.TrimSpace(raw)
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return s
}

func init() {
	askCmd.Flags().BoolVar(&askOpts.interactive, "interactive", false, "open an interactive session instead of answering once")
	askCmd.Flags().BoolVar(&askOpts.jsonMode, "json", false, "request a schema-validated JSON answer")
	askCmd.Flags().StringVar(&askOpts.provider, "provider", "", "override the stored provider (groq, openrouter, gemini, ollama)")
	rootCmd.AddCommand(askCmd)
}
