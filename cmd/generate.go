package main

import (
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/proposal-cli/internal/assemble"
	"github.com/sells-group/proposal-cli/internal/audit"
	"github.com/sells-group/proposal-cli/internal/model"
	"github.com/sells-group/proposal-cli/internal/pipeline"
	"github.com/sells-group/proposal-cli/internal/placeholder"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a proposal from an audit extract",
	Long:  "Prices the audit, assembles the proposal document, fills its narrative slots through the configured provider, and records the run in the ledger.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		extractPath, _ := cmd.Flags().GetString("extract")
		outPath, _ := cmd.Flags().GetString("out")
		skipNarrative, _ := cmd.Flags().GetBool("skip-narrative")
		promptsPath, _ := cmd.Flags().GetString("prompts")
		deterministic, _ := cmd.Flags().GetBool("deterministic-ids")
		sets, _ := cmd.Flags().GetStringArray("set")
		platform, _ := cmd.Flags().GetString("platform")
		topFindings, _ := cmd.Flags().GetInt("top-findings")

		extract, err := audit.Load(extractPath)
		if err != nil {
			return err
		}

		popts, err := pricingOptionsFromFlags(cmd)
		if err != nil {
			return err
		}

		env, err := initPipeline(ctx, pipelineOptions{
			mode:             "generate",
			skipNarrative:    skipNarrative,
			promptsPath:      promptsPath,
			deterministicIDs: deterministic,
		})
		if err != nil {
			return err
		}
		defer env.Close()

		res, err := env.Pipeline.Run(ctx, extract, pipeline.Options{
			Pricing:       popts,
			Assemble:      assemble.Options{Platform: platform, TopFindings: topFindings},
			SkipNarrative: skipNarrative,
		})
		if err != nil {
			return eris.Wrap(err, "generate")
		}

		payload, err := documentPayload(res.Document, sets)
		if err != nil {
			return err
		}
		if err := writeJSON(outPath, payload); err != nil {
			return err
		}

		zap.L().Info("generate: proposal written",
			zap.String("run_id", res.RunID),
			zap.String("proposal", res.Document.Meta.ProposalNumber),
			zap.String("status", string(res.Status)),
			zap.Int64("final_price", res.Breakdown.FinalPrice),
			zap.Int("slots_resolved", res.Slots.Resolved),
			zap.Int("slots_total", res.Slots.Total),
		)
		return nil
	},
}

// documentPayload renders the document, applying --set overrides on the
// generic JSON tree so any path in the document can be adjusted.
func documentPayload(doc *model.ProposalDocument, sets []string) (any, error) {
	if len(sets) == 0 {
		return doc, nil
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, eris.Wrap(err, "generate: marshal document")
	}
	var tree any
	if err := json.Unmarshal(raw, &tree); err != nil {
		return nil, eris.Wrap(err, "generate: reload document")
	}

	for _, kv := range sets {
		path, value, ok := strings.Cut(kv, "=")
		if !ok || strings.TrimSpace(path) == "" {
			return nil, eris.Errorf("generate: --set %q must be path=value", kv)
		}
		tree, err = placeholder.Set(tree, path, parseLiteral(value))
		if err != nil {
			return nil, err
		}
	}
	return tree, nil
}

// parseLiteral types an override value: valid JSON literals pass through
// typed (numbers, booleans, null), everything else stays a string.
func parseLiteral(s string) any {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err == nil {
		return v
	}
	return s
}

// writeJSON writes v indented to path, or stdout when path is empty.
func writeJSON(path string, v any) error {
	var w io.Writer = os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return eris.Wrapf(err, "create %s", path)
		}
		defer f.Close() //nolint:errcheck
		w = f
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	generateCmd.Flags().String("extract", "", "path to the audit extract JSON (required)")
	generateCmd.Flags().String("out", "", "write the proposal document to a file instead of stdout")
	generateCmd.Flags().Bool("skip-narrative", false, "skip narrative generation; slots keep their sentinels")
	generateCmd.Flags().String("prompts", "", "path to a prompt catalog overriding the embedded one")
	generateCmd.Flags().Bool("deterministic-ids", false, "use sequential identifiers instead of uuids")
	generateCmd.Flags().StringArray("set", nil, "override a document field, path=value (repeatable)")
	generateCmd.Flags().String("platform", "", "terms variant: hosted or byoc")
	generateCmd.Flags().Int("top-findings", 0, "cap on key findings in the summary (0 uses the default)")
	addPricingFlags(generateCmd)
	_ = generateCmd.MarkFlagRequired("extract")
	rootCmd.AddCommand(generateCmd)
}
