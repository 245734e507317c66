package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/merchstudio/internal/domain/merch/ranking"
	"github.com/kailas-cloud/merchstudio/internal/domain/merch/result"
	"github.com/kailas-cloud/merchstudio/internal/domain/merch/rule"
	"github.com/kailas-cloud/merchstudio/internal/usecase/studio"
)

// timeNow is the clock used to check rule validity windows.
var timeNow = time.Now

type previewOptions struct {
	overrideFlags
	HitsFile string
	RuleFile string
}

// previewRow is one output row in both text and JSON formats.
type previewRow struct {
	Position int    `json:"position"`
	ObjectID string `json:"objectID"`
	BaseRank int    `json:"base_rank"`
	Label    string `json:"label,omitempty"`
}

func newPreviewCommand(rootOpts *rootOptions) *cobra.Command {
	opts := &previewOptions{}

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Show the display order for a hit list",
		Long: `Read a hit list (an engine search response or a bare JSON array of hits, each
with an objectID) and print the order a merchandiser would see.

With --rule, the saved rule is applied the way the engine applies it at query
time. Otherwise --pin and --hide are reconciled like in the editor.`,
		Example: `  merchstudio preview --hits hits.json --query laptop --pin C=0 --hide B
  merchstudio preview --hits hits.json --rule rule.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rows, err := runPreview(opts)
			if err != nil {
				return err
			}
			return writePreview(cmd.OutOrStdout(), rootOpts.Format, rows)
		},
	}

	cmd.Flags().StringVar(&opts.HitsFile, "hits", "", "JSON file with the base hits (required)")
	cmd.Flags().StringVar(&opts.RuleFile, "rule", "", "JSON file with a compiled rule")
	cmd.Flags().StringVarP(&opts.Query, "query", "q", "", "query the hits were fetched for")
	cmd.Flags().StringArrayVar(&opts.Pins, "pin", nil, "pin objectID=position (repeatable)")
	cmd.Flags().StringArrayVar(&opts.Hides, "hide", nil, "hide objectID (repeatable)")
	_ = cmd.MarkFlagRequired("hits")
	return cmd
}

func runPreview(opts *previewOptions) ([]previewRow, error) {
	set, err := loadHits(opts.HitsFile, opts.Query)
	if err != nil {
		return nil, err
	}

	if opts.RuleFile != "" {
		if len(opts.Pins) > 0 || len(opts.Hides) > 0 {
			return nil, fmt.Errorf("--rule cannot be combined with --pin or --hide")
		}
		var r rule.Rule
		if err := readJSON(opts.RuleFile, &r); err != nil {
			return nil, err
		}
		items, _ := studio.Preview(r, set, timeNow())
		rows := make([]previewRow, len(items))
		for i, it := range items {
			rows[i] = previewRow{Position: i, ObjectID: it.ID(), BaseRank: it.BaseRank()}
		}
		return rows, nil
	}

	store, err := opts.store()
	if err != nil {
		return nil, err
	}
	entries := ranking.Reconcile(set, store)
	rows := make([]previewRow, len(entries))
	for i, e := range entries {
		rows[i] = previewRow{Position: e.Index, ObjectID: e.Item.ID(), BaseRank: e.Item.BaseRank(), Label: e.Label()}
	}
	return rows, nil
}

// loadHits reads a search response ({"query", "hits"}) or a bare array of hits.
// An explicit query overrides the one in the file.
func loadHits(path, query string) (result.Set, error) {
	var raw json.RawMessage
	if err := readJSON(path, &raw); err != nil {
		return result.Set{}, err
	}

	var resp struct {
		Query string           `json:"query"`
		Hits  []map[string]any `json:"hits"`
	}
	if err := json.Unmarshal(raw, &resp.Hits); err != nil {
		if err := json.Unmarshal(raw, &resp); err != nil {
			return result.Set{}, fmt.Errorf("%s: expected a hit array or a search response: %w", path, err)
		}
	}
	if query != "" {
		resp.Query = query
	}

	hits := make([]result.Hit, 0, len(resp.Hits))
	for i, h := range resp.Hits {
		id, ok := h["objectID"].(string)
		if !ok || id == "" {
			return result.Set{}, fmt.Errorf("%s: hit %d has no objectID", path, i)
		}
		delete(h, "objectID")
		hits = append(hits, result.Hit{ID: id, Fields: h})
	}
	return result.NewSet(resp.Query, hits), nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func writePreview(w io.Writer, format string, rows []previewRow) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "POS\tOBJECT\tBASE\tLABEL")
	for _, r := range rows {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\n", r.Position, r.ObjectID, r.BaseRank, r.Label)
	}
	return tw.Flush()
}
