package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/quayside/dockhand/internal/search"
)

var searchJSON bool

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the console from the command line",
	Long: `Search projects, services, routes and pages without opening the palette.

The same operators the palette understands work here:

  dockhand search "type:service redis"
  dockhand search "project:shop postgres"
  dockhand search --json deploy`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
}

type searchOutput struct {
	Results []search.Hit `json:"results"`
	Total   int          `json:"total,omitempty"`
	TookMs  int64        `json:"took_ms,omitempty"`
	Cached  bool         `json:"cached,omitempty"`
}

func runSearch(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.engine.Search(cmd.Context(), args[0], "")
	if err != nil {
		return err
	}

	if searchJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(searchOutput{
			Results: res.Hits,
			Total:   res.Total,
			TookMs:  res.TookMs,
			Cached:  res.FromCache,
		})
	}

	if len(res.Hits) == 0 {
		fmt.Println(dim("No results"))
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, bold("TYPE")+"\t"+bold("TITLE")+"\t"+bold("URL")+"\t"+bold("SCORE"))
	for _, h := range res.Hits {
		score := "-"
		if h.Score > 0 {
			score = fmt.Sprintf("%.2f", h.Score)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", h.Type, h.Title, h.URLPath, score)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	summary := fmt.Sprintf("%d results", len(res.Hits))
	if res.TotalKnown {
		summary = fmt.Sprintf("%d of %d results", len(res.Hits), res.Total)
	}
	if res.FromCache {
		summary += " (cached)"
	} else if res.TookMs > 0 {
		summary += fmt.Sprintf(" in %dms", res.TookMs)
	}
	fmt.Println(dim(summary))
	return nil
}
