package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var statsReset bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show search usage analytics",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().BoolVar(&statsReset, "reset", false, "clear the analytics ledger")
}

func runStats(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if statsReset {
		a.engine.Ledger().Reset()
		fmt.Println("Analytics ledger cleared")
		return nil
	}

	data := a.engine.Ledger().Snapshot()

	fmt.Println(bold("Total searches:"), data.TotalSearches)
	fmt.Println(bold("Since:"), data.LastReset.Format("2006-01-02 15:04"))

	if len(data.PopularQueries) > 0 {
		fmt.Println(bold("\nTop queries:"))
		for _, kv := range topCounts(data.PopularQueries, 10) {
			fmt.Printf("  %4d  %s\n", kv.n, kv.k)
		}
	}

	if len(data.CategoryUsage) > 0 {
		fmt.Println(bold("\nCategory usage:"))
		for _, kv := range topCounts(data.CategoryUsage, 10) {
			fmt.Printf("  %4d  %s\n", kv.n, kv.k)
		}
	}

	if len(data.OperatorUsage) > 0 {
		fmt.Println(bold("\nOperator usage:"))
		for _, kv := range topCounts(data.OperatorUsage, 10) {
			fmt.Printf("  %4d  %s\n", kv.n, kv.k)
		}
	}

	if len(data.ZeroResultQueries) > 0 {
		fmt.Println(bold("\nRecent zero-result queries:"))
		zr := data.ZeroResultQueries
		if len(zr) > 10 {
			zr = zr[len(zr)-10:]
		}
		for _, z := range zr {
			fmt.Printf("  %s  %s\n", dim(z.Timestamp.Format("01-02 15:04")), z.Query)
		}
	}
	return nil
}

type countEntry struct {
	k string
	n int
}

func topCounts(m map[string]int, limit int) []countEntry {
	out := make([]countEntry, 0, len(m))
	for k, n := range m {
		out = append(out, countEntry{k, n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].n != out[j].n {
			return out[i].n > out[j].n
		}
		return out[i].k < out[j].k
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
