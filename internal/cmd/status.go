package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show backend search mode and local state",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	fmt.Println(bold("Server:"), a.cfg.Server.URL)

	st, err := a.client.SearchStatus(cmd.Context())
	switch {
	case err != nil:
		fmt.Println(bold("Search mode:"), yellow("unreachable"), dim("("+err.Error()+")"))
	case st.FTS5:
		fmt.Println(bold("Search mode:"), green("advanced (full-text)"))
	default:
		fmt.Println(bold("Search mode:"), "basic")
	}

	if a.store == nil {
		fmt.Println(bold("Local state:"), yellow("not persisted"))
	} else {
		fmt.Println(bold("Local state:"), "persisted")
	}
	fmt.Println(bold("Directory:"), a.engine.Directory().Source(),
		dim(fmt.Sprintf("(%d entries)", len(a.engine.Directory().Entries()))))

	ledger := a.engine.Ledger().Snapshot()
	fmt.Println(bold("Searches recorded:"), ledger.TotalSearches)
	return nil
}
