package cmd

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/quayside/dockhand/internal/palette"
)

var paletteCmd = &cobra.Command{
	Use:   "palette",
	Short: "Open the interactive command palette",
	Long: `Open the interactive command palette.

Type to search projects, services, routes and console pages. Supports
operators like "type:service redis" and "project:shop". The selected
destination URL is printed on exit so it can be piped to an opener:

  dockhand palette | xargs xdg-open`,
	Args: cobra.NoArgs,
	RunE: runPalette,
}

func runPalette(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	lipgloss.SetColorProfile(termenv.NewOutput(os.Stderr).ColorProfile())

	status := func(ctx context.Context) (bool, error) {
		st, err := a.client.SearchStatus(ctx)
		return st.FTS5, err
	}

	model := palette.New(a.engine, status, a.logger)

	// Render on stderr so the selected URL is the only stdout output.
	p := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithOutput(os.Stderr),
	)

	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("palette: %w", err)
	}

	if m, ok := final.(palette.Model); ok && m.Result() != "" {
		fmt.Fprintln(os.Stdout, m.Result())
	}
	return nil
}
