package cmd

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"estimator/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Search and price rates interactively",
	Args:  cobra.NoArgs,
	RunE:  runTUI,
}

func runTUI(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	sum, err := summarize(ctx, a)
	if err != nil {
		a.log.Warn("catalog summary unavailable", zap.Error(err))
	}
	_, err = tea.NewProgram(tui.New(ctx, a.service, sum.String()), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}
