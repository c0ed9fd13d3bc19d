package cli

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/kintreehq/kintree/pkg/config"
	"github.com/kintreehq/kintree/pkg/family"
	"github.com/kintreehq/kintree/pkg/layout"
	"github.com/kintreehq/kintree/pkg/scene"
)

// newBrowseCmd creates the browse command, an interactive terminal view of
// the family tree. Selection, editing, adding relatives, and flipping
// relations all run against the configured store.
func newBrowseCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse and edit the family tree in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			return runBrowse(cmd.Context(), cfg)
		},
	}
}

func runBrowse(ctx context.Context, cfg config.Config) error {
	logger := loggerFromContext(ctx)

	st, err := openStore(ctx, cfg.Store, logger)
	if err != nil {
		return err
	}
	defer st.Close(context.Background()) //nolint:errcheck

	fam := family.NewService(st, logger)
	engine := layout.NewEngine(cfg.Layout, logger)
	sc := scene.New(logger)

	model, err := newBrowseModel(ctx, fam, engine, sc)
	if err != nil {
		return err
	}

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return err
	}
	if m, ok := final.(browseModel); ok && m.fatal != nil {
		return m.fatal
	}
	return nil
}
