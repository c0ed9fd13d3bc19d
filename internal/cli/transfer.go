package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/kintreehq/kintree/pkg/config"
	kinio "github.com/kintreehq/kintree/pkg/io"
)

// newExportCmd creates the export command, which writes the configured
// store's content to a JSON snapshot file.
func newExportCmd(configPath *string) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the family tree to a JSON snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			return runExport(cmd.Context(), cfg, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "tree.json", "output file")

	return cmd
}

func runExport(ctx context.Context, cfg config.Config, output string) error {
	logger := loggerFromContext(ctx)

	st, err := openStore(ctx, cfg.Store, logger)
	if err != nil {
		return err
	}
	defer st.Close(context.Background()) //nolint:errcheck

	t, err := kinio.Snapshot(ctx, st)
	if err != nil {
		return err
	}
	if err := kinio.ExportJSON(t, output); err != nil {
		return err
	}

	printSuccess("exported snapshot")
	printFile(output)
	printStats(len(t.Persons), len(t.Couples), false)
	return nil
}

// newImportCmd creates the import command, which loads a JSON snapshot into
// the configured store. The target store should be empty; records are
// created with the ids from the file.
func newImportCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "import [file]",
		Short: "Import a JSON snapshot into the store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			return runImport(cmd.Context(), cfg, args[0])
		},
	}
}

func runImport(ctx context.Context, cfg config.Config, path string) error {
	logger := loggerFromContext(ctx)

	t, err := kinio.ImportJSON(path)
	if err != nil {
		return err
	}

	if cfg.Store.Backend != "mongo" {
		printWarning("in-memory store: the imported data lives only for this command")
	}

	st, err := openStore(ctx, cfg.Store, logger)
	if err != nil {
		return err
	}
	defer st.Close(context.Background()) //nolint:errcheck

	p := newProgress(logger)
	if err := kinio.Restore(ctx, st, t); err != nil {
		return err
	}
	p.done("restored snapshot")

	printSuccess("imported snapshot")
	printStats(len(t.Persons), len(t.Couples), false)
	printNextStep("browse the tree", "kintree browse")
	return nil
}
