package cmd

import (
	"context"
	"fmt"

	"geoclip-service/application/housekeeping"
	"geoclip-service/domain/storage"
	"geoclip-service/infrastructure/filesystem"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var clipsPurgeForce bool

var clipsCmd = &cobra.Command{
	Use:   "clips",
	Short: "Manage generated clips",
	Long: `Inspect or clear the trimmed directory.

Examples:
  geoclip-service clips count
  geoclip-service clips purge --force`,
}

var clipsCountCmd = &cobra.Command{
	Use:   "count",
	Short: "Count stored clips",
	Args:  cobra.NoArgs,
	RunE:  runClipsCount,
}

var clipsPurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete every file in the trimmed directory",
	Args:  cobra.NoArgs,
	RunE:  runClipsPurge,
}

func init() {
	rootCmd.AddCommand(clipsCmd)
	clipsCmd.AddCommand(clipsCountCmd)
	clipsCmd.AddCommand(clipsPurgeCmd)
	clipsPurgeCmd.Flags().BoolVar(&clipsPurgeForce, "force", false, "Skip the confirmation prompt")
}

func newClipStore() (*filesystem.ClipStore, *logrus.Logger, error) {
	cfg, err := requireConfig()
	if err != nil {
		return nil, nil, err
	}
	store, err := filesystem.NewClipStore(cfg.Paths.TrimmedDirectory)
	if err != nil {
		return nil, nil, err
	}
	return store, newLogger(cfg), nil
}

func runClipsCount(cmd *cobra.Command, args []string) error {
	store, logger, err := newClipStore()
	if err != nil {
		return err
	}
	return RunClipsCountWithDependencies(cmd.Context(), store, logger, DefaultOutput)
}

func runClipsPurge(cmd *cobra.Command, args []string) error {
	store, logger, err := newClipStore()
	if err != nil {
		return err
	}
	return RunClipsPurgeWithDependencies(cmd.Context(), store, logger, DefaultPrompter, clipsPurgeForce, DefaultOutput)
}

// RunClipsCountWithDependencies runs the count command with injected dependencies
func RunClipsCountWithDependencies(ctx context.Context, store storage.ClipStore, logger logrus.FieldLogger, out OutputWriter) error {
	n, err := housekeeping.NewService(store, logger).Count(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%d clips\n", n)
	return nil
}

// RunClipsPurgeWithDependencies runs the purge command with injected dependencies
func RunClipsPurgeWithDependencies(ctx context.Context, store storage.ClipStore, logger logrus.FieldLogger, prompter Prompter, force bool, out OutputWriter) error {
	if !force {
		ok, err := prompter.Confirm("Delete every file in the trimmed directory?", false)
		if err != nil {
			return fmt.Errorf("prompt cancelled")
		}
		if !ok {
			fmt.Fprintln(out, "Purge cancelled.")
			return nil
		}
	}

	result, err := housekeeping.NewService(store, logger).PurgeAll(ctx)
	for _, name := range result.Names() {
		fmt.Fprintf(out, "Deleted %s\n", name)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Deleted %d videos (%s freed)\n", len(result.DeletedFiles), formatBytes(result.FreedBytes))
	return nil
}

// formatBytes formats bytes as human-readable string
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
