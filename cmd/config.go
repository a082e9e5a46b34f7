package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"geoclip-service/infrastructure/config"

	"github.com/spf13/cobra"
)

// DefaultOutput is the default output writer for commands
var DefaultOutput OutputWriter = os.Stdout

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration entries",
	Long: `Manage the sources in the configuration file.

Examples:
  geoclip-service config list sources
  geoclip-service config add source --key L3 --video L3.mp4 --coordinates coordinates3.csv
  geoclip-service config remove source L3`,
}

func init() {
	rootCmd.AddCommand(configCmd)

	// Add subcommands
	configCmd.AddCommand(configAddCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configRemoveCmd)
	configCmd.AddCommand(configUpdateCmd)
}

// --- ADD command ---

var (
	addKey         string
	addVideo       string
	addCoordinates string
	addDriveFileID string
)

var configAddCmd = &cobra.Command{
	Use:   "add [source]",
	Short: "Add a new config entry",
	Long: `Add a new source to the configuration.

Examples:
  geoclip-service config add source --key L3 --video L3.mp4 --coordinates coordinates3.csv
  geoclip-service config add source --key R3 --video R3.mp4 --coordinates coordinates4.csv --drive-file-id 1AbC`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigAdd,
}

func init() {
	configAddCmd.Flags().StringVar(&addKey, "key", "", "Source id (required)")
	configAddCmd.Flags().StringVar(&addVideo, "video", "", "Path to the source video (required)")
	configAddCmd.Flags().StringVar(&addCoordinates, "coordinates", "", "Path to the coordinate log (required)")
	configAddCmd.Flags().StringVar(&addDriveFileID, "drive-file-id", "", "Google Drive file id to download the video from")
	configAddCmd.MarkFlagRequired("key")
	configAddCmd.MarkFlagRequired("video")
	configAddCmd.MarkFlagRequired("coordinates")
}

func runConfigAdd(cmd *cobra.Command, args []string) error {
	cfg, err := requireConfig()
	if err != nil {
		return err
	}

	return RunConfigAddWithDependencies(cfg, cfgFile, args[0], addKey, addVideo, addCoordinates, addDriveFileID, DefaultOutput)
}

// RunConfigAddWithDependencies runs the add command with injected dependencies
func RunConfigAddWithDependencies(cfg *config.Config, configPath, entityType, key, videoPath, coordinates, driveFileID string, out OutputWriter) error {
	mgr := config.NewConfigManager(cfg, configPath)

	switch entityType {
	case "source":
		if err := mgr.AddSource(key, videoPath, coordinates, driveFileID); err != nil {
			return err
		}
		fmt.Fprintf(out, "Added source %q: %s (%s)\n", key, videoPath, coordinates)

	default:
		return fmt.Errorf("unknown entity type %q. Use source", entityType)
	}

	return nil
}

// --- LIST command ---

var configListCmd = &cobra.Command{
	Use:   "list [sources]",
	Short: "List config entries",
	Long: `List all configured sources.

Example:
  geoclip-service config list sources`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigList,
}

func runConfigList(cmd *cobra.Command, args []string) error {
	cfg, err := requireConfig()
	if err != nil {
		return err
	}

	return RunConfigListWithDependencies(cfg, cfgFile, args[0], DefaultOutput)
}

// RunConfigListWithDependencies runs the list command with injected dependencies
func RunConfigListWithDependencies(cfg *config.Config, configPath, entityType string, out OutputWriter) error {
	mgr := config.NewConfigManager(cfg, configPath)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	switch entityType {
	case "sources":
		sources := mgr.ListSources()
		if len(sources) == 0 {
			fmt.Fprintln(out, "No sources configured.")
			return nil
		}
		fmt.Fprintln(w, "KEY\tVIDEO\tCOORDINATES\tDRIVE FILE ID")
		for _, s := range sources {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", s.ID, s.Video, s.Coordinates, s.DriveFileID)
		}

	default:
		return fmt.Errorf("unknown entity type %q. Use sources", entityType)
	}

	return w.Flush()
}

// --- REMOVE command ---

var configRemoveCmd = &cobra.Command{
	Use:   "remove [source] <key>",
	Short: "Remove a config entry",
	Long: `Remove a source from the configuration.

Example:
  geoclip-service config remove source L3`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigRemove,
}

func runConfigRemove(cmd *cobra.Command, args []string) error {
	cfg, err := requireConfig()
	if err != nil {
		return err
	}

	return RunConfigRemoveWithDependencies(cfg, cfgFile, args[0], args[1], DefaultOutput)
}

// RunConfigRemoveWithDependencies runs the remove command with injected dependencies
func RunConfigRemoveWithDependencies(cfg *config.Config, configPath, entityType, key string, out OutputWriter) error {
	mgr := config.NewConfigManager(cfg, configPath)

	switch entityType {
	case "source":
		if len(cfg.Sources) == 1 {
			if _, err := mgr.GetSource(key); err == nil {
				return fmt.Errorf("cannot remove %q: at least one source is required", key)
			}
		}
		if err := mgr.RemoveSource(key); err != nil {
			return err
		}
		fmt.Fprintf(out, "Removed source %q\n", key)

	default:
		return fmt.Errorf("unknown entity type %q. Use source", entityType)
	}

	return nil
}

// --- UPDATE command ---

var (
	updateVideo       string
	updateCoordinates string
	updateDriveFileID string
)

var configUpdateCmd = &cobra.Command{
	Use:   "update [source] <key>",
	Short: "Update a config entry",
	Long: `Update an existing source in the configuration.

Examples:
  geoclip-service config update source L2 --video /data/L2.mp4
  geoclip-service config update source R2 --drive-file-id 1XyZ`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigUpdate,
}

func init() {
	configUpdateCmd.Flags().StringVar(&updateVideo, "video", "", "New video path")
	configUpdateCmd.Flags().StringVar(&updateCoordinates, "coordinates", "", "New coordinate log path")
	configUpdateCmd.Flags().StringVar(&updateDriveFileID, "drive-file-id", "", "New Google Drive file id")
}

func runConfigUpdate(cmd *cobra.Command, args []string) error {
	cfg, err := requireConfig()
	if err != nil {
		return err
	}

	if updateVideo == "" && updateCoordinates == "" && updateDriveFileID == "" {
		return fmt.Errorf("at least one of --video, --coordinates or --drive-file-id is required")
	}

	return RunConfigUpdateWithDependencies(cfg, cfgFile, args[0], args[1], updateVideo, updateCoordinates, updateDriveFileID, DefaultOutput)
}

// RunConfigUpdateWithDependencies runs the update command with injected dependencies
func RunConfigUpdateWithDependencies(cfg *config.Config, configPath, entityType, key, videoPath, coordinates, driveFileID string, out OutputWriter) error {
	mgr := config.NewConfigManager(cfg, configPath)

	switch entityType {
	case "source":
		if err := mgr.UpdateSource(key, videoPath, coordinates, driveFileID); err != nil {
			return err
		}
		fmt.Fprintf(out, "Updated source %q\n", key)

	default:
		return fmt.Errorf("unknown entity type %q. Use source", entityType)
	}

	return nil
}
