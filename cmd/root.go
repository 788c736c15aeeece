package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/deploymenttheory/go-minifs/internal/device"
	"github.com/deploymenttheory/go-minifs/internal/services"
	"github.com/deploymenttheory/go-minifs/pkg/app"
	"github.com/deploymenttheory/go-minifs/pkg/app/inspect"
)

var (
	// Global output flags
	verbose      bool
	quiet        bool
	outputFormat string

	// Image selection
	imagePath  string
	configFile string
)

var rootCmd = &cobra.Command{
	Use:   "minifs",
	Short: "Small block filesystem stored in a single image file",
	Long: `minifs manages a tiny block filesystem that lives inside one backing
file: a superblock with allocation bitmaps, a fixed inode table, a fixed
block region and a persisted table of open file descriptors.

Open descriptors are stored in the image, so a file opened by one command
can be read or written by the next.

Commands:
  init          Format the image
  read-fs       Check the image superblock
  ls, stat      Inspect directories and files
  mkdir, touch  Create directories and files
  open, close   Manage descriptors
  read, write   Transfer data through a descriptor
  shell         Interactive session, local or against a server
  serve         Serve the image over TCP
  backup        Push and pull images to S3`,
	Version:       "0.1.0-dev",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := initConfig(); err != nil {
			return err
		}
		return inspect.ValidateOutputFormat(outputFormat)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		common := app.FromError(err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", common)
		if verbose {
			fmt.Fprintf(os.Stderr, "Code: %s\n", common.Code)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress output except errors")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table", "output format (table, json, yaml)")
	rootCmd.PersistentFlags().StringVar(&imagePath, "image", "", "path to the image file (default ./minifs.img)")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default minifs-config.yaml)")

	viper.BindPFlag("image", rootCmd.PersistentFlags().Lookup("image"))
}

// GetVerbose returns the verbose flag value
func GetVerbose() bool {
	return verbose
}

// GetQuiet returns the quiet flag value
func GetQuiet() bool {
	return quiet
}

// GetOutputFormat returns the output format
func GetOutputFormat() string {
	return outputFormat
}

// newAppContext builds the application context from the global flags
func newAppContext(cmd *cobra.Command) *app.Context {
	ctx := app.NewContext()
	if cmd.Context() != nil {
		ctx.Context = cmd.Context()
	}
	ctx.Out = cmd.OutOrStdout()
	ctx.ErrOut = cmd.ErrOrStderr()
	ctx.OutputFormat = GetOutputFormat()
	ctx.SetVerbosity(GetVerbose(), GetQuiet())
	return ctx
}

// openFileSystem returns the engine for the configured image
func openFileSystem(ctx *app.Context) (*services.FileSystem, error) {
	config, err := device.LoadDeviceConfig(viper.GetViper())
	if err != nil {
		return nil, app.NewError(app.ErrCodeInvalidInput, "invalid device configuration", err)
	}

	ctx.Log("using image", "image", config.ImagePath, "sync_writes", config.SyncWrites)
	return services.NewFileSystem(config.ImagePath, device.NewFileOpener(config), services.WithLogger(ctx.Logger))
}

func invalidInput(message string, err error) error {
	return app.NewError(app.ErrCodeInvalidInput, message, err)
}
