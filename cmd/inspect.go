package cmd

import (
	"github.com/spf13/cobra"

	"github.com/deploymenttheory/go-minifs/pkg/app"
	"github.com/deploymenttheory/go-minifs/pkg/app/inspect"
)

var lsCmd = &cobra.Command{
	Use:   "ls [path]",
	Short: "List a directory",
	Long: `List the records of a directory, including . and .. entries.
Files are marked with "-- file".`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInspect(cmd, inspect.ModeList, args)
	},
}

var statCmd = &cobra.Command{
	Use:   "stat <path>",
	Short: "Show inode details of a file or directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInspect(cmd, inspect.ModeStat, args)
	},
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show filesystem parameters, free counts and layout",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInspect(cmd, inspect.ModeInfo, args)
	},
}

var descriptorsCmd = &cobra.Command{
	Use:     "descriptors",
	Aliases: []string{"fds"},
	Short:   "List open descriptors stored in the image",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInspect(cmd, inspect.ModeDescriptors, args)
	},
}

func init() {
	rootCmd.AddCommand(lsCmd, statCmd, infoCmd, descriptorsCmd)
}

func runInspect(cmd *cobra.Command, mode inspect.Mode, args []string) error {
	ctx := newAppContext(cmd)
	fs, err := openFileSystem(ctx)
	if err != nil {
		return err
	}

	req := &inspect.Request{
		Target: app.ImageTarget{ImagePath: fs.ImagePath()},
		Mode:   mode,
	}
	if len(args) > 0 {
		req.Path = args[0]
	}

	response, err := inspect.Handle(ctx, fs, req)
	if err != nil {
		return err
	}

	return inspect.FormatOutput(ctx.Out, response, ctx.OutputFormat)
}
