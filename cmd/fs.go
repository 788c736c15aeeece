package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Format the image with an empty filesystem",
	Long: `Create or overwrite the image with a fresh superblock, an empty
descriptor table and the root directory.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := newAppContext(cmd)
		fs, err := openFileSystem(ctx)
		if err != nil {
			return err
		}
		if err := fs.Format(); err != nil {
			return err
		}
		ctx.Print("File system initialized")
		return nil
	},
}

var readFsCmd = &cobra.Command{
	Use:   "read-fs",
	Short: "Validate the image superblock",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := newAppContext(cmd)
		fs, err := openFileSystem(ctx)
		if err != nil {
			return err
		}
		if err := fs.CheckMagic(); err != nil {
			return err
		}
		ctx.Print("File system is valid")
		return nil
	},
}

var mkdirCmd = &cobra.Command{
	Use:   "mkdir <path>",
	Short: "Create a directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := newAppContext(cmd)
		fs, err := openFileSystem(ctx)
		if err != nil {
			return err
		}
		if err := fs.MakeDir(args[0]); err != nil {
			return err
		}
		ctx.Print("Directory created")
		return nil
	},
}

var touchCmd = &cobra.Command{
	Use:   "touch <path>",
	Short: "Create an empty file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := newAppContext(cmd)
		fs, err := openFileSystem(ctx)
		if err != nil {
			return err
		}
		if err := fs.MakeFile(args[0]); err != nil {
			return err
		}
		ctx.Print("File created")
		return nil
	},
}

var openCmd = &cobra.Command{
	Use:   "open <path>",
	Short: "Open a file and print its descriptor",
	Long: `Open a file and print its descriptor. The descriptor is stored in
the image and stays open until closed, across invocations.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := newAppContext(cmd)
		fs, err := openFileSystem(ctx)
		if err != nil {
			return err
		}
		fd, err := fs.Open(args[0])
		if err != nil {
			return err
		}
		ctx.Print("fd = %d", fd)
		return nil
	},
}

var closeCmd = &cobra.Command{
	Use:   "close <fd>",
	Short: "Close a descriptor",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fd, err := parseDescriptor(args[0])
		if err != nil {
			return err
		}

		ctx := newAppContext(cmd)
		fs, err := openFileSystem(ctx)
		if err != nil {
			return err
		}
		if err := fs.Close(fd); err != nil {
			return err
		}
		ctx.Print("Closed fd %d", fd)
		return nil
	},
}

var lseekCmd = &cobra.Command{
	Use:   "lseek <fd> <pos>",
	Short: "Set the position of a descriptor",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		fd, err := parseDescriptor(args[0])
		if err != nil {
			return err
		}
		pos, err := strconv.ParseUint(args[1], 10, 32)
		if err != nil {
			return invalidInput(fmt.Sprintf("invalid position %q", args[1]), err)
		}

		ctx := newAppContext(cmd)
		fs, err := openFileSystem(ctx)
		if err != nil {
			return err
		}
		if err := fs.Seek(fd, uint32(pos)); err != nil {
			return err
		}
		ctx.Print("Position set to %d", pos)
		return nil
	},
}

var readCmd = &cobra.Command{
	Use:   "read <fd> [size]",
	Short: "Read from a descriptor",
	Long: `Read up to size bytes from the descriptor position and advance it.
Without size the file is read to the end. With --to the data is written
to a host file instead of stdout.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		fd, err := parseDescriptor(args[0])
		if err != nil {
			return err
		}
		size := -1
		if len(args) > 1 {
			if size, err = strconv.Atoi(args[1]); err != nil || size < 0 {
				return invalidInput(fmt.Sprintf("invalid size %q", args[1]), err)
			}
		}
		hostPath, _ := cmd.Flags().GetString("to")

		ctx := newAppContext(cmd)
		fs, err := openFileSystem(ctx)
		if err != nil {
			return err
		}

		if hostPath != "" {
			n, err := fs.ReadTo(fd, hostPath, size)
			if err != nil {
				return err
			}
			ctx.Print("Total read: %d", n)
			return nil
		}

		data, err := fs.Read(fd, size)
		if err != nil {
			return err
		}
		ctx.Print("%s", data)
		return nil
	},
}

var writeCmd = &cobra.Command{
	Use:   "write <fd> [data]",
	Short: "Write to a descriptor",
	Long: `Write data at the descriptor position and advance it. With --from the
data is read from a host file. Writes stop early when the file reaches its
block limit or the image runs out of blocks.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		fd, err := parseDescriptor(args[0])
		if err != nil {
			return err
		}
		hostPath, _ := cmd.Flags().GetString("from")
		if hostPath == "" && len(args) < 2 {
			return invalidInput("either data or --from is required", nil)
		}
		if hostPath != "" && len(args) > 1 {
			return invalidInput("data and --from are mutually exclusive", nil)
		}

		ctx := newAppContext(cmd)
		fs, err := openFileSystem(ctx)
		if err != nil {
			return err
		}

		var n int
		if hostPath != "" {
			n, err = fs.WriteFrom(fd, hostPath)
		} else {
			n, err = fs.Write(fd, []byte(args[1]))
		}
		if err != nil {
			return err
		}
		ctx.Print("Total written: %d", n)
		return nil
	},
}

func init() {
	readCmd.Flags().String("to", "", "host file to write the data to")
	writeCmd.Flags().String("from", "", "host file to read the data from")

	rootCmd.AddCommand(
		initCmd,
		readFsCmd,
		mkdirCmd,
		touchCmd,
		openCmd,
		closeCmd,
		lseekCmd,
		readCmd,
		writeCmd,
	)
}

func parseDescriptor(s string) (uint16, error) {
	fd, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0, invalidInput(fmt.Sprintf("invalid fd %q", s), err)
	}
	return uint16(fd), nil
}
