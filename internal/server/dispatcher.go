package server

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/deploymenttheory/go-minifs/internal/services"
)

// HelpText lists the commands understood by the server and the shell
const HelpText = `You are working with minifs
Available commands:
help -- print this text
quit -- close program
ls [path] -- list directory contents
init -- init file system
read_fs -- read fs_file and checks it
mkdir [path] -- make directories
touch [path] -- create files
open [path] -- open file and return FD
close [fd] -- close FD
write [fd] [data] -- write data to FD
write_from [fd] [path] -- read data from path and write to FD
read [fd] [size] -- read size bytes from FD
read_to [fd] [path] [size] -- read file from fd.pos and write data to path. If size not specified file will be read till end
lseek [fd] [pos] -- set fd.pos = pos
`

// Dispatcher executes requests against one filesystem
type Dispatcher struct {
	fs     services.FileSystemService
	logger *slog.Logger
}

// NewDispatcher creates a dispatcher for fs
func NewDispatcher(fs services.FileSystemService, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{fs: fs, logger: logger}
}

// Dispatch runs one request. The second result is true for quit.
func (d *Dispatcher) Dispatch(req Request) (Response, bool) {
	if req.Command == CmdQuit {
		return Response{OK: true, Message: "Bye"}, true
	}

	message, err := d.run(req)
	if err != nil {
		d.logger.Debug("command failed", "command", req.Command.String(), "error", err)
		return Response{OK: false, Message: err.Error()}, false
	}
	return Response{OK: true, Message: message}, false
}

func (d *Dispatcher) run(req Request) (string, error) {
	args := req.Args

	switch req.Command {
	case CmdHelp:
		return HelpText, nil

	case CmdInit:
		if err := d.fs.Format(); err != nil {
			return "", err
		}
		return "File system initialized", nil

	case CmdReadFs:
		if err := d.fs.CheckMagic(); err != nil {
			return "", err
		}
		return "File system is valid", nil

	case CmdLs:
		path := "/"
		if len(args) > 0 {
			path = args[0]
		}
		entries, err := d.fs.List(path)
		if err != nil {
			return "", err
		}
		lines := make([]string, len(entries))
		for i, entry := range entries {
			lines[i] = entry.String()
		}
		return strings.Join(lines, "\n"), nil

	case CmdMkdir:
		if err := requireArgs(req, 1); err != nil {
			return "", err
		}
		if err := d.fs.MakeDir(args[0]); err != nil {
			return "", err
		}
		return "Directory created", nil

	case CmdTouch:
		if err := requireArgs(req, 1); err != nil {
			return "", err
		}
		if err := d.fs.MakeFile(args[0]); err != nil {
			return "", err
		}
		return "File created", nil

	case CmdOpen:
		if err := requireArgs(req, 1); err != nil {
			return "", err
		}
		fd, err := d.fs.Open(args[0])
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("fd = %d", fd), nil

	case CmdClose:
		if err := requireArgs(req, 1); err != nil {
			return "", err
		}
		fd, err := parseFD(args[0])
		if err != nil {
			return "", err
		}
		if err := d.fs.Close(fd); err != nil {
			return "", err
		}
		return fmt.Sprintf("Closed fd %d", fd), nil

	case CmdLseek:
		if err := requireArgs(req, 2); err != nil {
			return "", err
		}
		fd, err := parseFD(args[0])
		if err != nil {
			return "", err
		}
		pos, err := strconv.ParseUint(args[1], 10, 32)
		if err != nil {
			return "", fmt.Errorf("invalid position %q: %w", args[1], err)
		}
		if err := d.fs.Seek(fd, uint32(pos)); err != nil {
			return "", err
		}
		return fmt.Sprintf("Position set to %d", pos), nil

	case CmdWrite:
		if err := requireArgs(req, 2); err != nil {
			return "", err
		}
		fd, err := parseFD(args[0])
		if err != nil {
			return "", err
		}
		n, err := d.fs.Write(fd, []byte(args[1]))
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Total written: %d", n), nil

	case CmdWriteFrom:
		if err := requireArgs(req, 2); err != nil {
			return "", err
		}
		fd, err := parseFD(args[0])
		if err != nil {
			return "", err
		}
		n, err := d.fs.WriteFrom(fd, args[1])
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Total written: %d", n), nil

	case CmdRead:
		if err := requireArgs(req, 2); err != nil {
			return "", err
		}
		fd, err := parseFD(args[0])
		if err != nil {
			return "", err
		}
		size, err := strconv.Atoi(args[1])
		if err != nil || size < 0 {
			return "", fmt.Errorf("invalid size %q", args[1])
		}
		data, err := d.fs.Read(fd, size)
		if err != nil {
			return "", err
		}
		return string(data), nil

	case CmdReadTo:
		if err := requireArgs(req, 2); err != nil {
			return "", err
		}
		fd, err := parseFD(args[0])
		if err != nil {
			return "", err
		}
		size := -1
		if len(args) > 2 {
			if size, err = strconv.Atoi(args[2]); err != nil || size < 0 {
				return "", fmt.Errorf("invalid size %q", args[2])
			}
		}
		n, err := d.fs.ReadTo(fd, args[1], size)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Total read: %d", n), nil
	}

	return "", fmt.Errorf("%w: %s", ErrUnknownCommand, req.Command)
}

func requireArgs(req Request, n int) error {
	if len(req.Args) < n {
		return fmt.Errorf("%s: expected %d argument(s), got %d", req.Command, n, len(req.Args))
	}
	return nil
}

func parseFD(s string) (uint16, error) {
	fd, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid fd %q: %w", s, err)
	}
	return uint16(fd), nil
}
