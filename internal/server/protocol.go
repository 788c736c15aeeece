package server

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Command identifies a request. Values are part of the wire format.
type Command uint8

const (
	CmdHelp Command = iota + 1
	CmdLs
	CmdInit
	CmdReadFs
	CmdMkdir
	CmdTouch
	CmdOpen
	CmdQuit
	CmdClose
	CmdWrite
	CmdWriteFrom
	CmdRead
	CmdReadTo
	CmdLseek
)

var commandNames = map[Command]string{
	CmdHelp:      "help",
	CmdLs:        "ls",
	CmdInit:      "init",
	CmdReadFs:    "read_fs",
	CmdMkdir:     "mkdir",
	CmdTouch:     "touch",
	CmdOpen:      "open",
	CmdQuit:      "quit",
	CmdClose:     "close",
	CmdWrite:     "write",
	CmdWriteFrom: "write_from",
	CmdRead:      "read",
	CmdReadTo:    "read_to",
	CmdLseek:     "lseek",
}

// String returns the shell name of the command
func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return fmt.Sprintf("command(%d)", uint8(c))
}

// ParseCommand looks a command up by its shell name
func ParseCommand(name string) (Command, bool) {
	for cmd, n := range commandNames {
		if n == name {
			return cmd, true
		}
	}
	return 0, false
}

// Frame limits
const (
	MaxArgs      = 8
	MaxArgLength = 64 * 1024
)

// Response status bytes
const (
	statusOK    byte = 0
	statusError byte = 1
)

var (
	// ErrUnknownCommand is returned for a command byte or name that is not defined
	ErrUnknownCommand = errors.New("unknown command")

	// ErrFrameTooLarge is returned when a frame exceeds the protocol limits
	ErrFrameTooLarge = errors.New("frame too large")
)

// Request is one command with its string arguments
type Request struct {
	Command Command
	Args    []string
}

// Response is the server's answer to one request
type Response struct {
	OK      bool
	Message string
}

// WriteRequest encodes req as cmd u8 | argc u16 | (len u32 | bytes)*
func WriteRequest(w io.Writer, req Request) error {
	if len(req.Args) > MaxArgs {
		return fmt.Errorf("%w: %d arguments", ErrFrameTooLarge, len(req.Args))
	}

	bw := bufio.NewWriter(w)
	header := make([]byte, 3)
	header[0] = byte(req.Command)
	binary.LittleEndian.PutUint16(header[1:3], uint16(len(req.Args)))
	bw.Write(header)

	for _, arg := range req.Args {
		if len(arg) > MaxArgLength {
			return fmt.Errorf("%w: argument of %d bytes", ErrFrameTooLarge, len(arg))
		}
		if err := writeString(bw, arg); err != nil {
			return err
		}
	}

	return bw.Flush()
}

// ReadRequest decodes one request frame
func ReadRequest(r io.Reader) (Request, error) {
	var req Request

	header := make([]byte, 3)
	if _, err := io.ReadFull(r, header); err != nil {
		return req, err
	}

	req.Command = Command(header[0])
	if _, ok := commandNames[req.Command]; !ok {
		return req, fmt.Errorf("%w: %d", ErrUnknownCommand, header[0])
	}

	argc := binary.LittleEndian.Uint16(header[1:3])
	if argc > MaxArgs {
		return req, fmt.Errorf("%w: %d arguments", ErrFrameTooLarge, argc)
	}

	req.Args = make([]string, 0, argc)
	for i := uint16(0); i < argc; i++ {
		arg, err := readString(r)
		if err != nil {
			return req, fmt.Errorf("failed to read argument %d: %w", i, err)
		}
		req.Args = append(req.Args, arg)
	}

	return req, nil
}

// WriteResponse encodes resp as status u8 | len u32 | message
func WriteResponse(w io.Writer, resp Response) error {
	bw := bufio.NewWriter(w)
	status := statusOK
	if !resp.OK {
		status = statusError
	}
	bw.WriteByte(status)
	if err := writeString(bw, resp.Message); err != nil {
		return err
	}
	return bw.Flush()
}

// ReadResponse decodes one response frame
func ReadResponse(r io.Reader) (Response, error) {
	var resp Response

	status := make([]byte, 1)
	if _, err := io.ReadFull(r, status); err != nil {
		return resp, err
	}

	message, err := readString(r)
	if err != nil {
		return resp, fmt.Errorf("failed to read response message: %w", err)
	}

	resp.OK = status[0] == statusOK
	resp.Message = message
	return resp, nil
}

func writeString(w io.Writer, s string) error {
	length := make([]byte, 4)
	binary.LittleEndian.PutUint32(length, uint32(len(s)))
	if _, err := w.Write(length); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func readString(r io.Reader) (string, error) {
	length := make([]byte, 4)
	if _, err := io.ReadFull(r, length); err != nil {
		return "", err
	}

	n := binary.LittleEndian.Uint32(length)
	if n > MaxArgLength {
		return "", fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, n)
	}

	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

// ParseLine turns a shell line into a request. The data argument of write
// is the rest of the line after the descriptor, spaces included.
func ParseLine(line string) (Request, error) {
	line = strings.TrimSpace(line)
	name, rest, _ := strings.Cut(line, " ")
	if name == "" {
		return Request{}, fmt.Errorf("%w: empty line", ErrUnknownCommand)
	}

	cmd, ok := ParseCommand(name)
	if !ok {
		return Request{}, fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}

	req := Request{Command: cmd}
	rest = strings.TrimLeft(rest, " ")

	if cmd == CmdWrite {
		fd, data, found := strings.Cut(rest, " ")
		if fd != "" {
			req.Args = append(req.Args, fd)
		}
		if found {
			req.Args = append(req.Args, data)
		}
		return req, nil
	}

	req.Args = strings.Fields(rest)
	return req, nil
}
