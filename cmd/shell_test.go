package cmd

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deploymenttheory/go-minifs/internal/device"
	"github.com/deploymenttheory/go-minifs/internal/server"
	"github.com/deploymenttheory/go-minifs/internal/services"
)

func newLocalSession(t *testing.T) localSession {
	t.Helper()
	fs, err := services.NewFileSystem("shell.img", device.NewMemoryOpener())
	require.NoError(t, err)
	return localSession{dispatcher: server.NewDispatcher(fs, slog.New(slog.NewTextHandler(io.Discard, nil)))}
}

func TestRunShellLocal(t *testing.T) {
	input := strings.Join([]string{
		"init",
		"",
		"bogus",
		"mkdir /docs",
		"touch /docs/a",
		"open /docs/a",
		"write 0 hello world",
		"lseek 0 6",
		"read 0 5",
		"close 0",
		"close 0",
		"quit",
		"ls /",
	}, "\n")

	var out bytes.Buffer
	require.NoError(t, runShell(strings.NewReader(input), &out, newLocalSession(t), false))

	want := strings.Join([]string{
		"File system initialized",
		"Error: unknown command: bogus",
		"Directory created",
		"File created",
		"fd = 0",
		"Total written: 11",
		"Position set to 6",
		"world",
		"Closed fd 0",
		"Error: close fd 0: fd 0: descriptor is closed",
		"Bye",
	}, "\n") + "\n"
	assert.Equal(t, want, out.String())
}

func TestRunShellStopsAtEOF(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, runShell(strings.NewReader("init\nls"), &out, newLocalSession(t), true))
	assert.Equal(t, "> File system initialized\n> .\n..\n> ", out.String())
}

func TestRunShellRemote(t *testing.T) {
	serverConn, clientConn := net.Pipe()
	srv := server.NewServer(newLocalSession(t).dispatcher, slog.New(slog.NewTextHandler(io.Discard, nil)))

	done := make(chan struct{})
	go func() {
		defer close(done)
		srv.ServeConn(context.Background(), serverConn)
	}()

	client := server.NewClient(clientConn)
	var out bytes.Buffer
	require.NoError(t, runShell(strings.NewReader("init\nread_fs\nquit\n"), &out, remoteSession{client: client}, false))
	require.NoError(t, client.Close())
	<-done

	assert.Equal(t, "File system initialized\nFile system is valid\nBye\n", out.String())
}

func TestCommandsAgainstImageFile(t *testing.T) {
	image := filepath.Join(t.TempDir(), "cli.img")

	run := func(args ...string) string {
		t.Helper()
		var out bytes.Buffer
		rootCmd.SetOut(&out)
		rootCmd.SetErr(io.Discard)
		rootCmd.SetArgs(append(args, "--image", image))
		require.NoError(t, rootCmd.Execute(), "minifs %v", args)
		return out.String()
	}

	assert.Equal(t, "File system initialized\n", run("init"))
	assert.Equal(t, "Directory created\n", run("mkdir", "/etc"))
	assert.Equal(t, "File created\n", run("touch", "/etc/motd"))
	assert.Equal(t, "fd = 0\n", run("open", "/etc/motd"))
	assert.Equal(t, "Total written: 2\n", run("write", "0", "hi"))
	assert.Equal(t, "Position set to 0\n", run("lseek", "0", "0"))
	assert.Equal(t, "hi\n", run("read", "0"))
	assert.Equal(t, ".\n..\nmotd -- file\n", run("ls", "/etc"))
	assert.Equal(t, "Closed fd 0\n", run("close", "0"))
	assert.Equal(t, "File system is valid\n", run("read-fs"))
}
