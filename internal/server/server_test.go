package server

import (
	"context"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deploymenttheory/go-minifs/internal/device"
	"github.com/deploymenttheory/go-minifs/internal/services"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestDispatcher(t *testing.T) *Dispatcher {
	t.Helper()
	fs, err := services.NewFileSystem("server.img", device.NewMemoryOpener())
	require.NoError(t, err)
	return NewDispatcher(fs, testLogger())
}

// pipeClient serves one end of an in-memory pipe and returns a client on the other
func pipeClient(t *testing.T, d *Dispatcher) (*Client, <-chan struct{}) {
	t.Helper()
	serverConn, clientConn := net.Pipe()
	srv := NewServer(d, testLogger())

	done := make(chan struct{})
	go func() {
		defer close(done)
		srv.ServeConn(context.Background(), serverConn)
	}()

	return NewClient(clientConn), done
}

func TestDispatchSession(t *testing.T) {
	client, done := pipeClient(t, newTestDispatcher(t))

	steps := []struct {
		line string
		ok   bool
		want string
	}{
		{"read_fs", false, ""},
		{"init", true, "File system initialized"},
		{"read_fs", true, "File system is valid"},
		{"mkdir /a", true, "Directory created"},
		{"mkdir /a", false, "mkdir /a: file already exist"},
		{"touch /a/b", true, "File created"},
		{"open /a/b", true, "fd = 0"},
		{"open /a/b", false, ""},
		{"write 0 hello", true, "Total written: 5"},
		{"lseek 0 0", true, "Position set to 0"},
		{"read 0 5", true, "hello"},
		{"lseek 0 900", false, ""},
		{"ls /a", true, ".\n..\nb -- file"},
		{"close 0", true, "Closed fd 0"},
		{"close 0", false, ""},
		{"close x", false, ""},
		{"mkdir", false, ""},
		{"help", true, HelpText},
	}

	for _, step := range steps {
		req, err := ParseLine(step.line)
		require.NoError(t, err, step.line)

		resp, err := client.Do(req)
		require.NoError(t, err, step.line)
		assert.Equal(t, step.ok, resp.OK, "%s: %s", step.line, resp.Message)
		if step.want != "" {
			assert.Equal(t, step.want, resp.Message, step.line)
		}
	}

	resp, err := client.Do(Request{Command: CmdQuit})
	require.NoError(t, err)
	assert.Equal(t, "Bye", resp.Message)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("server did not end the connection after quit")
	}
}

func TestWriteFromReadTo(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.txt")
	dst := filepath.Join(dir, "out.txt")
	require.NoError(t, os.WriteFile(src, []byte("from the host"), 0o600))

	d := newTestDispatcher(t)
	client, _ := pipeClient(t, d)
	defer client.Close()

	for _, line := range []string{"init", "touch /f", "open /f"} {
		req, err := ParseLine(line)
		require.NoError(t, err)
		_, err = client.Run(req)
		require.NoError(t, err, line)
	}

	msg, err := client.Run(Request{Command: CmdWriteFrom, Args: []string{"0", src}})
	require.NoError(t, err)
	assert.Equal(t, "Total written: 13", msg)

	_, err = client.Run(Request{Command: CmdLseek, Args: []string{"0", "5"}})
	require.NoError(t, err)

	msg, err = client.Run(Request{Command: CmdReadTo, Args: []string{"0", dst}})
	require.NoError(t, err)
	assert.Equal(t, "Total read: 8", msg)

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "the host", string(data))
}

func TestServeOverTCP(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	srv := NewServer(newTestDispatcher(t), testLogger())

	served := make(chan error, 1)
	go func() {
		served <- srv.Serve(ctx, ln)
	}()

	// connections are served one after another
	for i := 0; i < 2; i++ {
		client, err := Dial(ctx, ln.Addr().String())
		require.NoError(t, err)

		msg, err := client.Run(Request{Command: CmdInit})
		require.NoError(t, err)
		assert.Equal(t, "File system initialized", msg)
		require.NoError(t, client.Close())
	}

	assert.Equal(t, ln.Addr().String(), srv.Addr().String())

	cancel()
	select {
	case err := <-served:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop after cancel")
	}
}
