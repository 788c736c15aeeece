package cmd

import (
	"bufio"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/deploymenttheory/go-minifs/internal/server"
	"github.com/deploymenttheory/go-minifs/pkg/app"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Run commands interactively",
	Long: `Read commands line by line and run them against the local image, or
against a minifs server when --remote is set. Type help for the command
list and quit to leave.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := newAppContext(cmd)

		remote, _ := cmd.Flags().GetString("remote")
		if remote == "" && cmd.Flags().Changed("connect") {
			remote = viper.GetString("server_address")
		}

		var session shellSession
		if remote != "" {
			client, err := server.Dial(ctx, remote)
			if err != nil {
				return app.NewError(app.ErrCodeRemote, "cannot reach server", err)
			}
			defer client.Close()
			session = remoteSession{client: client}
			ctx.Log("connected", "target", (&app.ImageTarget{Remote: remote}).String())
		} else {
			fs, err := openFileSystem(ctx)
			if err != nil {
				return err
			}
			session = localSession{dispatcher: server.NewDispatcher(fs, ctx.Logger)}
		}

		return runShell(cmd.InOrStdin(), ctx.Out, session, !ctx.Quiet)
	},
}

func init() {
	shellCmd.Flags().String("remote", "", "server address to send commands to")
	shellCmd.Flags().Bool("connect", false, "connect to the configured server_address")
	rootCmd.AddCommand(shellCmd)
}

// shellSession executes one parsed line and reports whether to stop
type shellSession interface {
	Do(req server.Request) (server.Response, bool, error)
}

type localSession struct {
	dispatcher *server.Dispatcher
}

func (s localSession) Do(req server.Request) (server.Response, bool, error) {
	resp, quit := s.dispatcher.Dispatch(req)
	return resp, quit, nil
}

type remoteSession struct {
	client *server.Client
}

func (s remoteSession) Do(req server.Request) (server.Response, bool, error) {
	if req.Command == server.CmdQuit {
		return server.Response{OK: true, Message: "Bye"}, true, nil
	}
	resp, err := s.client.Do(req)
	return resp, false, err
}

// runShell reads lines from in until quit or EOF
func runShell(in io.Reader, out io.Writer, session shellSession, prompt bool) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 4096), server.MaxArgLength+1024)

	for {
		if prompt {
			fmt.Fprint(out, "> ")
		}
		if !scanner.Scan() {
			return scanner.Err()
		}

		line := scanner.Text()
		req, err := server.ParseLine(line)
		if err != nil {
			if line != "" {
				fmt.Fprintf(out, "Error: %v\n", err)
			}
			continue
		}

		resp, quit, err := session.Do(req)
		if err != nil {
			return app.NewError(app.ErrCodeRemote, "session failed", err)
		}

		switch {
		case !resp.OK:
			fmt.Fprintf(out, "Error: %s\n", resp.Message)
		case resp.Message != "":
			fmt.Fprintln(out, resp.Message)
		}
		if quit {
			return nil
		}
	}
}
