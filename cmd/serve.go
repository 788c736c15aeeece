package cmd

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/deploymenttheory/go-minifs/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the image over TCP",
	Long: `Accept client connections and run their commands against the image.
Connections are served one at a time. Stop with SIGINT or SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := newAppContext(cmd)
		fs, err := openFileSystem(ctx)
		if err != nil {
			return err
		}

		signalCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		address := viper.GetString("listen_address")
		srv := server.NewServer(server.NewDispatcher(fs, ctx.Logger), ctx.Logger)
		return srv.ListenAndServe(signalCtx, address)
	},
}

func init() {
	serveCmd.Flags().String("listen", "", "address to listen on (default 127.0.0.1:9000)")
	viper.BindPFlag("listen_address", serveCmd.Flags().Lookup("listen"))
	rootCmd.AddCommand(serveCmd)
}
