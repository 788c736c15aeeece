package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/deploymenttheory/go-minifs/internal/backup"
	"github.com/deploymenttheory/go-minifs/internal/device"
)

// initConfig loads minifs-config.yaml and MINIFS_* environment overrides
func initConfig() error {
	v := viper.GetViper()

	device.SetDefaults(v)
	backup.SetDefaults(v)
	v.SetDefault("listen_address", "127.0.0.1:9000")
	v.SetDefault("server_address", "127.0.0.1:9000")

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("minifs-config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".minifs"))
		}
		v.AddConfigPath("/etc/minifs")
	}

	v.SetEnvPrefix("MINIFS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	return nil
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Long: `Print the configuration after merging defaults, the config file,
MINIFS_* environment variables and command line flags.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if used := viper.ConfigFileUsed(); used != "" {
			fmt.Fprintf(out, "# %s\n", used)
		}

		encoder := yaml.NewEncoder(out)
		defer encoder.Close()
		encoder.SetIndent(2)
		return encoder.Encode(viper.AllSettings())
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
