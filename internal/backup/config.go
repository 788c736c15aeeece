package backup

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config selects where image backups are stored
type Config struct {
	Bucket string `mapstructure:"bucket"`
	Prefix string `mapstructure:"prefix"`
	Region string `mapstructure:"region"`
}

// SetDefaults registers backup defaults on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault("backup.bucket", "")
	v.SetDefault("backup.prefix", "minifs/")
	v.SetDefault("backup.region", "us-east-1")
}

// LoadConfig reads the backup section using Viper
func LoadConfig(v *viper.Viper) (*Config, error) {
	if v == nil {
		v = viper.GetViper()
	}
	SetDefaults(v)

	// Read keys one by one so environment overrides of nested keys apply
	config := Config{
		Bucket: v.GetString("backup.bucket"),
		Prefix: v.GetString("backup.prefix"),
		Region: v.GetString("backup.region"),
	}

	if config.Bucket == "" {
		return nil, fmt.Errorf("backup bucket is required (set backup.bucket or MINIFS_BACKUP_BUCKET)")
	}

	return &config, nil
}
