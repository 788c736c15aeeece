package device

import (
	"fmt"

	"github.com/spf13/viper"
)

// DeviceConfig holds configuration for image access
type DeviceConfig struct {
	ImagePath  string `mapstructure:"image"`
	SyncWrites bool   `mapstructure:"sync_writes"`
}

// SetDefaults registers device defaults on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault("image", "./minifs.img")
	v.SetDefault("sync_writes", false)
}

// LoadDeviceConfig loads device configuration using Viper
func LoadDeviceConfig(v *viper.Viper) (*DeviceConfig, error) {
	if v == nil {
		v = viper.GetViper()
	}
	SetDefaults(v)

	var config DeviceConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling device config: %w", err)
	}

	if config.ImagePath == "" {
		return nil, fmt.Errorf("image path is required")
	}

	return &config, nil
}
