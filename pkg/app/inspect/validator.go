package inspect

import (
	"strings"

	"github.com/deploymenttheory/go-minifs/pkg/app"
)

// Validate validates an inspection request
func (r *Request) Validate() error {
	// Image path is required
	if err := r.Target.Validate(); err != nil {
		return err
	}

	switch r.Mode {
	case ModeList, ModeStat:
		if r.Path == "" {
			r.Path = "/"
		}
		if !strings.HasPrefix(r.Path, "/") {
			return app.NewError(app.ErrCodeInvalidInput, "path must be absolute: "+r.Path, nil)
		}
	case ModeInfo, ModeDescriptors:
	default:
		return app.NewError(app.ErrCodeInvalidInput, "unknown inspection mode: "+string(r.Mode), nil)
	}

	return nil
}

// ValidateOutputFormat checks the value of the --output flag
func ValidateOutputFormat(format string) error {
	switch format {
	case "table", "json", "yaml":
		return nil
	default:
		return app.NewError(app.ErrCodeInvalidInput, "unsupported output format: "+format, nil)
	}
}
