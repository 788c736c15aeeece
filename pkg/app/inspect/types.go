package inspect

import (
	"github.com/deploymenttheory/go-minifs/internal/managers/descriptors"
	"github.com/deploymenttheory/go-minifs/internal/services"
	"github.com/deploymenttheory/go-minifs/pkg/app"
)

// Mode selects what an inspection reports
type Mode string

const (
	ModeList        Mode = "ls"
	ModeStat        Mode = "stat"
	ModeInfo        Mode = "info"
	ModeDescriptors Mode = "descriptors"
)

// Request represents an inspection of an image
type Request struct {
	Target app.ImageTarget
	Mode   Mode

	// Path inside the image, used by ls and stat
	Path string
}

// Response holds the section of the report selected by the request mode
type Response struct {
	Mode        Mode                         `json:"mode" yaml:"mode"`
	Path        string                       `json:"path,omitempty" yaml:"path,omitempty"`
	Entries     []services.DirEntry          `json:"entries,omitempty" yaml:"entries,omitempty"`
	Stat        *services.FileStat           `json:"stat,omitempty" yaml:"stat,omitempty"`
	Info        *services.FsReport           `json:"info,omitempty" yaml:"info,omitempty"`
	Descriptors []descriptors.OpenDescriptor `json:"descriptors,omitempty" yaml:"descriptors,omitempty"`
}
