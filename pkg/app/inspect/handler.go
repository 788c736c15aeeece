package inspect

import (
	"github.com/deploymenttheory/go-minifs/internal/services"
	"github.com/deploymenttheory/go-minifs/pkg/app"
)

// Handle processes an inspection request against fs
func Handle(ctx *app.Context, fs services.FileSystemService, req *Request) (*Response, error) {
	// 1. Validate request
	if err := req.Validate(); err != nil {
		return nil, err
	}

	ctx.Log("inspecting image", "target", req.Target.String(), "mode", req.Mode, "path", req.Path)

	// 2. Run the query for the selected mode
	response := &Response{Mode: req.Mode, Path: req.Path}
	var err error
	switch req.Mode {
	case ModeList:
		response.Entries, err = fs.List(req.Path)
	case ModeStat:
		response.Stat, err = fs.Stat(req.Path)
	case ModeInfo:
		response.Info, err = fs.Info()
	case ModeDescriptors:
		response.Descriptors, err = fs.Descriptors()
	}
	if err != nil {
		return nil, app.FromError(err)
	}

	return response, nil
}
