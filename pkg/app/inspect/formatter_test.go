package inspect

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/deploymenttheory/go-minifs/internal/managers/descriptors"
	"github.com/deploymenttheory/go-minifs/internal/services"
)

func listResponse() *Response {
	return &Response{
		Mode: ModeList,
		Path: "/a",
		Entries: []services.DirEntry{
			{Name: ".", InodeID: 1},
			{Name: "..", InodeID: 0},
			{Name: "b", InodeID: 2, IsFile: true},
		},
	}
}

func TestFormatOutputTableList(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, FormatOutput(&buf, listResponse(), "table"))
	assert.Equal(t, ".\n..\nb -- file\n", buf.String())
}

func TestFormatOutputJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, FormatOutput(&buf, listResponse(), "json"))

	var decoded Response
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, listResponse().Entries, decoded.Entries)
}

func TestFormatOutputYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, FormatOutput(&buf, listResponse(), "yaml"))

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "ls", decoded["mode"])
	assert.Len(t, decoded["entries"], 3)
}

func TestFormatOutputTableDetails(t *testing.T) {
	var buf bytes.Buffer
	err := FormatOutput(&buf, &Response{
		Mode: ModeStat,
		Stat: &services.FileStat{Path: "/f", InodeID: 4, IsFile: true, BlocksUsed: 2, BlockIDs: []uint16{4, 9}, Size: 130},
	}, "table")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Size:")
	assert.Contains(t, buf.String(), "2 [4 9]")

	buf.Reset()
	err = FormatOutput(&buf, &Response{
		Mode:        ModeDescriptors,
		Descriptors: []descriptors.OpenDescriptor{{Handle: 0, InodeID: 3, Position: 12}},
	}, "table")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "FD")

	buf.Reset()
	require.NoError(t, FormatOutput(&buf, &Response{Mode: ModeDescriptors}, "table"))
	assert.Equal(t, "No open descriptors.\n", buf.String())
}

func TestFormatOutputUnsupported(t *testing.T) {
	assert.Error(t, FormatOutput(&bytes.Buffer{}, listResponse(), "xml"))
	assert.Error(t, FormatOutput(&bytes.Buffer{}, &Response{Mode: ModeStat}, "table"))
}
