package inspect

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"
)

// FormatOutput writes an inspection response in the requested format
func FormatOutput(w io.Writer, response *Response, format string) error {
	switch format {
	case "json":
		return formatJSON(w, response)
	case "yaml":
		return formatYAML(w, response)
	case "table":
		return formatTable(w, response)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

// formatTable renders the response for a terminal. Listings use the same
// one-entry-per-line form as the interactive shell.
func formatTable(w io.Writer, response *Response) error {
	switch response.Mode {
	case ModeList:
		for _, entry := range response.Entries {
			fmt.Fprintln(w, entry.String())
		}
		return nil
	case ModeStat:
		return formatStat(w, response)
	case ModeInfo:
		return formatInfo(w, response)
	case ModeDescriptors:
		return formatDescriptors(w, response)
	default:
		return fmt.Errorf("unsupported response mode: %s", response.Mode)
	}
}

func formatStat(w io.Writer, response *Response) error {
	stat := response.Stat
	if stat == nil {
		return fmt.Errorf("response has no stat section")
	}

	kind := "directory"
	sizeLabel := "Entries"
	if stat.IsFile {
		kind = "file"
		sizeLabel = "Size"
	}

	ids := make([]string, len(stat.BlockIDs))
	for i, id := range stat.BlockIDs {
		ids[i] = fmt.Sprintf("%d", id)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Path:\t%s\n", stat.Path)
	fmt.Fprintf(tw, "Inode:\t%d\n", stat.InodeID)
	fmt.Fprintf(tw, "Type:\t%s\n", kind)
	fmt.Fprintf(tw, "%s:\t%d\n", sizeLabel, stat.Size)
	fmt.Fprintf(tw, "Blocks:\t%d [%s]\n", stat.BlocksUsed, strings.Join(ids, " "))
	return tw.Flush()
}

func formatInfo(w io.Writer, response *Response) error {
	info := response.Info
	if info == nil {
		return fmt.Errorf("response has no info section")
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Magic:\t0x%X\n", info.Magic)
	fmt.Fprintf(tw, "Block size:\t%d\n", info.BlockSize)
	fmt.Fprintf(tw, "Inodes:\t%d free of %d\n", info.FreeInodes, info.InodesCount)
	fmt.Fprintf(tw, "Blocks:\t%d free of %d\n", info.FreeBlocks, info.BlocksCount)
	fmt.Fprintf(tw, "Descriptors:\t%d open of %d\n", info.OpenDescriptors, info.DescriptorsCount)
	fmt.Fprintf(tw, "Max name length:\t%d\n", info.MaxPathLen-1)
	fmt.Fprintf(tw, "Max records per block:\t%d\n", info.MaxRecordsPerBlock)
	fmt.Fprintf(tw, "Max data per block:\t%d\n", info.MaxDataPerBlock)
	fmt.Fprintf(tw, "Max file size:\t%d\n", info.MaxFileSize)
	fmt.Fprintf(tw, "Descriptor table at:\t%d\n", info.Layout.DescriptorTableOffset)
	fmt.Fprintf(tw, "Inode table at:\t%d\n", info.Layout.InodeTableOffset)
	fmt.Fprintf(tw, "Block region at:\t%d\n", info.Layout.BlockRegionOffset)
	fmt.Fprintf(tw, "Image size:\t%d\n", info.Layout.ImageSize)
	return tw.Flush()
}

func formatDescriptors(w io.Writer, response *Response) error {
	if len(response.Descriptors) == 0 {
		fmt.Fprintln(w, "No open descriptors.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	// Header
	fmt.Fprintf(tw, "FD\tINODE\tPOSITION\n")
	fmt.Fprintf(tw, "--\t-----\t--------\n")

	for _, d := range response.Descriptors {
		fmt.Fprintf(tw, "%d\t%d\t%d\n", d.Handle, d.InodeID, d.Position)
	}
	return tw.Flush()
}

// formatJSON formats results as JSON
func formatJSON(w io.Writer, response *Response) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(response)
}

// formatYAML formats results as YAML
func formatYAML(w io.Writer, response *Response) error {
	encoder := yaml.NewEncoder(w)
	defer encoder.Close()
	encoder.SetIndent(2)
	return encoder.Encode(response)
}
