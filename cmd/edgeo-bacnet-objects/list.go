package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/edgeo-scada/bacnet-objects/bacnet"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the objects of the device",
	Long: `List prints every object registered on the configured device, ordered by
type and instance, with its name, present value length and status flags.

Examples:
  edgeo-bacnet-objects list
  edgeo-bacnet-objects list -o yaml`,

	RunE: runList,
}

// listEntry is one object in structured list output
type listEntry struct {
	Object      string             `json:"object" yaml:"object" cbor:"object"`
	ObjectName  string             `json:"object_name" yaml:"object_name" cbor:"object_name"`
	Length      int                `json:"length" yaml:"length" cbor:"length"`
	StatusFlags bacnet.StatusFlags `json:"status_flags" yaml:"status_flags" cbor:"status_flags"`
}

func runList(cmd *cobra.Command, args []string) error {
	out := NewFormatter(outputFmt)
	snaps := device.Snapshot()

	entries := make([]listEntry, 0, len(snaps))
	for _, s := range snaps {
		entries = append(entries, listEntry{
			Object:      s.Object,
			ObjectName:  s.ObjectName,
			Length:      len(s.PresentValue),
			StatusFlags: s.StatusFlags,
		})
	}
	if ok, err := out.Encode(entries); ok {
		return err
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			e.Object,
			e.ObjectName,
			fmt.Sprintf("%d", e.Length),
			formatFlags(e.StatusFlags),
		})
	}

	switch out.Format() {
	case FormatCSV:
		return out.PrintCSV([]string{"object", "object_name", "length", "status_flags"}, rows)
	case FormatRaw:
		for _, e := range entries {
			out.Println(e.Object)
		}
	default:
		out.Printf("Device %s (%s): %d object(s)\n\n", device.Identifier(), device.Name(), len(entries))
		out.PrintTable([]string{"OBJECT", "NAME", "LENGTH", "STATUS"}, rows)
	}
	return nil
}
