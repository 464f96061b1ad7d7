// Copyright 2025 Edgeo SCADA
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/edgeo-scada/bacnet-objects/bacnet"
)

var (
	dumpFile    string
	dumpObjects []string
)

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Dump all objects and properties of the device",
	Long: `Dump reads every property in the property list of every object, plus
its status flags, and writes the result as a table or a document.

Formats: table, json, csv, yaml, cbor. CBOR keeps octet strings binary;
the other formats print them as hex.

Examples:
  # Dump all objects to stdout
  edgeo-bacnet-objects dump

  # Dump to a JSON file
  edgeo-bacnet-objects dump -f device_backup.json -o json

  # Dump to a CBOR file
  edgeo-bacnet-objects dump -f device_backup.cbor -o cbor

  # Dump specific object types
  edgeo-bacnet-objects dump --objects octetstring-value`,

	RunE: runDump,
}

func init() {
	dumpCmd.Flags().StringVarP(&dumpFile, "file", "f", "", "Output file (default: stdout)")
	dumpCmd.Flags().StringSliceVar(&dumpObjects, "objects", nil, "Object types to include (default: all)")
}

type DumpObject struct {
	ObjectID    string                 `json:"object_id" yaml:"object_id" cbor:"object_id"`
	ObjectType  string                 `json:"object_type" yaml:"object_type" cbor:"object_type"`
	Instance    uint32                 `json:"instance" yaml:"instance" cbor:"instance"`
	Properties  map[string]interface{} `json:"properties" yaml:"properties" cbor:"properties"`
	StatusFlags bacnet.StatusFlags     `json:"status_flags" yaml:"status_flags" cbor:"status_flags"`
}

type DumpResult struct {
	DeviceID   uint32       `json:"device_id" yaml:"device_id" cbor:"device_id"`
	DeviceName string       `json:"device_name" yaml:"device_name" cbor:"device_name"`
	Timestamp  time.Time    `json:"timestamp" yaml:"timestamp" cbor:"timestamp"`
	Objects    []DumpObject `json:"objects" yaml:"objects" cbor:"objects"`
}

func runDump(cmd *cobra.Command, args []string) error {
	// Filter object types if specified
	var types map[bacnet.ObjectType]bool
	if len(dumpObjects) > 0 {
		types = make(map[bacnet.ObjectType]bool)
		for _, typeStr := range dumpObjects {
			objType, ok := bacnet.ParseObjectType(typeStr)
			if !ok {
				return fmt.Errorf("unknown object type: %s", typeStr)
			}
			types[objType] = true
		}
	}

	out := NewFormatter(outputFmt)
	result, err := buildDump(device, types, out.Format() == FormatCBOR)
	if err != nil {
		return err
	}

	// Output results
	var w io.Writer = os.Stdout
	if dumpFile != "" {
		f, err := os.Create(dumpFile)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	out.SetWriter(w)

	if ok, err := out.Encode(result); ok {
		if err == nil && dumpFile != "" {
			fmt.Fprintf(os.Stderr, "Dumped %d object(s) to %s\n", len(result.Objects), dumpFile)
		}
		return err
	}
	if out.Format() == FormatCSV {
		return outputDumpCSV(out, result)
	}
	outputDumpTable(out, result)
	return nil
}

func buildDump(d *bacnet.Device, types map[bacnet.ObjectType]bool, binary bool) (DumpResult, error) {
	result := DumpResult{
		DeviceID:   d.Identifier().Instance,
		DeviceName: d.Name(),
		Timestamp:  time.Now().UTC(),
	}

	for _, snap := range d.Snapshot() {
		oid := snap.ObjectID
		if types != nil && !types[oid.Type] {
			continue
		}

		results, err := d.ReadPropertyAll(oid)
		if err != nil {
			return DumpResult{}, fmt.Errorf("read %s: %w", oid, err)
		}

		dumpObj := DumpObject{
			ObjectID:    oid.String(),
			ObjectType:  oid.Type.String(),
			Instance:    oid.Instance,
			Properties:  make(map[string]interface{}, len(results)),
			StatusFlags: snap.StatusFlags,
		}
		for _, r := range results {
			if r.Err != nil {
				continue // Skip properties that fail
			}
			dumpObj.Properties[r.PropertyID.String()] = documentValue(r.Value, binary)
		}
		result.Objects = append(result.Objects, dumpObj)
	}
	return result, nil
}

func outputDumpCSV(out *Formatter, result DumpResult) error {
	// Header: fixed columns, then every property seen, sorted
	seen := make(map[string]bool)
	for _, obj := range result.Objects {
		for prop := range obj.Properties {
			seen[prop] = true
		}
	}
	propNames := make([]string, 0, len(seen))
	for prop := range seen {
		propNames = append(propNames, prop)
	}
	sort.Strings(propNames)

	header := append([]string{"object_id", "object_type", "instance", "status_flags"}, propNames...)

	rows := make([][]string, 0, len(result.Objects))
	for _, obj := range result.Objects {
		row := []string{obj.ObjectID, obj.ObjectType, fmt.Sprintf("%d", obj.Instance), formatFlags(obj.StatusFlags)}
		for _, prop := range propNames {
			if val, ok := obj.Properties[prop]; ok {
				row = append(row, fmt.Sprintf("%v", val))
			} else {
				row = append(row, "")
			}
		}
		rows = append(rows, row)
	}
	return out.PrintCSV(header, rows)
}

func outputDumpTable(out *Formatter, result DumpResult) {
	out.Printf("Device: %d (%s)\n", result.DeviceID, result.DeviceName)
	out.Printf("Timestamp: %s\n", result.Timestamp.Format(time.RFC3339))
	out.Printf("Objects: %d\n\n", len(result.Objects))

	for _, obj := range result.Objects {
		out.Printf("%s\n", obj.ObjectID)
		pairs := make(map[string]interface{}, len(obj.Properties)+1)
		for prop, val := range obj.Properties {
			pairs["  "+prop] = val
		}
		pairs["  status-flags"] = formatFlags(obj.StatusFlags)
		out.PrintKeyValue(pairs, nil)
		out.Println()
	}
}
