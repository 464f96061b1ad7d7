package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"

	"github.com/edgeo-scada/bacnet-objects/bacnet"
)

// OutputFormat represents output format types
type OutputFormat string

const (
	FormatTable OutputFormat = "table"
	FormatJSON  OutputFormat = "json"
	FormatCSV   OutputFormat = "csv"
	FormatYAML  OutputFormat = "yaml"
	FormatCBOR  OutputFormat = "cbor"
	FormatRaw   OutputFormat = "raw"
)

// Formatter handles output formatting
type Formatter struct {
	format OutputFormat
	writer io.Writer
}

// NewFormatter creates a new formatter
func NewFormatter(format string) *Formatter {
	return &Formatter{
		format: OutputFormat(strings.ToLower(format)),
		writer: os.Stdout,
	}
}

// SetWriter sets the output writer
func (f *Formatter) SetWriter(w io.Writer) {
	f.writer = w
}

// Format returns the selected output format
func (f *Formatter) Format() OutputFormat {
	return f.format
}

// Printf formats and prints output
func (f *Formatter) Printf(format string, args ...interface{}) {
	fmt.Fprintf(f.writer, format, args...)
}

// Println prints a line
func (f *Formatter) Println(args ...interface{}) {
	fmt.Fprintln(f.writer, args...)
}

// Encode writes v as a structured document in the selected format. It
// reports false for formats without a document encoding.
func (f *Formatter) Encode(v interface{}) (bool, error) {
	switch f.format {
	case FormatJSON:
		encoder := json.NewEncoder(f.writer)
		encoder.SetIndent("", "  ")
		return true, encoder.Encode(v)
	case FormatYAML:
		encoder := yaml.NewEncoder(f.writer)
		encoder.SetIndent(2)
		if err := encoder.Encode(v); err != nil {
			return true, err
		}
		return true, encoder.Close()
	case FormatCBOR:
		return true, cbor.NewEncoder(f.writer).Encode(v)
	}
	return false, nil
}

// PrintCSV writes a header and rows as CSV
func (f *Formatter) PrintCSV(headers []string, rows [][]string) error {
	writer := csv.NewWriter(f.writer)
	if err := writer.Write(headers); err != nil {
		return err
	}
	if err := writer.WriteAll(rows); err != nil {
		return err
	}
	return writer.Error()
}

// PrintTable prints data in table format
func (f *Formatter) PrintTable(headers []string, rows [][]string) {
	// Calculate column widths
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	// Print headers
	for i, h := range headers {
		fmt.Fprintf(f.writer, "%-*s ", widths[i], h)
	}
	fmt.Fprintln(f.writer)

	// Print separator
	for i := range headers {
		fmt.Fprint(f.writer, strings.Repeat("-", widths[i]), " ")
	}
	fmt.Fprintln(f.writer)

	// Print rows
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) {
				fmt.Fprintf(f.writer, "%-*s ", widths[i], cell)
			}
		}
		fmt.Fprintln(f.writer)
	}
}

// PrintKeyValue prints key-value pairs
func (f *Formatter) PrintKeyValue(pairs map[string]interface{}, order []string) {
	if order == nil {
		for key := range pairs {
			order = append(order, key)
		}
		sort.Strings(order)
	}

	maxKeyLen := 0
	for _, key := range order {
		if len(key) > maxKeyLen {
			maxKeyLen = len(key)
		}
	}

	for _, key := range order {
		if val, ok := pairs[key]; ok {
			fmt.Fprintf(f.writer, "%-*s: %v\n", maxKeyLen, key, val)
		}
	}
}

// formatValue renders a property value for humans
func formatValue(value bacnet.PropertyValue) string {
	switch v := value.Value.(type) {
	case nil:
		return "null"
	case bool:
		if v {
			return "true"
		}
		return "false"
	case []byte:
		if len(v) == 0 {
			return "(empty)"
		}
		return fmt.Sprintf("%x", v)
	case bacnet.ObjectIdentifier:
		return v.String()
	}
	return value.String()
}

// documentValue converts a property value for json/yaml/cbor documents.
// Octet strings stay binary in cbor and become hex elsewhere.
func documentValue(value bacnet.PropertyValue, binary bool) interface{} {
	switch v := value.Value.(type) {
	case []byte:
		if binary {
			return v
		}
		return fmt.Sprintf("%x", v)
	case bacnet.ObjectIdentifier:
		return v.String()
	}
	return value.Value
}

// formatFlags lists the set status flags, or "normal"
func formatFlags(f bacnet.StatusFlags) string {
	var set []string
	if f.InAlarm {
		set = append(set, "in-alarm")
	}
	if f.Fault {
		set = append(set, "fault")
	}
	if f.Overridden {
		set = append(set, "overridden")
	}
	if f.OutOfService {
		set = append(set, "out-of-service")
	}
	if len(set) == 0 {
		return "normal"
	}
	return strings.Join(set, ",")
}
