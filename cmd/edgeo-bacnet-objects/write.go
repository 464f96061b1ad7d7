package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"

	"github.com/edgeo-scada/bacnet-objects/bacnet"
)

var (
	writeObject     string
	writeProperty   string
	writeValue      string
	writePriority   int
	writeArrayIndex int
)

var writeCmd = &cobra.Command{
	Use:   "write",
	Short: "Write a property to a BACnet object",
	Long: `Write serves a WriteProperty request against the configured device and
prints the value read back afterwards.

Value types are automatically detected:
  - Octet strings: hex:0a0b0c, hex:0a:0b:0c, text:AT+OK
  - Numbers: 123, 45.67, -10
  - Booleans: true, false, active, inactive
  - Strings: "text value" (or any other bare word)
  - Null: null

The present value of an Octet String Value object is read-only unless the
object was configured with out_of_service_writes and is out of service.

Examples:
  # Rename an object
  edgeo-bacnet-objects write -O osv:1 -P object-name -V "uart-rx"

  # Replace the present value of an out-of-service object
  edgeo-bacnet-objects write -O osv:2 -P pv -V hex:48656c6c6f`,

	RunE: runWrite,
}

func init() {
	writeCmd.Flags().StringVarP(&writeObject, "object", "O", "", "Object type and instance (e.g., octetstring-value:1)")
	writeCmd.Flags().StringVarP(&writeProperty, "property", "P", "present-value", "Property identifier")
	writeCmd.Flags().StringVarP(&writeValue, "value", "V", "", "Value to write")
	writeCmd.Flags().IntVar(&writePriority, "priority", 0, "Write priority (1-16, 0 for no priority)")
	writeCmd.Flags().IntVar(&writeArrayIndex, "index", -1, "Array index (-1 for no index)")

	writeCmd.MarkFlagRequired("object")
	writeCmd.MarkFlagRequired("value")
}

func runWrite(cmd *cobra.Command, args []string) error {
	// Parse object identifier
	objectID, err := parseObjectIdentifier(writeObject)
	if err != nil {
		return fmt.Errorf("invalid object: %w", err)
	}

	// Parse property identifier
	propID, err := parsePropertyIdentifier(writeProperty)
	if err != nil {
		return fmt.Errorf("invalid property: %w", err)
	}

	// Parse value
	value, err := parseValue(writeValue)
	if err != nil {
		return fmt.Errorf("invalid value: %w", err)
	}

	req := bacnet.WritePropertyRequest{
		ObjectID:   objectID,
		PropertyID: propID,
		Value:      value,
	}
	if writePriority > 0 && writePriority <= 16 {
		p := uint8(writePriority)
		req.Priority = &p
	}
	if writeArrayIndex >= 0 {
		idx := uint32(writeArrayIndex)
		req.ArrayIndex = &idx
	}

	if err := device.WriteProperty(req); err != nil {
		return describeError(err)
	}

	current, err := device.ReadProperty(bacnet.ReadPropertyRequest{ObjectID: objectID, PropertyID: propID})
	if err != nil {
		return describeError(err)
	}

	fmt.Printf("Successfully wrote %s to %s.%s\n", formatValue(current), objectID.String(), propID.String())
	return nil
}

func parseValue(s string) (bacnet.PropertyValue, error) {
	s = strings.TrimSpace(s)
	lower := strings.ToLower(s)

	// Null
	if lower == "null" {
		return bacnet.Null(), nil
	}

	// Octet string
	if strings.HasPrefix(lower, "hex:") || strings.HasPrefix(lower, "text:") {
		b, err := parseOctets(s)
		if err != nil {
			return bacnet.PropertyValue{}, err
		}
		return bacnet.NewOctetString(b), nil
	}

	// Quoted string
	if len(s) >= 2 && ((strings.HasPrefix(s, "\"") && strings.HasSuffix(s, "\"")) ||
		(strings.HasPrefix(s, "'") && strings.HasSuffix(s, "'"))) {
		return bacnet.NewCharacterString(s[1 : len(s)-1]), nil
	}

	// Boolean
	switch lower {
	case "true", "active", "on":
		return bacnet.NewBoolean(true), nil
	case "false", "inactive", "off":
		return bacnet.NewBoolean(false), nil
	}

	// Try float
	if strings.Contains(s, ".") {
		if f, err := cast.ToFloat32E(s); err == nil {
			return bacnet.NewReal(f), nil
		}
	}

	// Try integer
	if i, err := cast.ToInt64E(s); err == nil {
		switch {
		case i < 0 && i >= math.MinInt32:
			return bacnet.NewSigned(int32(i)), nil
		case i >= 0 && i <= math.MaxUint32:
			return bacnet.NewUnsigned(uint32(i)), nil
		}
		return bacnet.PropertyValue{}, fmt.Errorf("integer out of range: %s", s)
	}

	// Default to string
	return bacnet.NewCharacterString(s), nil
}
