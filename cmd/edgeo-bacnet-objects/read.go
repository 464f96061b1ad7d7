package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/edgeo-scada/bacnet-objects/bacnet"
)

var (
	readObject     string
	readProperty   string
	readArrayIndex int
)

var readCmd = &cobra.Command{
	Use:   "read",
	Short: "Read a property from a BACnet object",
	Long: `Read serves a ReadProperty request against the configured device.

Object types can be specified by name or number:
  octetstring-value, osv, 47

Properties can be specified by name or number:
  object-identifier, oid, 75
  object-name, name, 77
  object-type, type, 79
  present-value, pv, 85
  description, desc, 28

Use "all" to read every property in the object's property list.

Examples:
  # Read present value of octet string value 1
  edgeo-bacnet-objects read -O octetstring-value:1 -P present-value

  # Read using short names
  edgeo-bacnet-objects read -O osv:1 -P pv

  # Read every listed property as JSON
  edgeo-bacnet-objects read -O osv:1 -P all -o json`,

	RunE: runRead,
}

func init() {
	readCmd.Flags().StringVarP(&readObject, "object", "O", "", "Object type and instance (e.g., octetstring-value:1 or osv:1)")
	readCmd.Flags().StringVarP(&readProperty, "property", "P", "present-value", "Property identifier")
	readCmd.Flags().IntVar(&readArrayIndex, "index", -1, "Array index (-1 for no index)")

	readCmd.MarkFlagRequired("object")
}

func runRead(cmd *cobra.Command, args []string) error {
	// Parse object identifier
	objectID, err := parseObjectIdentifier(readObject)
	if err != nil {
		return fmt.Errorf("invalid object: %w", err)
	}

	// Parse property identifier
	propID, err := parsePropertyIdentifier(readProperty)
	if err != nil {
		return fmt.Errorf("invalid property: %w", err)
	}

	out := NewFormatter(outputFmt)

	if propID == bacnet.PropertyAll {
		results, err := device.ReadPropertyAll(objectID)
		if err != nil {
			return describeError(err)
		}
		return outputResults(out, results)
	}

	req := bacnet.ReadPropertyRequest{ObjectID: objectID, PropertyID: propID}
	if readArrayIndex >= 0 {
		idx := uint32(readArrayIndex)
		req.ArrayIndex = &idx
	}

	value, err := device.ReadProperty(req)
	if err != nil {
		return describeError(err)
	}

	return outputResults(out, []bacnet.PropertyResult{{
		ObjectID:   objectID,
		PropertyID: propID,
		Value:      value,
	}})
}

// propertyDoc is one property result in structured output
type propertyDoc struct {
	Object   string      `json:"object" yaml:"object" cbor:"object"`
	Property string      `json:"property" yaml:"property" cbor:"property"`
	Type     string      `json:"type,omitempty" yaml:"type,omitempty" cbor:"type,omitempty"`
	Value    interface{} `json:"value,omitempty" yaml:"value,omitempty" cbor:"value,omitempty"`
	Error    string      `json:"error,omitempty" yaml:"error,omitempty" cbor:"error,omitempty"`
}

func outputResults(out *Formatter, results []bacnet.PropertyResult) error {
	docs := make([]propertyDoc, 0, len(results))
	for _, r := range results {
		doc := propertyDoc{
			Object:   r.ObjectID.String(),
			Property: r.PropertyID.String(),
		}
		if r.Err != nil {
			doc.Error = bacnet.ToBACnetError(r.Err).Error()
		} else {
			doc.Type = r.Value.Tag.String()
			doc.Value = documentValue(r.Value, out.Format() == FormatCBOR)
		}
		docs = append(docs, doc)
	}

	var doc interface{} = docs
	if len(docs) == 1 {
		doc = docs[0]
	}
	if ok, err := out.Encode(doc); ok {
		return err
	}

	rows := make([][]string, 0, len(results))
	for _, r := range results {
		value := formatValue(r.Value)
		if r.Err != nil {
			value = "error: " + bacnet.ToBACnetError(r.Err).Error()
		}
		rows = append(rows, []string{r.ObjectID.String(), r.PropertyID.String(), value})
	}

	switch out.Format() {
	case FormatCSV:
		return out.PrintCSV([]string{"object", "property", "value"}, rows)
	case FormatRaw:
		for _, row := range rows {
			out.Println(row[2])
		}
	default:
		if len(rows) == 1 {
			out.Printf("Object:   %s\n", rows[0][0])
			out.Printf("Property: %s\n", rows[0][1])
			out.Printf("Value:    %s\n", rows[0][2])
			return nil
		}
		out.PrintTable([]string{"OBJECT", "PROPERTY", "VALUE"}, rows)
	}
	return nil
}

// describeError annotates an error with the BACnet class and code a
// server would answer with.
func describeError(err error) error {
	be := bacnet.ToBACnetError(err)
	return fmt.Errorf("%w [%s/%s]", err, be.Class, be.Code)
}

func parseObjectIdentifier(s string) (bacnet.ObjectIdentifier, error) {
	// Format: type:instance (e.g., octetstring-value:1 or osv:1 or 47:1)
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return bacnet.ObjectIdentifier{}, fmt.Errorf("expected format type:instance (e.g., octetstring-value:1)")
	}

	// Parse instance
	instance, err := strconv.ParseUint(parts[1], 10, 22)
	if err != nil {
		return bacnet.ObjectIdentifier{}, fmt.Errorf("invalid instance number: %s", parts[1])
	}

	objType, ok := bacnet.ParseObjectType(strings.ToLower(parts[0]))
	if !ok {
		return bacnet.ObjectIdentifier{}, fmt.Errorf("unknown object type: %s", parts[0])
	}

	return bacnet.NewObjectIdentifier(objType, uint32(instance)), nil
}

func parsePropertyIdentifier(s string) (bacnet.PropertyIdentifier, error) {
	prop, ok := bacnet.ParsePropertyIdentifier(strings.ToLower(s))
	if !ok {
		return 0, fmt.Errorf("unknown property: %s", s)
	}
	return prop, nil
}
