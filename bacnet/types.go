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

// Package bacnet provides the BACnet object property model: per-type
// property catalogs, typed property access and a device-level object
// directory that service handlers dispatch into.
package bacnet

import (
	"fmt"
	"strconv"
)

// MaxUnsegmentedAPDU is the largest APDU a device exchanges without segmentation.
const MaxUnsegmentedAPDU = 1024

// MaxInstance is the largest instance number that fits the 22-bit field
// of an encoded object identifier.
const MaxInstance = 0x3FFFFF

// PDU types used by the property codec
type PDUType uint8

const (
	PDUTypeConfirmedRequest PDUType = 0x00
	PDUTypeSimpleAck        PDUType = 0x20
	PDUTypeComplexAck       PDUType = 0x30
	PDUTypeError            PDUType = 0x50
)

// ConfirmedServiceChoice identifies the confirmed services that reach objects.
type ConfirmedServiceChoice uint8

const (
	ServiceSubscribeCOV          ConfirmedServiceChoice = 5
	ServiceReadProperty          ConfirmedServiceChoice = 12
	ServiceReadPropertyMultiple  ConfirmedServiceChoice = 14
	ServiceWriteProperty         ConfirmedServiceChoice = 15
	ServiceWritePropertyMultiple ConfirmedServiceChoice = 16
)

func (s ConfirmedServiceChoice) String() string {
	switch s {
	case ServiceSubscribeCOV:
		return "SubscribeCOV"
	case ServiceReadProperty:
		return "ReadProperty"
	case ServiceReadPropertyMultiple:
		return "ReadPropertyMultiple"
	case ServiceWriteProperty:
		return "WriteProperty"
	case ServiceWritePropertyMultiple:
		return "WritePropertyMultiple"
	}
	return fmt.Sprintf("Unknown(%d)", s)
}

// ObjectType represents BACnet object types
type ObjectType uint16

const (
	ObjectTypeAnalogInput          ObjectType = 0
	ObjectTypeAnalogOutput         ObjectType = 1
	ObjectTypeAnalogValue          ObjectType = 2
	ObjectTypeBinaryInput          ObjectType = 3
	ObjectTypeBinaryOutput         ObjectType = 4
	ObjectTypeBinaryValue          ObjectType = 5
	ObjectTypeCalendar             ObjectType = 6
	ObjectTypeDevice               ObjectType = 8
	ObjectTypeFile                 ObjectType = 10
	ObjectTypeMultiStateInput      ObjectType = 13
	ObjectTypeMultiStateOutput     ObjectType = 14
	ObjectTypeNotificationClass    ObjectType = 15
	ObjectTypeSchedule             ObjectType = 17
	ObjectTypeMultiStateValue      ObjectType = 19
	ObjectTypeTrendLog             ObjectType = 20
	ObjectTypeBitStringValue       ObjectType = 39
	ObjectTypeCharacterStringValue ObjectType = 40
	ObjectTypeDateValue            ObjectType = 42
	ObjectTypeDateTimeValue        ObjectType = 44
	ObjectTypeIntegerValue         ObjectType = 45
	ObjectTypeLargeAnalogValue     ObjectType = 46
	ObjectTypeOctetStringValue     ObjectType = 47
	ObjectTypePositiveIntegerValue ObjectType = 48
	ObjectTypeTimeValue            ObjectType = 50
	ObjectTypeNetworkPort          ObjectType = 56
)

var objectTypeNames = map[ObjectType]string{
	ObjectTypeAnalogInput:          "analog-input",
	ObjectTypeAnalogOutput:         "analog-output",
	ObjectTypeAnalogValue:          "analog-value",
	ObjectTypeBinaryInput:          "binary-input",
	ObjectTypeBinaryOutput:         "binary-output",
	ObjectTypeBinaryValue:          "binary-value",
	ObjectTypeCalendar:             "calendar",
	ObjectTypeDevice:               "device",
	ObjectTypeFile:                 "file",
	ObjectTypeMultiStateInput:      "multi-state-input",
	ObjectTypeMultiStateOutput:     "multi-state-output",
	ObjectTypeNotificationClass:    "notification-class",
	ObjectTypeSchedule:             "schedule",
	ObjectTypeMultiStateValue:      "multi-state-value",
	ObjectTypeTrendLog:             "trend-log",
	ObjectTypeBitStringValue:       "bitstring-value",
	ObjectTypeCharacterStringValue: "characterstring-value",
	ObjectTypeDateValue:            "date-value",
	ObjectTypeDateTimeValue:        "datetime-value",
	ObjectTypeIntegerValue:         "integer-value",
	ObjectTypeLargeAnalogValue:     "large-analog-value",
	ObjectTypeOctetStringValue:     "octetstring-value",
	ObjectTypePositiveIntegerValue: "positive-integer-value",
	ObjectTypeTimeValue:            "time-value",
	ObjectTypeNetworkPort:          "network-port",
}

var objectTypeAliases = map[string]ObjectType{
	"ai":  ObjectTypeAnalogInput,
	"ao":  ObjectTypeAnalogOutput,
	"av":  ObjectTypeAnalogValue,
	"bi":  ObjectTypeBinaryInput,
	"bo":  ObjectTypeBinaryOutput,
	"bv":  ObjectTypeBinaryValue,
	"dev": ObjectTypeDevice,
	"msi": ObjectTypeMultiStateInput,
	"mso": ObjectTypeMultiStateOutput,
	"msv": ObjectTypeMultiStateValue,
	"csv": ObjectTypeCharacterStringValue,
	"osv": ObjectTypeOctetStringValue,

	"octet-string-value": ObjectTypeOctetStringValue,
	"octetstring":        ObjectTypeOctetStringValue,
}

func (o ObjectType) String() string {
	if name, ok := objectTypeNames[o]; ok {
		return name
	}
	return fmt.Sprintf("vendor-specific(%d)", o)
}

// ParseObjectType parses a name, short alias or number to an ObjectType.
func ParseObjectType(s string) (ObjectType, bool) {
	if t, ok := objectTypeAliases[s]; ok {
		return t, true
	}
	for t, name := range objectTypeNames {
		if name == s {
			return t, true
		}
	}
	if n, err := strconv.ParseUint(s, 10, 10); err == nil {
		return ObjectType(n), true
	}
	return 0, false
}

// PropertyIdentifier represents BACnet property identifiers
type PropertyIdentifier uint32

const (
	PropertyAll               PropertyIdentifier = 8
	PropertyDescription       PropertyIdentifier = 28
	PropertyEventState        PropertyIdentifier = 36
	PropertyObjectIdentifier  PropertyIdentifier = 75
	PropertyObjectList        PropertyIdentifier = 76
	PropertyObjectName        PropertyIdentifier = 77
	PropertyObjectType        PropertyIdentifier = 79
	PropertyOptional          PropertyIdentifier = 80
	PropertyOutOfService      PropertyIdentifier = 81
	PropertyPresentValue      PropertyIdentifier = 85
	PropertyPriorityArray     PropertyIdentifier = 87
	PropertyReliability       PropertyIdentifier = 103
	PropertyRelinquishDefault PropertyIdentifier = 104
	PropertyRequired          PropertyIdentifier = 105
	PropertyStatusFlags       PropertyIdentifier = 111
	PropertyUnits             PropertyIdentifier = 117
	PropertyPropertyList      PropertyIdentifier = 371
)

var propertyNames = map[PropertyIdentifier]string{
	PropertyAll:               "all",
	PropertyDescription:       "description",
	PropertyEventState:        "event-state",
	PropertyObjectIdentifier:  "object-identifier",
	PropertyObjectList:        "object-list",
	PropertyObjectName:        "object-name",
	PropertyObjectType:        "object-type",
	PropertyOptional:          "optional",
	PropertyOutOfService:      "out-of-service",
	PropertyPresentValue:      "present-value",
	PropertyPriorityArray:     "priority-array",
	PropertyReliability:       "reliability",
	PropertyRelinquishDefault: "relinquish-default",
	PropertyRequired:          "required",
	PropertyStatusFlags:       "status-flags",
	PropertyUnits:             "units",
	PropertyPropertyList:      "property-list",
}

var propertyAliases = map[string]PropertyIdentifier{
	"oid":  PropertyObjectIdentifier,
	"name": PropertyObjectName,
	"type": PropertyObjectType,
	"pv":   PropertyPresentValue,
	"desc": PropertyDescription,
	"sf":   PropertyStatusFlags,
	"oos":  PropertyOutOfService,
	"pa":   PropertyPriorityArray,
	"rd":   PropertyRelinquishDefault,
}

func (p PropertyIdentifier) String() string {
	if name, ok := propertyNames[p]; ok {
		return name
	}
	return fmt.Sprintf("property(%d)", p)
}

// ParsePropertyIdentifier parses a name, short alias or number to a PropertyIdentifier.
func ParsePropertyIdentifier(s string) (PropertyIdentifier, bool) {
	if p, ok := propertyAliases[s]; ok {
		return p, true
	}
	for p, name := range propertyNames {
		if name == s {
			return p, true
		}
	}
	if n, err := strconv.ParseUint(s, 10, 22); err == nil {
		return PropertyIdentifier(n), true
	}
	return 0, false
}

// ObjectIdentifier represents a BACnet object identifier (type + instance)
type ObjectIdentifier struct {
	Type     ObjectType
	Instance uint32
}

// NewObjectIdentifier creates a new ObjectIdentifier
func NewObjectIdentifier(objectType ObjectType, instance uint32) ObjectIdentifier {
	return ObjectIdentifier{
		Type:     objectType,
		Instance: instance,
	}
}

// Encode packs the identifier into its 32-bit wire form.
func (o ObjectIdentifier) Encode() uint32 {
	return (uint32(o.Type) << 22) | (o.Instance & MaxInstance)
}

// DecodeObjectIdentifier unpacks a 32-bit wire value.
func DecodeObjectIdentifier(value uint32) ObjectIdentifier {
	return ObjectIdentifier{
		Type:     ObjectType((value >> 22) & 0x3FF),
		Instance: value & MaxInstance,
	}
}

// Less orders identifiers by type, then instance.
func (o ObjectIdentifier) Less(other ObjectIdentifier) bool {
	if o.Type != other.Type {
		return o.Type < other.Type
	}
	return o.Instance < other.Instance
}

func (o ObjectIdentifier) String() string {
	return fmt.Sprintf("%s:%d", o.Type.String(), o.Instance)
}

// Status flag bits as carried in the packed status byte.
const (
	StatusInAlarm      uint8 = 0x08
	StatusFault        uint8 = 0x04
	StatusOverridden   uint8 = 0x02
	StatusOutOfService uint8 = 0x01

	statusFlagsMask = StatusInAlarm | StatusFault | StatusOverridden | StatusOutOfService
)

// StatusFlags represents the BACnet status flags
type StatusFlags struct {
	InAlarm      bool `json:"in_alarm" yaml:"in_alarm" cbor:"in_alarm"`
	Fault        bool `json:"fault" yaml:"fault" cbor:"fault"`
	Overridden   bool `json:"overridden" yaml:"overridden" cbor:"overridden"`
	OutOfService bool `json:"out_of_service" yaml:"out_of_service" cbor:"out_of_service"`
}

// DecodeStatusFlags decodes a byte to StatusFlags. Reserved bits are ignored.
func DecodeStatusFlags(b byte) StatusFlags {
	return StatusFlags{
		InAlarm:      b&StatusInAlarm != 0,
		Fault:        b&StatusFault != 0,
		Overridden:   b&StatusOverridden != 0,
		OutOfService: b&StatusOutOfService != 0,
	}
}

// Encode packs the flags; every other bit is zero.
func (s StatusFlags) Encode() byte {
	var b byte
	if s.InAlarm {
		b |= StatusInAlarm
	}
	if s.Fault {
		b |= StatusFault
	}
	if s.Overridden {
		b |= StatusOverridden
	}
	if s.OutOfService {
		b |= StatusOutOfService
	}
	return b
}

func (s StatusFlags) String() string {
	return fmt.Sprintf("{in-alarm:%v, fault:%v, overridden:%v, out-of-service:%v}",
		s.InAlarm, s.Fault, s.Overridden, s.OutOfService)
}

// Tag types for BACnet encoding
type TagClass uint8

const (
	TagClassApplication TagClass = 0
	TagClassContext     TagClass = 1
)

// ApplicationTag is the BACnet application data type of a value.
type ApplicationTag uint8

const (
	TagNull            ApplicationTag = 0
	TagBoolean         ApplicationTag = 1
	TagUnsignedInt     ApplicationTag = 2
	TagSignedInt       ApplicationTag = 3
	TagReal            ApplicationTag = 4
	TagDouble          ApplicationTag = 5
	TagOctetString     ApplicationTag = 6
	TagCharacterString ApplicationTag = 7
	TagBitString       ApplicationTag = 8
	TagEnumerated      ApplicationTag = 9
	TagDate            ApplicationTag = 10
	TagTime            ApplicationTag = 11
	TagObjectID        ApplicationTag = 12
)

func (t ApplicationTag) String() string {
	names := [...]string{
		"null", "boolean", "unsigned", "signed", "real", "double",
		"octet-string", "character-string", "bit-string", "enumerated",
		"date", "time", "object-identifier",
	}
	if int(t) < len(names) {
		return names[t]
	}
	return fmt.Sprintf("tag(%d)", t)
}

// ReadPropertyRequest addresses one property of one object.
type ReadPropertyRequest struct {
	ObjectID   ObjectIdentifier
	PropertyID PropertyIdentifier
	ArrayIndex *uint32
}

// WritePropertyRequest carries a new value for one property of one object.
// Priority is accepted for wire compatibility; none of the supported
// object types are commandable, so it is ignored.
type WritePropertyRequest struct {
	ObjectID   ObjectIdentifier
	PropertyID PropertyIdentifier
	ArrayIndex *uint32
	Value      PropertyValue
	Priority   *uint8
}

// PropertyResult is one entry of a read-all-properties response.
type PropertyResult struct {
	ObjectID   ObjectIdentifier
	PropertyID PropertyIdentifier
	Value      PropertyValue
	Err        error
}
