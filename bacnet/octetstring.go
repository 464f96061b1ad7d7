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

package bacnet

var octetStringValueProperties = propertyTable{
	{ID: PropertyObjectIdentifier, Tag: TagObjectID, Access: AccessRead, Listed: true},
	{ID: PropertyObjectName, Tag: TagCharacterString, Access: AccessReadWrite, Listed: true},
	{ID: PropertyObjectType, Tag: TagEnumerated, Access: AccessRead, Listed: true},
	{ID: PropertyPresentValue, Tag: TagOctetString, Access: AccessRead | AccessWriteOutOfService, Listed: true},
	{ID: PropertyDescription, Tag: TagCharacterString, Access: AccessRead},
}

// OctetStringValue is the Octet String Value object (object type 47).
type OctetStringValue struct {
	identifier   ObjectIdentifier
	objectName   string
	description  string
	presentValue []byte
	statusFlags  uint8

	outOfServiceWrites bool
}

var _ Object = (*OctetStringValue)(nil)

// NewOctetStringValue creates an Octet String Value object with an empty
// present value and all status flags cleared.
func NewOctetStringValue(instance uint32, objectName string, opts ...ObjectOption) *OctetStringValue {
	options := defaultObjectOptions()
	for _, opt := range opts {
		opt(options)
	}

	return &OctetStringValue{
		identifier:         NewObjectIdentifier(ObjectTypeOctetStringValue, instance),
		objectName:         objectName,
		description:        options.description,
		presentValue:       []byte{},
		outOfServiceWrites: options.outOfServiceWrites,
	}
}

// Identifier returns the object identifier
func (o *OctetStringValue) Identifier() ObjectIdentifier {
	return o.identifier
}

// ObjectName returns the object name
func (o *OctetStringValue) ObjectName() string {
	return o.objectName
}

// Description returns the description
func (o *OctetStringValue) Description() string {
	return o.description
}

// SetDescription replaces the description
func (o *OctetStringValue) SetDescription(description string) {
	o.description = description
}

// PresentValue returns a copy of the present value
func (o *OctetStringValue) PresentValue() []byte {
	return cloneBytes(o.presentValue)
}

// SetPresentValue replaces the present value. Values longer than
// MaxOctetStringSize fail with an *OversizeError and the previous value
// is kept.
func (o *OctetStringValue) SetPresentValue(value []byte) error {
	buf, err := NewBoundedBuffer(value)
	if err != nil {
		return err
	}
	o.presentValue = cloneBytes(buf.take())
	return nil
}

// StatusFlags unpacks the status byte.
func (o *OctetStringValue) StatusFlags() (inAlarm, fault, overridden, outOfService bool) {
	f := DecodeStatusFlags(o.statusFlags)
	return f.InAlarm, f.Fault, f.Overridden, f.OutOfService
}

// SetStatusFlags overwrites all four flags; reserved bits end up zero.
func (o *OctetStringValue) SetStatusFlags(inAlarm, fault, overridden, outOfService bool) {
	o.statusFlags = StatusFlags{
		InAlarm:      inAlarm,
		Fault:        fault,
		Overridden:   overridden,
		OutOfService: outOfService,
	}.Encode()
}

// StatusFlagBits returns the packed status byte.
func (o *OctetStringValue) StatusFlagBits() uint8 {
	return o.statusFlags
}

// GetProperty implements Object.
func (o *OctetStringValue) GetProperty(id PropertyIdentifier) (PropertyValue, error) {
	switch id {
	case PropertyObjectIdentifier:
		return NewObjectIdentifierValue(o.identifier), nil
	case PropertyObjectName:
		return NewCharacterString(o.objectName), nil
	case PropertyDescription:
		return NewCharacterString(o.description), nil
	case PropertyObjectType:
		return NewEnumerated(uint32(ObjectTypeOctetStringValue)), nil
	case PropertyPresentValue:
		return NewOctetString(o.presentValue), nil
	}
	return PropertyValue{}, ErrUnknownProperty
}

// SetProperty implements Object. Properties outside the catalog are
// reported as not writable.
func (o *OctetStringValue) SetProperty(id PropertyIdentifier, value PropertyValue) error {
	spec, ok := octetStringValueProperties.lookup(id)
	if !ok || !o.writable(spec) {
		return ErrPropertyNotWritable
	}
	if value.Tag != spec.Tag {
		return ErrInvalidPropertyType
	}

	switch id {
	case PropertyObjectName:
		name, ok := value.AsCharacterString()
		if !ok {
			return ErrInvalidPropertyType
		}
		o.objectName = name
		return nil
	case PropertyPresentValue:
		data, ok := value.Value.([]byte)
		if !ok {
			return ErrInvalidPropertyType
		}
		return o.SetPresentValue(data)
	}
	return ErrPropertyNotWritable
}

// IsPropertyWritable implements Object.
func (o *OctetStringValue) IsPropertyWritable(id PropertyIdentifier) bool {
	spec, ok := octetStringValueProperties.lookup(id)
	return ok && o.writable(spec)
}

// PropertyList implements Object.
func (o *OctetStringValue) PropertyList() []PropertyIdentifier {
	return octetStringValueProperties.list()
}

// Snapshot implements Snapshotter.
func (o *OctetStringValue) Snapshot() ObjectSnapshot {
	return ObjectSnapshot{
		ObjectID:     o.identifier,
		Object:       o.identifier.String(),
		ObjectName:   o.objectName,
		Description:  o.description,
		PresentValue: cloneBytes(o.presentValue),
		StatusFlags:  DecodeStatusFlags(o.statusFlags),
	}
}

func (o *OctetStringValue) writable(spec propertySpec) bool {
	if spec.Access.CanWrite() {
		return true
	}
	return spec.Access&AccessWriteOutOfService != 0 &&
		o.outOfServiceWrites &&
		o.statusFlags&StatusOutOfService != 0
}
