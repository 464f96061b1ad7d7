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

import (
	"bytes"
	"fmt"
	"reflect"
)

// PropertyValue is a property value tagged with its application data type.
//
// The Go type held in Value depends on Tag:
//
//	TagNull            nil
//	TagBoolean         bool
//	TagUnsignedInt     uint32
//	TagSignedInt       int32
//	TagReal            float32
//	TagDouble          float64
//	TagOctetString     []byte
//	TagCharacterString string
//	TagEnumerated      uint32
//	TagObjectID        ObjectIdentifier
type PropertyValue struct {
	Tag   ApplicationTag
	Value any
}

// Null returns the null value.
func Null() PropertyValue {
	return PropertyValue{Tag: TagNull}
}

// NewBoolean wraps a boolean.
func NewBoolean(v bool) PropertyValue {
	return PropertyValue{Tag: TagBoolean, Value: v}
}

// NewUnsigned wraps an unsigned integer.
func NewUnsigned(v uint32) PropertyValue {
	return PropertyValue{Tag: TagUnsignedInt, Value: v}
}

// NewSigned wraps a signed integer.
func NewSigned(v int32) PropertyValue {
	return PropertyValue{Tag: TagSignedInt, Value: v}
}

// NewReal wraps a single precision float.
func NewReal(v float32) PropertyValue {
	return PropertyValue{Tag: TagReal, Value: v}
}

// NewDouble wraps a double precision float.
func NewDouble(v float64) PropertyValue {
	return PropertyValue{Tag: TagDouble, Value: v}
}

// NewOctetString wraps a copy of b.
func NewOctetString(b []byte) PropertyValue {
	return PropertyValue{Tag: TagOctetString, Value: cloneBytes(b)}
}

// NewCharacterString wraps a string.
func NewCharacterString(s string) PropertyValue {
	return PropertyValue{Tag: TagCharacterString, Value: s}
}

// NewEnumerated wraps an enumerated value.
func NewEnumerated(v uint32) PropertyValue {
	return PropertyValue{Tag: TagEnumerated, Value: v}
}

// NewObjectIdentifierValue wraps an object identifier.
func NewObjectIdentifierValue(oid ObjectIdentifier) PropertyValue {
	return PropertyValue{Tag: TagObjectID, Value: oid}
}

// AsCharacterString returns the string if the value is a character string.
func (v PropertyValue) AsCharacterString() (string, bool) {
	if v.Tag != TagCharacterString {
		return "", false
	}
	s, ok := v.Value.(string)
	return s, ok
}

// AsOctetString returns a copy of the bytes if the value is an octet string.
func (v PropertyValue) AsOctetString() ([]byte, bool) {
	if v.Tag != TagOctetString {
		return nil, false
	}
	b, ok := v.Value.([]byte)
	if !ok {
		return nil, false
	}
	return cloneBytes(b), true
}

// AsEnumerated returns the enumeration if the value is enumerated.
func (v PropertyValue) AsEnumerated() (uint32, bool) {
	if v.Tag != TagEnumerated {
		return 0, false
	}
	n, ok := v.Value.(uint32)
	return n, ok
}

// AsObjectIdentifier returns the identifier if the value is an object identifier.
func (v PropertyValue) AsObjectIdentifier() (ObjectIdentifier, bool) {
	if v.Tag != TagObjectID {
		return ObjectIdentifier{}, false
	}
	oid, ok := v.Value.(ObjectIdentifier)
	return oid, ok
}

// Equal reports whether both values carry the same tag and payload.
func (v PropertyValue) Equal(other PropertyValue) bool {
	if v.Tag != other.Tag {
		return false
	}
	if v.Tag == TagOctetString {
		a, aok := v.Value.([]byte)
		b, bok := other.Value.([]byte)
		return aok && bok && bytes.Equal(a, b)
	}
	return reflect.DeepEqual(v.Value, other.Value)
}

func (v PropertyValue) String() string {
	switch v.Tag {
	case TagNull:
		return "null"
	case TagOctetString:
		if b, ok := v.Value.([]byte); ok {
			return fmt.Sprintf("%x", b)
		}
	case TagCharacterString:
		if s, ok := v.Value.(string); ok {
			return s
		}
	case TagReal:
		if f, ok := v.Value.(float32); ok {
			return fmt.Sprintf("%.4f", f)
		}
	case TagDouble:
		if f, ok := v.Value.(float64); ok {
			return fmt.Sprintf("%.6f", f)
		}
	}
	return fmt.Sprintf("%v", v.Value)
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
