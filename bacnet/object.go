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

// Object is the property-access contract shared by every BACnet object type.
// Service handlers dispatch on the identifier and never branch on the
// concrete type.
//
// Implementations are not safe for concurrent use; Device serializes
// access per object.
type Object interface {
	// Identifier returns the immutable object identifier.
	Identifier() ObjectIdentifier

	// GetProperty returns the value of a property in the object's catalog,
	// or ErrUnknownProperty.
	GetProperty(id PropertyIdentifier) (PropertyValue, error)

	// SetProperty validates and applies a write. On error the object is
	// left unchanged.
	SetProperty(id PropertyIdentifier, value PropertyValue) error

	// IsPropertyWritable reports whether SetProperty would accept a
	// correctly typed value for id in the object's current state.
	IsPropertyWritable(id PropertyIdentifier) bool

	// PropertyList returns the properties exposed by the object type in a
	// fixed order.
	PropertyList() []PropertyIdentifier
}

// Access flags for catalog entries.
type Access uint8

const (
	// AccessRead allows reading the property.
	AccessRead Access = 1 << iota

	// AccessWrite allows writing the property unconditionally.
	AccessWrite

	// AccessWriteOutOfService allows writing while out-of-service is set,
	// on objects that opted in to out-of-service writes.
	AccessWriteOutOfService

	// AccessReadWrite is read and write.
	AccessReadWrite = AccessRead | AccessWrite
)

// CanRead returns true if reading is allowed.
func (a Access) CanRead() bool { return a&AccessRead != 0 }

// CanWrite returns true if writing is allowed regardless of state.
func (a Access) CanWrite() bool { return a&AccessWrite != 0 }

func (a Access) String() string {
	var s string
	if a.CanRead() {
		s += "R"
	}
	if a.CanWrite() {
		s += "W"
	}
	if a&AccessWriteOutOfService != 0 {
		s += "O"
	}
	if s == "" {
		return "-"
	}
	return s
}

// propertySpec is one catalog entry of an object type.
type propertySpec struct {
	ID     PropertyIdentifier
	Tag    ApplicationTag
	Access Access

	// Listed entries appear in PropertyList, in table order.
	Listed bool
}

// propertyTable is the fixed catalog of one object type.
type propertyTable []propertySpec

func (t propertyTable) lookup(id PropertyIdentifier) (propertySpec, bool) {
	for _, spec := range t {
		if spec.ID == id {
			return spec, true
		}
	}
	return propertySpec{}, false
}

func (t propertyTable) list() []PropertyIdentifier {
	ids := make([]PropertyIdentifier, 0, len(t))
	for _, spec := range t {
		if spec.Listed {
			ids = append(ids, spec.ID)
		}
	}
	return ids
}

// ObjectSnapshot is a copy of an object's state, detached from the object.
type ObjectSnapshot struct {
	ObjectID     ObjectIdentifier `json:"-" yaml:"-" cbor:"-"`
	Object       string           `json:"object" yaml:"object" cbor:"object"`
	ObjectName   string           `json:"object_name" yaml:"object_name" cbor:"object_name"`
	Description  string           `json:"description,omitempty" yaml:"description,omitempty" cbor:"description,omitempty"`
	PresentValue []byte           `json:"present_value" yaml:"present_value" cbor:"present_value"`
	StatusFlags  StatusFlags      `json:"status_flags" yaml:"status_flags" cbor:"status_flags"`
}

// Snapshotter is implemented by objects that can export their state.
type Snapshotter interface {
	Snapshot() ObjectSnapshot
}

// ObjectName reads the name of any object through its property interface.
func ObjectName(obj Object) (string, bool) {
	v, err := obj.GetProperty(PropertyObjectName)
	if err != nil {
		return "", false
	}
	return v.AsCharacterString()
}
