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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOctetStringValue(t *testing.T) {
	obj := NewOctetStringValue(1, "test")

	assert.Equal(t, ObjectIdentifier{Type: ObjectTypeOctetStringValue, Instance: 1}, obj.Identifier())
	assert.Equal(t, "test", obj.ObjectName())
	assert.Equal(t, "", obj.Description())
	assert.Empty(t, obj.PresentValue())
	assert.Equal(t, uint8(0), obj.StatusFlagBits())

	inAlarm, fault, overridden, outOfService := obj.StatusFlags()
	assert.False(t, inAlarm)
	assert.False(t, fault)
	assert.False(t, overridden)
	assert.False(t, outOfService)
}

func TestOctetStringValueOptions(t *testing.T) {
	obj := NewOctetStringValue(7, "opt", WithDescription("serial buffer"))
	assert.Equal(t, "serial buffer", obj.Description())

	v, err := obj.GetProperty(PropertyDescription)
	require.NoError(t, err)
	assert.Equal(t, NewCharacterString("serial buffer"), v)

	obj.SetDescription("changed")
	assert.Equal(t, "changed", obj.Description())
}

// Scenario: set a small value, then try an oversize one.
func TestOctetStringValueOversizeKeepsValue(t *testing.T) {
	obj := NewOctetStringValue(1, "test")

	require.NoError(t, obj.SetPresentValue([]byte{1, 2, 3, 4}))
	assert.Equal(t, []byte{1, 2, 3, 4}, obj.PresentValue())

	err := obj.SetPresentValue(make([]byte, 901))
	var oversize *OversizeError
	require.True(t, errors.As(err, &oversize))
	assert.Equal(t, OversizeError{Len: 901, MaxLen: 900}, *oversize)
	assert.Equal(t, []byte{1, 2, 3, 4}, obj.PresentValue())
}

func TestOctetStringValuePresentValueRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		value []byte
	}{
		{name: "empty", value: []byte{}},
		{name: "one byte", value: []byte{0x00}},
		{name: "ascii", value: []byte("hello")},
		{name: "at bound", value: bytes.Repeat([]byte{0x5A}, MaxOctetStringSize)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj := NewOctetStringValue(1, "rt")
			require.NoError(t, obj.SetPresentValue(tt.value))
			assert.Equal(t, tt.value, obj.PresentValue())

			v, err := obj.GetProperty(PropertyPresentValue)
			require.NoError(t, err)
			assert.Equal(t, TagOctetString, v.Tag)
			got, ok := v.AsOctetString()
			require.True(t, ok)
			assert.Equal(t, tt.value, got)
		})
	}
}

func TestOctetStringValueNoAliasing(t *testing.T) {
	obj := NewOctetStringValue(1, "alias")
	in := []byte{1, 2, 3}
	require.NoError(t, obj.SetPresentValue(in))

	in[0] = 0xFF
	assert.Equal(t, []byte{1, 2, 3}, obj.PresentValue())

	out := obj.PresentValue()
	out[1] = 0xFF
	assert.Equal(t, []byte{1, 2, 3}, obj.PresentValue())

	v, err := obj.GetProperty(PropertyPresentValue)
	require.NoError(t, err)
	v.Value.([]byte)[2] = 0xFF
	assert.Equal(t, []byte{1, 2, 3}, obj.PresentValue())
}

func TestOctetStringValueStatusFlags(t *testing.T) {
	obj := NewOctetStringValue(1, "flags")

	for bits := uint8(0); bits < 16; bits++ {
		inAlarm := bits&StatusInAlarm != 0
		fault := bits&StatusFault != 0
		overridden := bits&StatusOverridden != 0
		outOfService := bits&StatusOutOfService != 0

		obj.SetStatusFlags(inAlarm, fault, overridden, outOfService)

		a, f, o, s := obj.StatusFlags()
		assert.Equal(t, inAlarm, a, "bits %04b", bits)
		assert.Equal(t, fault, f, "bits %04b", bits)
		assert.Equal(t, overridden, o, "bits %04b", bits)
		assert.Equal(t, outOfService, s, "bits %04b", bits)
		assert.Equal(t, bits, obj.StatusFlagBits())
	}
}

func TestOctetStringValueStatusFlagsIndependentOfValue(t *testing.T) {
	obj := NewOctetStringValue(1, "indep")
	obj.SetStatusFlags(true, false, true, false)

	require.NoError(t, obj.SetPresentValue([]byte{9, 9}))
	assert.Equal(t, StatusInAlarm|StatusOverridden, obj.StatusFlagBits())

	obj.SetStatusFlags(false, true, false, false)
	assert.Equal(t, []byte{9, 9}, obj.PresentValue())
}

func TestOctetStringValueGetProperty(t *testing.T) {
	obj := NewOctetStringValue(3, "gp")
	require.NoError(t, obj.SetPresentValue([]byte{0xCA, 0xFE}))

	tests := []struct {
		name string
		id   PropertyIdentifier
		want PropertyValue
	}{
		{
			name: "object identifier",
			id:   PropertyObjectIdentifier,
			want: NewObjectIdentifierValue(NewObjectIdentifier(ObjectTypeOctetStringValue, 3)),
		},
		{name: "object name", id: PropertyObjectName, want: NewCharacterString("gp")},
		{name: "object type", id: PropertyObjectType, want: NewEnumerated(47)},
		{name: "present value", id: PropertyPresentValue, want: NewOctetString([]byte{0xCA, 0xFE})},
		{name: "description", id: PropertyDescription, want: NewCharacterString("")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := obj.GetProperty(tt.id)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %s, got %s", tt.want, got)
		})
	}

	t.Run("unknown", func(t *testing.T) {
		for _, id := range []PropertyIdentifier{PropertyUnits, PropertyStatusFlags, PropertyPriorityArray, 9999} {
			_, err := obj.GetProperty(id)
			assert.ErrorIs(t, err, ErrUnknownProperty, "property %s", id)
		}
	})
}

func TestOctetStringValuePropertyList(t *testing.T) {
	obj := NewOctetStringValue(1, "pl")
	want := []PropertyIdentifier{
		PropertyObjectIdentifier,
		PropertyObjectName,
		PropertyObjectType,
		PropertyPresentValue,
	}

	assert.Equal(t, want, obj.PropertyList())

	require.NoError(t, obj.SetPresentValue([]byte{1}))
	obj.SetStatusFlags(true, true, true, true)
	assert.Equal(t, want, obj.PropertyList())

	for _, id := range obj.PropertyList() {
		_, err := obj.GetProperty(id)
		assert.NoError(t, err, "listed property %s must be readable", id)
	}
}

func TestOctetStringValueSetProperty(t *testing.T) {
	tests := []struct {
		name    string
		id      PropertyIdentifier
		value   PropertyValue
		wantErr error
	}{
		{name: "rename", id: PropertyObjectName, value: NewCharacterString("renamed")},
		{name: "rename wrong type", id: PropertyObjectName, value: NewUnsigned(1), wantErr: ErrInvalidPropertyType},
		{name: "present value read-only", id: PropertyPresentValue, value: NewOctetString([]byte{1}), wantErr: ErrPropertyNotWritable},
		{name: "identifier read-only", id: PropertyObjectIdentifier, value: NewObjectIdentifierValue(NewObjectIdentifier(ObjectTypeOctetStringValue, 2)), wantErr: ErrPropertyNotWritable},
		{name: "type read-only", id: PropertyObjectType, value: NewEnumerated(47), wantErr: ErrPropertyNotWritable},
		{name: "description read-only", id: PropertyDescription, value: NewCharacterString("x"), wantErr: ErrPropertyNotWritable},
		{name: "outside catalog", id: PropertyUnits, value: NewEnumerated(95), wantErr: ErrPropertyNotWritable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj := NewOctetStringValue(1, "orig")
			require.NoError(t, obj.SetPresentValue([]byte{1, 2}))
			before := obj.Snapshot()

			err := obj.SetProperty(tt.id, tt.value)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, before, obj.Snapshot())
				return
			}
			require.NoError(t, err)

			got, err := obj.GetProperty(tt.id)
			require.NoError(t, err)
			assert.True(t, tt.value.Equal(got))
		})
	}
}

// A correctly typed write succeeds exactly when the property is reported writable.
func TestOctetStringValueWritableMatchesSet(t *testing.T) {
	typed := map[PropertyIdentifier]PropertyValue{
		PropertyObjectIdentifier: NewObjectIdentifierValue(NewObjectIdentifier(ObjectTypeOctetStringValue, 1)),
		PropertyObjectName:       NewCharacterString("n"),
		PropertyObjectType:       NewEnumerated(uint32(ObjectTypeOctetStringValue)),
		PropertyPresentValue:     NewOctetString([]byte{1}),
		PropertyDescription:      NewCharacterString("d"),
		PropertyStatusFlags:      NewUnsigned(0),
	}

	builds := map[string]func() *OctetStringValue{
		"default": func() *OctetStringValue { return NewOctetStringValue(1, "w") },
		"oos writes, in service": func() *OctetStringValue {
			return NewOctetStringValue(1, "w", WithOutOfServiceWrites())
		},
		"oos writes, out of service": func() *OctetStringValue {
			obj := NewOctetStringValue(1, "w", WithOutOfServiceWrites())
			obj.SetStatusFlags(false, false, false, true)
			return obj
		},
	}

	for name, build := range builds {
		t.Run(name, func(t *testing.T) {
			for id, value := range typed {
				obj := build()
				writable := obj.IsPropertyWritable(id)
				err := obj.SetProperty(id, value)
				if writable {
					assert.NoError(t, err, "property %s", id)
				} else {
					assert.ErrorIs(t, err, ErrPropertyNotWritable, "property %s", id)
				}
			}
		})
	}
}

func TestOctetStringValueOutOfServiceWrites(t *testing.T) {
	obj := NewOctetStringValue(1, "oos", WithOutOfServiceWrites())
	assert.False(t, obj.IsPropertyWritable(PropertyPresentValue))

	obj.SetStatusFlags(false, false, false, true)
	require.True(t, obj.IsPropertyWritable(PropertyPresentValue))
	require.NoError(t, obj.SetProperty(PropertyPresentValue, NewOctetString([]byte{7, 8})))
	assert.Equal(t, []byte{7, 8}, obj.PresentValue())

	t.Run("oversize through property write", func(t *testing.T) {
		err := obj.SetProperty(PropertyPresentValue, NewOctetString(make([]byte, MaxOctetStringSize+1)))
		assert.ErrorIs(t, err, ErrOversizeData)
		assert.Equal(t, []byte{7, 8}, obj.PresentValue())
	})

	t.Run("wrong type", func(t *testing.T) {
		err := obj.SetProperty(PropertyPresentValue, NewCharacterString("x"))
		assert.ErrorIs(t, err, ErrInvalidPropertyType)
	})

	obj.SetStatusFlags(false, false, false, false)
	assert.False(t, obj.IsPropertyWritable(PropertyPresentValue))
	assert.ErrorIs(t, obj.SetProperty(PropertyPresentValue, NewOctetString([]byte{1})), ErrPropertyNotWritable)
	assert.Equal(t, []byte{7, 8}, obj.PresentValue())
}

func TestOctetStringValueSnapshot(t *testing.T) {
	obj := NewOctetStringValue(4, "snap", WithDescription("d"))
	require.NoError(t, obj.SetPresentValue([]byte{1}))
	obj.SetStatusFlags(false, true, false, false)

	snap := obj.Snapshot()
	assert.Equal(t, "octetstring-value:4", snap.Object)
	assert.Equal(t, "snap", snap.ObjectName)
	assert.Equal(t, "d", snap.Description)
	assert.Equal(t, []byte{1}, snap.PresentValue)
	assert.Equal(t, StatusFlags{Fault: true}, snap.StatusFlags)

	snap.PresentValue[0] = 0xFF
	assert.Equal(t, []byte{1}, obj.PresentValue())
}

func TestObjectName(t *testing.T) {
	name, ok := ObjectName(NewOctetStringValue(1, "via-interface"))
	assert.True(t, ok)
	assert.Equal(t, "via-interface", name)
}

func TestAccessString(t *testing.T) {
	assert.Equal(t, "R", AccessRead.String())
	assert.Equal(t, "RW", AccessReadWrite.String())
	assert.Equal(t, "RO", (AccessRead | AccessWriteOutOfService).String())
	assert.Equal(t, "-", Access(0).String())
}
