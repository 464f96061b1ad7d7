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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeTag(t *testing.T) {
	tests := []struct {
		name   string
		tagNum uint8
		class  TagClass
		length int
		want   []byte
	}{
		{name: "short application", tagNum: 2, class: TagClassApplication, length: 1, want: []byte{0x21}},
		{name: "short context", tagNum: 1, class: TagClassContext, length: 4, want: []byte{0x1C}},
		{name: "one byte length", tagNum: 6, class: TagClassApplication, length: 10, want: []byte{0x65, 10}},
		{name: "two byte length", tagNum: 6, class: TagClassApplication, length: 900, want: []byte{0x65, 254, 0x03, 0x84}},
		{name: "extended tag number", tagNum: 20, class: TagClassContext, length: 2, want: []byte{0xFA, 20}},
		{name: "extended tag and length", tagNum: 20, class: TagClassContext, length: 6, want: []byte{0xFD, 20, 6}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EncodeTag(tt.tagNum, tt.class, tt.length)
			assert.Equal(t, tt.want, got)

			tagNum, class, length, headerLen, err := DecodeTagNumber(got)
			require.NoError(t, err)
			assert.Equal(t, tt.tagNum, tagNum)
			assert.Equal(t, tt.class, class)
			assert.Equal(t, tt.length, length)
			assert.Equal(t, len(got), headerLen)
		})
	}
}

func TestDecodeTagNumberOpeningClosing(t *testing.T) {
	_, class, length, headerLen, err := DecodeTagNumber(EncodeOpeningTag(3))
	require.NoError(t, err)
	assert.Equal(t, TagClassContext, class)
	assert.Equal(t, tagLengthOpening, length)
	assert.Equal(t, 1, headerLen)

	_, _, length, _, err = DecodeTagNumber(EncodeClosingTag(3))
	require.NoError(t, err)
	assert.Equal(t, tagLengthClosing, length)
}

func TestDecodeTagNumberTruncated(t *testing.T) {
	for _, data := range [][]byte{
		nil,
		{0xF9},
		{0x65},
		{0x65, 254, 0x03},
		{0x65, 255, 0, 0},
	} {
		_, _, _, _, err := DecodeTagNumber(data)
		assert.ErrorIs(t, err, ErrInvalidTag, "data % x", data)
	}
}

func TestApplicationValueRoundTrip(t *testing.T) {
	values := []PropertyValue{
		Null(),
		NewBoolean(true),
		NewBoolean(false),
		NewUnsigned(0),
		NewUnsigned(300),
		NewUnsigned(0xFFFFFFFF),
		NewSigned(-1),
		NewSigned(-70000),
		NewSigned(127),
		NewReal(21.5),
		NewDouble(-3.25),
		NewOctetString(nil),
		NewOctetString([]byte{0xDE, 0xAD, 0xBE, 0xEF}),
		NewOctetString(bytes.Repeat([]byte{0x01}, MaxOctetStringSize)),
		NewCharacterString(""),
		NewCharacterString("Zähler"),
		NewEnumerated(47),
		NewObjectIdentifierValue(NewObjectIdentifier(ObjectTypeOctetStringValue, MaxInstance)),
	}

	for _, v := range values {
		t.Run(v.Tag.String(), func(t *testing.T) {
			encoded, err := EncodeApplicationValue(v)
			require.NoError(t, err)

			decoded, n, err := DecodeApplicationValue(encoded)
			require.NoError(t, err)
			assert.Equal(t, len(encoded), n)
			assert.True(t, v.Equal(decoded), "want %s, got %s", v, decoded)
		})
	}
}

func TestEncodeApplicationValueKnownBytes(t *testing.T) {
	tests := []struct {
		name  string
		value PropertyValue
		want  []byte
	}{
		{name: "octet string", value: NewOctetString([]byte{1, 2, 3, 4}), want: []byte{0x64, 1, 2, 3, 4}},
		{name: "character string", value: NewCharacterString("ab"), want: []byte{0x73, 0x00, 'a', 'b'}},
		{name: "enumerated", value: NewEnumerated(47), want: []byte{0x91, 47}},
		{name: "object identifier", value: NewObjectIdentifierValue(NewObjectIdentifier(ObjectTypeOctetStringValue, 1)), want: []byte{0xC4, 0x0B, 0xC0, 0x00, 0x01}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EncodeApplicationValue(tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncodeApplicationValueTypeMismatch(t *testing.T) {
	_, err := EncodeApplicationValue(PropertyValue{Tag: TagOctetString, Value: "not bytes"})
	assert.ErrorIs(t, err, ErrInvalidPropertyType)

	_, err = EncodeApplicationValue(PropertyValue{Tag: TagBitString, Value: []byte{0}})
	assert.ErrorIs(t, err, ErrInvalidTag)
}

func TestDecodeApplicationValueErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{name: "empty", data: nil},
		{name: "context tag", data: []byte{0x09, 0x01}},
		{name: "truncated octet string", data: []byte{0x64, 1, 2}},
		{name: "unsigned too long", data: []byte{0x25, 5, 1, 2, 3, 4, 5}},
		{name: "real wrong length", data: []byte{0x42, 0, 0}},
		{name: "character set", data: []byte{0x73, 0x04, 'a', 'b'}},
		{name: "invalid utf-8", data: []byte{0x72, 0x00, 0xFF}},
		{name: "empty character string", data: []byte{0x70}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := DecodeApplicationValue(tt.data)
			assert.ErrorIs(t, err, ErrInvalidTag)
		})
	}
}

func TestReadPropertyAckLayout(t *testing.T) {
	req := ReadPropertyRequest{
		ObjectID:   NewObjectIdentifier(ObjectTypeOctetStringValue, 1),
		PropertyID: PropertyPresentValue,
	}

	payload, err := EncodeReadPropertyAckPayload(req, NewOctetString([]byte{1, 2, 3, 4}))
	require.NoError(t, err)

	apdu := EncodeComplexAck(5, ServiceReadProperty, payload)
	want := []byte{
		// ComplexACK header: type, invoke ID, ReadProperty
		0x30, 5, 12,
		// [0] object identifier, [1] property identifier
		0x0C, 0x0B, 0xC0, 0x00, 0x01,
		0x19, 85,
		// [3] value
		0x3E, 0x64, 1, 2, 3, 4, 0x3F,
	}
	assert.Equal(t, want, apdu)

	invokeID, service, body, err := DecodeComplexAck(apdu)
	require.NoError(t, err)
	assert.Equal(t, uint8(5), invokeID)
	assert.Equal(t, ServiceReadProperty, service)
	assert.Equal(t, payload, body)
}

func TestReadPropertyAckMaxOctetStringFits(t *testing.T) {
	req := ReadPropertyRequest{
		ObjectID:   NewObjectIdentifier(ObjectTypeOctetStringValue, MaxInstance),
		PropertyID: PropertyPresentValue,
	}

	payload, err := EncodeReadPropertyAckPayload(req, NewOctetString(make([]byte, MaxOctetStringSize)))
	require.NoError(t, err)

	apdu := EncodeComplexAck(0xFF, ServiceReadProperty, payload)
	assert.Equal(t, 916, len(apdu))
	assert.LessOrEqual(t, len(apdu), MaxUnsegmentedAPDU)
}

func TestDecodeComplexAckErrors(t *testing.T) {
	_, _, _, err := DecodeComplexAck([]byte{0x30, 1})
	assert.ErrorIs(t, err, ErrInvalidAPDU)

	_, _, _, err = DecodeComplexAck([]byte{0x20, 1, 12})
	assert.ErrorIs(t, err, ErrInvalidAPDU)

	_, _, _, err = DecodeComplexAck([]byte{0x38, 1, 0, 4, 12})
	assert.ErrorIs(t, err, ErrInvalidAPDU)
}

func TestSignedUnsignedEncoding(t *testing.T) {
	assert.Equal(t, []byte{0x01, 0x2C}, EncodeUnsigned(300))
	assert.Equal(t, uint32(300), DecodeUnsigned([]byte{0x01, 0x2C}))
	assert.Equal(t, []byte{0xFF}, EncodeSigned(-1))
	assert.Equal(t, int32(-1), DecodeSigned([]byte{0xFF}))
	assert.Equal(t, int32(-70000), DecodeSigned(EncodeSigned(-70000)))
}
