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
	"encoding/binary"
	"fmt"
	"math"
	"unicode/utf8"
)

// Tag length markers returned by DecodeTagNumber
const (
	tagLengthOpening = -1
	tagLengthClosing = -2
)

// complexAckHeaderLen is PDU type, invoke ID and service choice.
const complexAckHeaderLen = 3

// EncodeTag encodes a BACnet tag header
func EncodeTag(tagNum uint8, class TagClass, length int) []byte {
	lenBits := uint8(5)
	if length < 5 {
		lenBits = uint8(length)
	}

	buf := make([]byte, 0, 7)
	if tagNum < 15 {
		buf = append(buf, (tagNum<<4)|(uint8(class)<<3)|lenBits)
	} else {
		buf = append(buf, 0xF0|(uint8(class)<<3)|lenBits, tagNum)
	}

	if length >= 5 {
		switch {
		case length < 254:
			buf = append(buf, byte(length))
		case length < 65536:
			buf = append(buf, 254, byte(length>>8), byte(length))
		default:
			buf = append(buf, 255, byte(length>>24), byte(length>>16), byte(length>>8), byte(length))
		}
	}
	return buf
}

// EncodeContextTag encodes a context-specific tag followed by its data
func EncodeContextTag(tagNum uint8, data []byte) []byte {
	tag := EncodeTag(tagNum, TagClassContext, len(data))
	return append(tag, data...)
}

// EncodeOpeningTag encodes an opening tag for constructed data
func EncodeOpeningTag(tagNum uint8) []byte {
	if tagNum < 15 {
		return []byte{(tagNum << 4) | 0x0E}
	}
	return []byte{0xFE, tagNum}
}

// EncodeClosingTag encodes a closing tag for constructed data
func EncodeClosingTag(tagNum uint8) []byte {
	if tagNum < 15 {
		return []byte{(tagNum << 4) | 0x0F}
	}
	return []byte{0xFF, tagNum}
}

// EncodeUnsigned encodes an unsigned integer in the fewest octets
func EncodeUnsigned(value uint32) []byte {
	switch {
	case value < 0x100:
		return []byte{byte(value)}
	case value < 0x10000:
		return []byte{byte(value >> 8), byte(value)}
	case value < 0x1000000:
		return []byte{byte(value >> 16), byte(value >> 8), byte(value)}
	}
	return []byte{byte(value >> 24), byte(value >> 16), byte(value >> 8), byte(value)}
}

// EncodeSigned encodes a signed integer in the fewest octets
func EncodeSigned(value int32) []byte {
	switch {
	case value >= -128 && value < 128:
		return []byte{byte(value)}
	case value >= -32768 && value < 32768:
		return []byte{byte(value >> 8), byte(value)}
	case value >= -8388608 && value < 8388608:
		return []byte{byte(value >> 16), byte(value >> 8), byte(value)}
	}
	return []byte{byte(value >> 24), byte(value >> 16), byte(value >> 8), byte(value)}
}

// EncodeContextUnsigned encodes an unsigned integer with context tag
func EncodeContextUnsigned(tagNum uint8, value uint32) []byte {
	return EncodeContextTag(tagNum, EncodeUnsigned(value))
}

// EncodeContextEnumerated encodes an enumerated value with context tag
func EncodeContextEnumerated(tagNum uint8, value uint32) []byte {
	return EncodeContextTag(tagNum, EncodeUnsigned(value))
}

// EncodeContextObjectIdentifier encodes an object identifier with context tag
func EncodeContextObjectIdentifier(tagNum uint8, oid ObjectIdentifier) []byte {
	data := make([]byte, 4)
	binary.BigEndian.PutUint32(data, oid.Encode())
	return EncodeContextTag(tagNum, data)
}

// EncodeApplicationValue encodes a property value with its application tag.
func EncodeApplicationValue(v PropertyValue) ([]byte, error) {
	var data []byte

	switch v.Tag {
	case TagNull:
		return []byte{0x00}, nil
	case TagBoolean:
		b, ok := v.Value.(bool)
		if !ok {
			return nil, valueTypeError(v)
		}
		// The value lives in the length bits.
		if b {
			return []byte{0x11}, nil
		}
		return []byte{0x10}, nil
	case TagUnsignedInt, TagEnumerated:
		n, ok := v.Value.(uint32)
		if !ok {
			return nil, valueTypeError(v)
		}
		data = EncodeUnsigned(n)
	case TagSignedInt:
		n, ok := v.Value.(int32)
		if !ok {
			return nil, valueTypeError(v)
		}
		data = EncodeSigned(n)
	case TagReal:
		f, ok := v.Value.(float32)
		if !ok {
			return nil, valueTypeError(v)
		}
		data = binary.BigEndian.AppendUint32(nil, math.Float32bits(f))
	case TagDouble:
		f, ok := v.Value.(float64)
		if !ok {
			return nil, valueTypeError(v)
		}
		data = binary.BigEndian.AppendUint64(nil, math.Float64bits(f))
	case TagOctetString:
		b, ok := v.Value.([]byte)
		if !ok {
			return nil, valueTypeError(v)
		}
		data = b
	case TagCharacterString:
		s, ok := v.Value.(string)
		if !ok {
			return nil, valueTypeError(v)
		}
		// Character set 0 = UTF-8
		data = make([]byte, 1+len(s))
		copy(data[1:], s)
	case TagObjectID:
		oid, ok := v.Value.(ObjectIdentifier)
		if !ok {
			return nil, valueTypeError(v)
		}
		data = binary.BigEndian.AppendUint32(nil, oid.Encode())
	default:
		return nil, fmt.Errorf("%w: unsupported application tag %s", ErrInvalidTag, v.Tag)
	}

	tag := EncodeTag(uint8(v.Tag), TagClassApplication, len(data))
	return append(tag, data...), nil
}

// DecodeTagNumber decodes a tag header. Opening and closing tags report a
// length of -1 and -2.
func DecodeTagNumber(data []byte) (tagNum uint8, class TagClass, length int, headerLen int, err error) {
	if len(data) < 1 {
		return 0, 0, 0, 0, ErrInvalidTag
	}

	tagNum = (data[0] >> 4) & 0x0F
	class = TagClass((data[0] >> 3) & 0x01)
	length = int(data[0] & 0x07)
	headerLen = 1

	// Extended tag number
	if tagNum == 0x0F {
		if len(data) < 2 {
			return 0, 0, 0, 0, ErrInvalidTag
		}
		tagNum = data[1]
		headerLen = 2
	}

	if class == TagClassContext {
		switch data[0] & 0x07 {
		case 0x06:
			return tagNum, class, tagLengthOpening, headerLen, nil
		case 0x07:
			return tagNum, class, tagLengthClosing, headerLen, nil
		}
	}

	// Extended length
	if length == 5 {
		if len(data) < headerLen+1 {
			return 0, 0, 0, 0, ErrInvalidTag
		}
		switch ext := data[headerLen]; {
		case ext < 254:
			length = int(ext)
			headerLen++
		case ext == 254:
			if len(data) < headerLen+3 {
				return 0, 0, 0, 0, ErrInvalidTag
			}
			length = int(binary.BigEndian.Uint16(data[headerLen+1:]))
			headerLen += 3
		default:
			if len(data) < headerLen+5 {
				return 0, 0, 0, 0, ErrInvalidTag
			}
			length = int(binary.BigEndian.Uint32(data[headerLen+1:]))
			headerLen += 5
		}
	}

	return tagNum, class, length, headerLen, nil
}

// DecodeUnsigned decodes an unsigned integer of 1 to 4 octets
func DecodeUnsigned(data []byte) uint32 {
	var v uint32
	for _, b := range data {
		v = v<<8 | uint32(b)
	}
	return v
}

// DecodeSigned decodes a sign-extended integer of 1 to 4 octets
func DecodeSigned(data []byte) int32 {
	if len(data) == 0 {
		return 0
	}
	v := int32(int8(data[0]))
	for _, b := range data[1:] {
		v = v<<8 | int32(b)
	}
	return v
}

// DecodeApplicationValue decodes one application-tagged value and returns
// it with the number of bytes consumed.
func DecodeApplicationValue(data []byte) (PropertyValue, int, error) {
	tagNum, class, length, headerLen, err := DecodeTagNumber(data)
	if err != nil {
		return PropertyValue{}, 0, err
	}
	if class != TagClassApplication {
		return PropertyValue{}, 0, fmt.Errorf("%w: context tag %d where application tag expected", ErrInvalidTag, tagNum)
	}

	tag := ApplicationTag(tagNum)
	if tag == TagBoolean {
		return NewBoolean(length == 1), headerLen, nil
	}

	end := headerLen + length
	if length < 0 || end > len(data) {
		return PropertyValue{}, 0, fmt.Errorf("%w: %s value truncated", ErrInvalidTag, tag)
	}
	payload := data[headerLen:end]

	switch tag {
	case TagNull:
		return Null(), end, nil
	case TagUnsignedInt, TagEnumerated:
		if length < 1 || length > 4 {
			return PropertyValue{}, 0, fmt.Errorf("%w: %s length %d", ErrInvalidTag, tag, length)
		}
		return PropertyValue{Tag: tag, Value: DecodeUnsigned(payload)}, end, nil
	case TagSignedInt:
		if length < 1 || length > 4 {
			return PropertyValue{}, 0, fmt.Errorf("%w: %s length %d", ErrInvalidTag, tag, length)
		}
		return NewSigned(DecodeSigned(payload)), end, nil
	case TagReal:
		if length != 4 {
			return PropertyValue{}, 0, fmt.Errorf("%w: real length %d", ErrInvalidTag, length)
		}
		return NewReal(math.Float32frombits(binary.BigEndian.Uint32(payload))), end, nil
	case TagDouble:
		if length != 8 {
			return PropertyValue{}, 0, fmt.Errorf("%w: double length %d", ErrInvalidTag, length)
		}
		return NewDouble(math.Float64frombits(binary.BigEndian.Uint64(payload))), end, nil
	case TagOctetString:
		return NewOctetString(payload), end, nil
	case TagCharacterString:
		if length < 1 {
			return PropertyValue{}, 0, fmt.Errorf("%w: character string without character set", ErrInvalidTag)
		}
		if payload[0] != 0 {
			return PropertyValue{}, 0, fmt.Errorf("%w: unsupported character set %d", ErrInvalidTag, payload[0])
		}
		if !utf8.Valid(payload[1:]) {
			return PropertyValue{}, 0, fmt.Errorf("%w: invalid UTF-8 in character string", ErrInvalidTag)
		}
		return NewCharacterString(string(payload[1:])), end, nil
	case TagObjectID:
		if length != 4 {
			return PropertyValue{}, 0, fmt.Errorf("%w: object identifier length %d", ErrInvalidTag, length)
		}
		return NewObjectIdentifierValue(DecodeObjectIdentifier(binary.BigEndian.Uint32(payload))), end, nil
	}
	return PropertyValue{}, 0, fmt.Errorf("%w: unsupported application tag %s", ErrInvalidTag, tag)
}

// EncodeComplexAck builds a ComplexACK APDU around a service payload.
func EncodeComplexAck(invokeID uint8, service ConfirmedServiceChoice, payload []byte) []byte {
	buf := make([]byte, 0, complexAckHeaderLen+len(payload))
	buf = append(buf, byte(PDUTypeComplexAck), invokeID, byte(service))
	return append(buf, payload...)
}

// EncodeReadPropertyAckPayload builds the ReadProperty-ACK service
// payload: object identifier [0], property identifier [1], optional array
// index [2] and the value enclosed in [3].
func EncodeReadPropertyAckPayload(req ReadPropertyRequest, value PropertyValue) ([]byte, error) {
	encoded, err := EncodeApplicationValue(value)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, 0, 16+len(encoded))
	buf = append(buf, EncodeContextObjectIdentifier(0, req.ObjectID)...)
	buf = append(buf, EncodeContextEnumerated(1, uint32(req.PropertyID))...)
	if req.ArrayIndex != nil {
		buf = append(buf, EncodeContextUnsigned(2, *req.ArrayIndex)...)
	}
	buf = append(buf, EncodeOpeningTag(3)...)
	buf = append(buf, encoded...)
	buf = append(buf, EncodeClosingTag(3)...)
	return buf, nil
}

// DecodeComplexAck splits a ComplexACK APDU into its header fields and
// service payload. Segmented ACKs are rejected.
func DecodeComplexAck(data []byte) (invokeID uint8, service ConfirmedServiceChoice, payload []byte, err error) {
	if len(data) < complexAckHeaderLen || PDUType(data[0]&0xF0) != PDUTypeComplexAck {
		return 0, 0, nil, ErrInvalidAPDU
	}
	if data[0]&0x08 != 0 {
		return 0, 0, nil, fmt.Errorf("%w: segmented ACK", ErrInvalidAPDU)
	}
	return data[1], ConfirmedServiceChoice(data[2]), data[3:], nil
}

func valueTypeError(v PropertyValue) error {
	return fmt.Errorf("%w: %T held under tag %s", ErrInvalidPropertyType, v.Value, v.Tag)
}
