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

// MaxOctetStringSize bounds octet string payloads so a ReadProperty-ACK
// carrying the whole value fits one unsegmented APDU of MaxUnsegmentedAPDU
// bytes, headers and tags included.
const MaxOctetStringSize = 900

// BoundedBuffer holds a byte sequence whose length has been checked
// against MaxOctetStringSize.
type BoundedBuffer struct {
	data []byte
}

// NewBoundedBuffer takes ownership of data if it fits the bound.
// Oversized input is rejected with an *OversizeError; nothing is truncated.
func NewBoundedBuffer(data []byte) (*BoundedBuffer, error) {
	if len(data) > MaxOctetStringSize {
		return nil, &OversizeError{Len: len(data), MaxLen: MaxOctetStringSize}
	}
	return &BoundedBuffer{data: data}, nil
}

// Len returns the number of bytes held.
func (b *BoundedBuffer) Len() int {
	return len(b.data)
}

// take hands the bytes over to the caller.
func (b *BoundedBuffer) take() []byte {
	data := b.data
	b.data = nil
	return data
}
