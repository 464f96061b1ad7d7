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
	"errors"
	"fmt"
)

// Sentinel errors
var (
	// Property access
	ErrUnknownProperty     = errors.New("bacnet: unknown property")
	ErrInvalidPropertyType = errors.New("bacnet: invalid property type")
	ErrPropertyNotWritable = errors.New("bacnet: property not writable")
	ErrOversizeData        = errors.New("bacnet: oversize data")
	ErrNotAnArray          = errors.New("bacnet: property is not an array")

	// Object directory
	ErrUnknownObject   = errors.New("bacnet: unknown object")
	ErrObjectExists    = errors.New("bacnet: object identifier already exists")
	ErrDuplicateName   = errors.New("bacnet: duplicate object name")
	ErrInvalidInstance = errors.New("bacnet: instance number out of range")
	ErrInvalidObject   = errors.New("bacnet: object type not allowed in directory")

	// Codec
	ErrInvalidTag   = errors.New("bacnet: invalid tag")
	ErrInvalidAPDU  = errors.New("bacnet: invalid APDU")
	ErrValueTooLong = errors.New("bacnet: encoded value exceeds max APDU length")
)

// OversizeError reports a payload that exceeds its size bound.
// It matches ErrOversizeData with errors.Is.
type OversizeError struct {
	Len    int
	MaxLen int
}

func (e *OversizeError) Error() string {
	return fmt.Sprintf("bacnet: oversize data: len=%d, max_len=%d", e.Len, e.MaxLen)
}

func (e *OversizeError) Is(target error) bool {
	return target == ErrOversizeData
}

// ErrorClass represents BACnet error classes
type ErrorClass uint8

const (
	ErrorClassDevice        ErrorClass = 0
	ErrorClassObject        ErrorClass = 1
	ErrorClassProperty      ErrorClass = 2
	ErrorClassResources     ErrorClass = 3
	ErrorClassSecurity      ErrorClass = 4
	ErrorClassServices      ErrorClass = 5
	ErrorClassVT            ErrorClass = 6
	ErrorClassCommunication ErrorClass = 7
)

func (e ErrorClass) String() string {
	names := map[ErrorClass]string{
		ErrorClassDevice:        "device",
		ErrorClassObject:        "object",
		ErrorClassProperty:      "property",
		ErrorClassResources:     "resources",
		ErrorClassSecurity:      "security",
		ErrorClassServices:      "services",
		ErrorClassVT:            "vt",
		ErrorClassCommunication: "communication",
	}
	if name, ok := names[e]; ok {
		return name
	}
	return fmt.Sprintf("error-class(%d)", e)
}

// ErrorCode represents BACnet error codes
type ErrorCode uint8

const (
	ErrorCodeOther                         ErrorCode = 0
	ErrorCodeInconsistentParameters        ErrorCode = 7
	ErrorCodeInvalidDataType               ErrorCode = 9
	ErrorCodeNoSpaceToWriteProperty        ErrorCode = 20
	ErrorCodeObjectIdentifierAlreadyExists ErrorCode = 24
	ErrorCodeReadAccessDenied              ErrorCode = 27
	ErrorCodeUnknownObject                 ErrorCode = 31
	ErrorCodeUnknownProperty               ErrorCode = 32
	ErrorCodeValueOutOfRange               ErrorCode = 37
	ErrorCodeWriteAccessDenied             ErrorCode = 40
	ErrorCodeDuplicateName                 ErrorCode = 48
	ErrorCodePropertyIsNotAnArray          ErrorCode = 50
	ErrorCodeValueTooLong                  ErrorCode = 72
)

func (e ErrorCode) String() string {
	names := map[ErrorCode]string{
		ErrorCodeOther:                         "other",
		ErrorCodeInconsistentParameters:        "inconsistent-parameters",
		ErrorCodeInvalidDataType:               "invalid-data-type",
		ErrorCodeNoSpaceToWriteProperty:        "no-space-to-write-property",
		ErrorCodeObjectIdentifierAlreadyExists: "object-identifier-already-exists",
		ErrorCodeReadAccessDenied:              "read-access-denied",
		ErrorCodeUnknownObject:                 "unknown-object",
		ErrorCodeUnknownProperty:               "unknown-property",
		ErrorCodeValueOutOfRange:               "value-out-of-range",
		ErrorCodeWriteAccessDenied:             "write-access-denied",
		ErrorCodeDuplicateName:                 "duplicate-name",
		ErrorCodePropertyIsNotAnArray:          "property-is-not-an-array",
		ErrorCodeValueTooLong:                  "value-too-long",
	}
	if name, ok := names[e]; ok {
		return name
	}
	return fmt.Sprintf("error-code(%d)", e)
}

// BACnetError represents a BACnet protocol error
type BACnetError struct {
	Class ErrorClass
	Code  ErrorCode
}

func (e *BACnetError) Error() string {
	return fmt.Sprintf("bacnet error: class=%s, code=%s", e.Class, e.Code)
}

func (e *BACnetError) Is(target error) bool {
	t, ok := target.(*BACnetError)
	if !ok {
		return false
	}
	return e.Class == t.Class && e.Code == t.Code
}

// NewBACnetError creates a new BACnet error
func NewBACnetError(class ErrorClass, code ErrorCode) *BACnetError {
	return &BACnetError{
		Class: class,
		Code:  code,
	}
}

// ToBACnetError maps an error returned by an object or the directory to
// the error class and code a service handler reports to the peer.
// Errors outside the taxonomy map to device/other.
func ToBACnetError(err error) *BACnetError {
	var bacnetErr *BACnetError
	switch {
	case errors.As(err, &bacnetErr):
		return bacnetErr
	case errors.Is(err, ErrUnknownProperty):
		return NewBACnetError(ErrorClassProperty, ErrorCodeUnknownProperty)
	case errors.Is(err, ErrInvalidPropertyType):
		return NewBACnetError(ErrorClassProperty, ErrorCodeInvalidDataType)
	case errors.Is(err, ErrPropertyNotWritable):
		return NewBACnetError(ErrorClassProperty, ErrorCodeWriteAccessDenied)
	case errors.Is(err, ErrOversizeData):
		return NewBACnetError(ErrorClassResources, ErrorCodeNoSpaceToWriteProperty)
	case errors.Is(err, ErrNotAnArray):
		return NewBACnetError(ErrorClassProperty, ErrorCodePropertyIsNotAnArray)
	case errors.Is(err, ErrValueTooLong):
		return NewBACnetError(ErrorClassProperty, ErrorCodeValueTooLong)
	case errors.Is(err, ErrUnknownObject):
		return NewBACnetError(ErrorClassObject, ErrorCodeUnknownObject)
	case errors.Is(err, ErrObjectExists):
		return NewBACnetError(ErrorClassObject, ErrorCodeObjectIdentifierAlreadyExists)
	case errors.Is(err, ErrDuplicateName):
		return NewBACnetError(ErrorClassServices, ErrorCodeDuplicateName)
	case errors.Is(err, ErrInvalidInstance):
		return NewBACnetError(ErrorClassProperty, ErrorCodeValueOutOfRange)
	}
	return NewBACnetError(ErrorClassDevice, ErrorCodeOther)
}

// IsUnknownProperty returns true if the error indicates an unsupported property
func IsUnknownProperty(err error) bool {
	if errors.Is(err, ErrUnknownProperty) {
		return true
	}
	var bacnetErr *BACnetError
	if errors.As(err, &bacnetErr) {
		return bacnetErr.Code == ErrorCodeUnknownProperty
	}
	return false
}

// IsNotWritable returns true if the error indicates a rejected write access
func IsNotWritable(err error) bool {
	if errors.Is(err, ErrPropertyNotWritable) {
		return true
	}
	var bacnetErr *BACnetError
	if errors.As(err, &bacnetErr) {
		return bacnetErr.Code == ErrorCodeWriteAccessDenied
	}
	return false
}

// IsOversize returns true if the error indicates a payload above its bound
func IsOversize(err error) bool {
	return errors.Is(err, ErrOversizeData)
}

// IsUnknownObject returns true if the error indicates a missing object
func IsUnknownObject(err error) bool {
	if errors.Is(err, ErrUnknownObject) {
		return true
	}
	var bacnetErr *BACnetError
	if errors.As(err, &bacnetErr) {
		return bacnetErr.Code == ErrorCodeUnknownObject
	}
	return false
}
