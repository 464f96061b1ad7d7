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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToBACnetError(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		class ErrorClass
		code  ErrorCode
	}{
		{name: "unknown property", err: ErrUnknownProperty, class: ErrorClassProperty, code: ErrorCodeUnknownProperty},
		{name: "invalid type", err: ErrInvalidPropertyType, class: ErrorClassProperty, code: ErrorCodeInvalidDataType},
		{name: "not writable", err: ErrPropertyNotWritable, class: ErrorClassProperty, code: ErrorCodeWriteAccessDenied},
		{name: "oversize", err: &OversizeError{Len: 901, MaxLen: 900}, class: ErrorClassResources, code: ErrorCodeNoSpaceToWriteProperty},
		{name: "not an array", err: ErrNotAnArray, class: ErrorClassProperty, code: ErrorCodePropertyIsNotAnArray},
		{name: "value too long", err: ErrValueTooLong, class: ErrorClassProperty, code: ErrorCodeValueTooLong},
		{name: "unknown object", err: ErrUnknownObject, class: ErrorClassObject, code: ErrorCodeUnknownObject},
		{name: "object exists", err: ErrObjectExists, class: ErrorClassObject, code: ErrorCodeObjectIdentifierAlreadyExists},
		{name: "duplicate name", err: ErrDuplicateName, class: ErrorClassServices, code: ErrorCodeDuplicateName},
		{name: "invalid instance", err: ErrInvalidInstance, class: ErrorClassProperty, code: ErrorCodeValueOutOfRange},
		{name: "wrapped", err: fmt.Errorf("write x: %w", ErrPropertyNotWritable), class: ErrorClassProperty, code: ErrorCodeWriteAccessDenied},
		{name: "passthrough", err: NewBACnetError(ErrorClassSecurity, ErrorCodeReadAccessDenied), class: ErrorClassSecurity, code: ErrorCodeReadAccessDenied},
		{name: "other", err: errors.New("boom"), class: ErrorClassDevice, code: ErrorCodeOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToBACnetError(tt.err)
			assert.Equal(t, tt.class, got.Class)
			assert.Equal(t, tt.code, got.Code)
		})
	}
}

func TestErrorPredicates(t *testing.T) {
	assert.True(t, IsUnknownProperty(ErrUnknownProperty))
	assert.True(t, IsUnknownProperty(NewBACnetError(ErrorClassProperty, ErrorCodeUnknownProperty)))
	assert.False(t, IsUnknownProperty(ErrUnknownObject))

	assert.True(t, IsNotWritable(fmt.Errorf("wrapped: %w", ErrPropertyNotWritable)))
	assert.True(t, IsOversize(fmt.Errorf("wrapped: %w", &OversizeError{Len: 1000, MaxLen: 900})))
	assert.True(t, IsUnknownObject(NewBACnetError(ErrorClassObject, ErrorCodeUnknownObject)))
}

func TestErrorStrings(t *testing.T) {
	assert.Equal(t, "property", ErrorClassProperty.String())
	assert.Equal(t, "write-access-denied", ErrorCodeWriteAccessDenied.String())
	assert.Equal(t, "error-code(200)", ErrorCode(200).String())
}
