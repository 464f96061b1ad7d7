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
	"io"
	"log/slog"
)

// deviceOptions holds configuration for a Device
type deviceOptions struct {
	// APDU configuration
	maxAPDULength uint16

	// Identity
	description string
	vendorID    uint16

	// Logging
	logger *slog.Logger
}

// defaultDeviceOptions returns the default device options
func defaultDeviceOptions() *deviceOptions {
	return &deviceOptions{
		maxAPDULength: MaxUnsegmentedAPDU,
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// DeviceOption is a functional option for configuring a Device
type DeviceOption func(*deviceOptions)

// WithMaxAPDULength sets the largest APDU the device answers without
// segmentation. Values below 50 (the smallest length BACnet allows) are ignored.
func WithMaxAPDULength(length uint16) DeviceOption {
	return func(o *deviceOptions) {
		if length >= 50 {
			o.maxAPDULength = length
		}
	}
}

// WithDeviceDescription sets the device description
func WithDeviceDescription(description string) DeviceOption {
	return func(o *deviceOptions) {
		o.description = description
	}
}

// WithVendorID sets the vendor identifier reported by the device
func WithVendorID(id uint16) DeviceOption {
	return func(o *deviceOptions) {
		o.vendorID = id
	}
}

// WithLogger sets the logger for the device
func WithLogger(logger *slog.Logger) DeviceOption {
	return func(o *deviceOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// objectOptions holds configuration shared by object constructors
type objectOptions struct {
	description        string
	outOfServiceWrites bool
}

func defaultObjectOptions() *objectOptions {
	return &objectOptions{}
}

// ObjectOption is a functional option for object constructors
type ObjectOption func(*objectOptions)

// WithDescription sets the initial description
func WithDescription(description string) ObjectOption {
	return func(o *objectOptions) {
		o.description = description
	}
}

// WithOutOfServiceWrites lets the present value be written while the
// out-of-service status flag is set. Without it the present value is
// read-only.
func WithOutOfServiceWrites() ObjectOption {
	return func(o *objectOptions) {
		o.outOfServiceWrites = true
	}
}
