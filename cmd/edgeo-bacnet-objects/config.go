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

package main

import (
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/viper"

	"github.com/edgeo-scada/bacnet-objects/bacnet"
)

const (
	defaultDeviceInstance = 1
	defaultDeviceName     = "edgeo-bacnet-objects"
)

// DeviceConfig is the "device" section of the config file
type DeviceConfig struct {
	Instance      uint32         `mapstructure:"instance"`
	Name          string         `mapstructure:"name"`
	Description   string         `mapstructure:"description"`
	VendorID      uint16         `mapstructure:"vendor_id"`
	MaxAPDULength uint16         `mapstructure:"max_apdu_length"`
	Objects       []ObjectConfig `mapstructure:"objects"`
}

// ObjectConfig declares one Octet String Value object
type ObjectConfig struct {
	Instance           uint32            `mapstructure:"instance"`
	Name               string            `mapstructure:"name"`
	Description        string            `mapstructure:"description"`
	PresentValue       string            `mapstructure:"present_value"`
	StatusFlags        StatusFlagsConfig `mapstructure:"status_flags"`
	OutOfServiceWrites bool              `mapstructure:"out_of_service_writes"`
}

// StatusFlagsConfig is the initial status of an object
type StatusFlagsConfig struct {
	InAlarm      bool `mapstructure:"in_alarm"`
	Fault        bool `mapstructure:"fault"`
	Overridden   bool `mapstructure:"overridden"`
	OutOfService bool `mapstructure:"out_of_service"`
}

func loadDeviceConfig() (DeviceConfig, error) {
	cfg := DeviceConfig{
		Instance:      defaultDeviceInstance,
		Name:          defaultDeviceName,
		MaxAPDULength: bacnet.MaxUnsegmentedAPDU,
	}
	if err := viper.UnmarshalKey("device", &cfg); err != nil {
		return DeviceConfig{}, err
	}
	return cfg, nil
}

func buildDevice(cfg DeviceConfig) (*bacnet.Device, error) {
	d := bacnet.NewDevice(cfg.Instance, cfg.Name,
		bacnet.WithDeviceDescription(cfg.Description),
		bacnet.WithVendorID(cfg.VendorID),
		bacnet.WithMaxAPDULength(cfg.MaxAPDULength),
		bacnet.WithLogger(logger),
	)

	for i, oc := range cfg.Objects {
		if oc.Name == "" {
			return nil, fmt.Errorf("objects[%d]: name is required", i)
		}

		opts := []bacnet.ObjectOption{bacnet.WithDescription(oc.Description)}
		if oc.OutOfServiceWrites {
			opts = append(opts, bacnet.WithOutOfServiceWrites())
		}
		obj := bacnet.NewOctetStringValue(oc.Instance, oc.Name, opts...)

		value, err := parseOctets(oc.PresentValue)
		if err != nil {
			return nil, fmt.Errorf("objects[%d] %q: present_value: %w", i, oc.Name, err)
		}
		if err := obj.SetPresentValue(value); err != nil {
			return nil, fmt.Errorf("objects[%d] %q: %w", i, oc.Name, err)
		}
		f := oc.StatusFlags
		obj.SetStatusFlags(f.InAlarm, f.Fault, f.Overridden, f.OutOfService)

		if err := d.AddObject(obj); err != nil {
			return nil, fmt.Errorf("objects[%d] %q: %w", i, oc.Name, err)
		}
	}

	logger.Debug("device loaded",
		slog.String("device", d.Identifier().String()),
		slog.Int("objects", d.Len()),
	)
	return d, nil
}

// parseOctets reads an octet string literal: "hex:0a0b", "text:abc" or
// bare hex. Hex digits may be separated by spaces, colons or dashes.
func parseOctets(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	lower := strings.ToLower(s)

	switch {
	case strings.HasPrefix(lower, "text:"):
		return []byte(s[len("text:"):]), nil
	case strings.HasPrefix(lower, "hex:"):
		s = s[len("hex:"):]
	case strings.HasPrefix(lower, "0x"):
		s = s[2:]
	}

	s = strings.NewReplacer(" ", "", ":", "", "-", "").Replace(s)
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex: %w", err)
	}
	return b, nil
}
