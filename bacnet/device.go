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
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"
)

// Device is the object directory of one BACnet device. It owns the
// registered objects, keyed by identifier, and serializes every access to
// an object behind that object's own lock.
type Device struct {
	identifier ObjectIdentifier
	name       string
	opts       *deviceOptions

	// Lock order: mu, then objectEntry.mu.
	mu      sync.RWMutex
	objects map[ObjectIdentifier]*objectEntry

	metrics *Metrics
	logger  *slog.Logger
}

type objectEntry struct {
	mu  sync.Mutex
	obj Object
}

// NewDevice creates an empty device directory
func NewDevice(instance uint32, name string, opts ...DeviceOption) *Device {
	options := defaultDeviceOptions()
	for _, opt := range opts {
		opt(options)
	}

	return &Device{
		identifier: NewObjectIdentifier(ObjectTypeDevice, instance),
		name:       name,
		opts:       options,
		objects:    make(map[ObjectIdentifier]*objectEntry),
		metrics:    NewMetrics(),
		logger:     options.logger,
	}
}

// Identifier returns the device object identifier
func (d *Device) Identifier() ObjectIdentifier {
	return d.identifier
}

// Name returns the device object name
func (d *Device) Name() string {
	return d.name
}

// Description returns the device description
func (d *Device) Description() string {
	return d.opts.description
}

// VendorID returns the vendor identifier
func (d *Device) VendorID() uint16 {
	return d.opts.vendorID
}

// MaxAPDULength returns the largest APDU the device encodes
func (d *Device) MaxAPDULength() uint16 {
	return d.opts.maxAPDULength
}

// Metrics returns the dispatch metrics
func (d *Device) Metrics() *Metrics {
	return d.metrics
}

// AddObject registers an object. Identifiers and object names must be
// unique within the device.
func (d *Device) AddObject(obj Object) error {
	oid := obj.Identifier()
	if oid.Type == ObjectTypeDevice {
		return fmt.Errorf("%w: %s", ErrInvalidObject, oid)
	}
	if oid.Instance > MaxInstance {
		return fmt.Errorf("%w: %s", ErrInvalidInstance, oid)
	}
	name, _ := ObjectName(obj)

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.objects[oid]; exists {
		return fmt.Errorf("%w: %s", ErrObjectExists, oid)
	}
	if d.nameInUseLocked(name, oid) {
		d.metrics.DuplicateName.Inc()
		return fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}

	d.objects[oid] = &objectEntry{obj: obj}
	d.metrics.ObjectsAdded.Inc()
	d.metrics.Objects.Inc()

	d.logger.Debug("object added",
		slog.String("object", oid.String()),
		slog.String("name", name),
	)
	return nil
}

// RemoveObject drops an object from the directory
func (d *Device) RemoveObject(oid ObjectIdentifier) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.objects[oid]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownObject, oid)
	}
	delete(d.objects, oid)
	d.metrics.ObjectsRemoved.Inc()
	d.metrics.Objects.Dec()

	d.logger.Debug("object removed", slog.String("object", oid.String()))
	return nil
}

// Len returns the number of registered objects
func (d *Device) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.objects)
}

// ObjectList returns the identifiers of all registered objects, ordered by
// type and instance.
func (d *Device) ObjectList() []ObjectIdentifier {
	d.mu.RLock()
	list := make([]ObjectIdentifier, 0, len(d.objects))
	for oid := range d.objects {
		list = append(list, oid)
	}
	d.mu.RUnlock()

	sort.Slice(list, func(i, j int) bool { return list[i].Less(list[j]) })
	return list
}

// WithObject runs fn with exclusive access to one object. It is the way
// to reach type-specific operations such as status flag updates.
func (d *Device) WithObject(oid ObjectIdentifier, fn func(Object) error) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	entry, ok := d.objects[oid]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownObject, oid)
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return fn(entry.obj)
}

// ReadProperty serves a ReadProperty request
func (d *Device) ReadProperty(req ReadPropertyRequest) (PropertyValue, error) {
	start := time.Now()
	defer func() { d.metrics.DispatchLatency.Record(time.Since(start)) }()

	var value PropertyValue
	err := d.WithObject(req.ObjectID, func(obj Object) error {
		v, err := obj.GetProperty(req.PropertyID)
		if err != nil {
			return err
		}
		if req.ArrayIndex != nil {
			return ErrNotAnArray
		}
		value = v
		return nil
	})
	if err != nil {
		d.metrics.ReadsFailed.Inc()
		d.metrics.recordError(err)
		return PropertyValue{}, fmt.Errorf("read %s.%s: %w", req.ObjectID, req.PropertyID, err)
	}

	d.metrics.ReadsServed.Inc()
	return value, nil
}

// ReadPropertyAll reads every property in the object's property list, in
// list order. Per-property failures are reported in the results.
func (d *Device) ReadPropertyAll(oid ObjectIdentifier) ([]PropertyResult, error) {
	start := time.Now()
	defer func() { d.metrics.DispatchLatency.Record(time.Since(start)) }()

	var results []PropertyResult
	err := d.WithObject(oid, func(obj Object) error {
		for _, id := range obj.PropertyList() {
			v, err := obj.GetProperty(id)
			if err != nil {
				d.metrics.ReadsFailed.Inc()
				d.metrics.recordError(err)
			} else {
				d.metrics.ReadsServed.Inc()
			}
			results = append(results, PropertyResult{
				ObjectID:   oid,
				PropertyID: id,
				Value:      v,
				Err:        err,
			})
		}
		return nil
	})
	if err != nil {
		d.metrics.ReadsFailed.Inc()
		d.metrics.recordError(err)
		return nil, err
	}
	return results, nil
}

// WriteProperty serves a WriteProperty request. Object names stay unique
// across the device.
func (d *Device) WriteProperty(req WritePropertyRequest) error {
	start := time.Now()
	defer func() { d.metrics.DispatchLatency.Record(time.Since(start)) }()

	if err := d.writeProperty(req); err != nil {
		d.metrics.WritesRejected.Inc()
		d.metrics.recordError(err)
		d.logger.Debug("write rejected",
			slog.String("object", req.ObjectID.String()),
			slog.String("property", req.PropertyID.String()),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("write %s.%s: %w", req.ObjectID, req.PropertyID, err)
	}

	d.metrics.WritesAccepted.Inc()
	return nil
}

func (d *Device) writeProperty(req WritePropertyRequest) error {
	if req.PropertyID != PropertyObjectName {
		return d.WithObject(req.ObjectID, func(obj Object) error {
			if req.ArrayIndex != nil {
				return ErrNotAnArray
			}
			return obj.SetProperty(req.PropertyID, req.Value)
		})
	}

	// Renames hold the directory lock so two objects cannot race to the
	// same name.
	d.mu.Lock()
	defer d.mu.Unlock()

	entry, ok := d.objects[req.ObjectID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownObject, req.ObjectID)
	}
	if req.ArrayIndex != nil {
		return ErrNotAnArray
	}
	if name, ok := req.Value.AsCharacterString(); ok && d.nameInUseLocked(name, req.ObjectID) {
		return fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.obj.SetProperty(req.PropertyID, req.Value)
}

// EncodeReadPropertyAck reads a property and encodes the ComplexACK APDU
// answering the request. The result never exceeds the device's max APDU
// length; larger answers fail with ErrValueTooLong.
func (d *Device) EncodeReadPropertyAck(invokeID uint8, req ReadPropertyRequest) ([]byte, error) {
	value, err := d.ReadProperty(req)
	if err != nil {
		return nil, err
	}

	payload, err := EncodeReadPropertyAckPayload(req, value)
	if err != nil {
		return nil, fmt.Errorf("encode %s.%s: %w", req.ObjectID, req.PropertyID, err)
	}

	apdu := EncodeComplexAck(invokeID, ServiceReadProperty, payload)
	if len(apdu) > int(d.opts.maxAPDULength) {
		d.metrics.ValueTooLong.Inc()
		return nil, fmt.Errorf("%w: %d > %d bytes", ErrValueTooLong, len(apdu), d.opts.maxAPDULength)
	}
	return apdu, nil
}

// Snapshot copies the state of every object, in ObjectList order.
func (d *Device) Snapshot() []ObjectSnapshot {
	oids := d.ObjectList()
	snaps := make([]ObjectSnapshot, 0, len(oids))
	for _, oid := range oids {
		_ = d.WithObject(oid, func(obj Object) error {
			if s, ok := obj.(Snapshotter); ok {
				snaps = append(snaps, s.Snapshot())
				return nil
			}
			name, _ := ObjectName(obj)
			snaps = append(snaps, ObjectSnapshot{
				ObjectID:   oid,
				Object:     oid.String(),
				ObjectName: name,
			})
			return nil
		})
	}
	return snaps
}

// nameInUseLocked reports whether name is taken by the device or by an
// object other than except. d.mu must be held.
func (d *Device) nameInUseLocked(name string, except ObjectIdentifier) bool {
	if name == d.name {
		return true
	}
	for oid, entry := range d.objects {
		if oid == except {
			continue
		}
		entry.mu.Lock()
		other, _ := ObjectName(entry.obj)
		entry.mu.Unlock()
		if other == name {
			return true
		}
	}
	return false
}
