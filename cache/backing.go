// Package cache provides a write-back data cache built on Akita cache
// components.
package cache

import (
	"github.com/sarchlab/vr4300/mem"
)

// DeviceBacking wraps a mem.Device as a BackingStore.
type DeviceBacking struct {
	device mem.Device
}

// NewDeviceBacking creates a new DeviceBacking adapter.
func NewDeviceBacking(device mem.Device) *DeviceBacking {
	return &DeviceBacking{device: device}
}

// Read fetches data from the backing device.
func (d *DeviceBacking) Read(addr uint64, size int) []byte {
	data := make([]byte, size)
	for i := 0; i < size; i++ {
		data[i] = d.device.Read8(addr + uint64(i))
	}
	return data
}

// Write stores data to the backing device.
func (d *DeviceBacking) Write(addr uint64, data []byte) {
	for i, b := range data {
		d.device.Write8(addr+uint64(i), b)
	}
}
