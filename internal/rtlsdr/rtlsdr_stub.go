//go:build !rtlsdr

// Package rtlsdr provides stub implementations when RTL-SDR support is not
// compiled in. This file is compiled when the "rtlsdr" build tag is NOT
// specified; the stub delivers a deterministic synthetic sample pattern so the
// full capture pipeline can run without hardware.
package rtlsdr

import (
	"fmt"
	"sync/atomic"
)

// Device represents a stub RTL-SDR device (no actual hardware access)
type Device struct {
	index      int    // Index the device was opened with
	frequency  uint32 // Stored frequency setting
	sampleRate uint32 // Stored sample rate setting
	gain       int    // Stored gain setting in tenths of dB
	agc        bool   // Stored AGC setting
	ppm        int    // Stored ppm correction

	cancelled atomic.Bool // Async delivery cancellation flag
	counter   byte        // Synthetic pattern phase, persists across reads
}

// ReadFunc is invoked once per delivered buffer in async mode. The buffer is
// only valid for the duration of the call.
type ReadFunc func(buf []byte)

// NewDevice creates a stub RTL-SDR device for testing
func NewDevice(deviceIndex int) (*Device, error) {
	if deviceIndex < 0 {
		return nil, fmt.Errorf("device index %d out of range", deviceIndex)
	}
	return &Device{
		index:      deviceIndex,
		frequency:  100000000, // Default frequency
		sampleRate: 2048000,   // Default sample rate
	}, nil
}

// ListDevices returns stub device information for testing
func ListDevices() ([]DeviceInfo, error) {
	return []DeviceInfo{
		{
			Index:        0,
			Name:         "RTL-SDR Stub Device #0",
			Manufacturer: "Stub Corp",
			Product:      "RTL-SDR Stub",
			SerialNumber: "00000001",
		},
	}, nil
}

// DeviceInfo contains information about a stub RTL-SDR device
type DeviceInfo struct {
	Index        int    // Device index (0-based)
	Name         string // Device name
	Manufacturer string // USB manufacturer string
	Product      string // USB product string
	SerialNumber string // USB serial number string
}

// SetFrequency stub method - stores frequency setting
func (d *Device) SetFrequency(freq uint32) error {
	d.frequency = freq
	return nil
}

// SetSampleRate stub method - stores sample rate setting
func (d *Device) SetSampleRate(rate uint32) error {
	if rate == 0 {
		return fmt.Errorf("failed to set sample rate to 0 Hz")
	}
	d.sampleRate = rate
	return nil
}

// SetGain stub method - stores gain setting; 0 selects AGC
func (d *Device) SetGain(gain float64) error {
	if gain == 0 {
		d.agc = true
		return nil
	}
	d.gain = int(gain * 10) // Store in tenths of dB
	d.agc = false
	return nil
}

// SetPPMCorrection stub method - stores ppm correction
func (d *Device) SetPPMCorrection(ppm int) error {
	d.ppm = ppm
	return nil
}

// ResetBuffer stub method - also rearms async delivery after a cancel
func (d *Device) ResetBuffer() error {
	d.cancelled.Store(false)
	d.counter = 0
	return nil
}

// ReadSync fills buf with the synthetic pattern: a repeating byte ramp on the
// I channel against a constant bias (silent) Q channel. The ramp phase
// carries across calls so consecutive reads produce a continuous stream.
func (d *Device) ReadSync(buf []byte) (int, error) {
	if d.cancelled.Load() {
		return 0, fmt.Errorf("failed to read samples: device cancelled")
	}
	d.fill(buf)
	return len(buf), nil
}

// ReadAsync delivers blockSize-byte buffers to fn until CancelAsync is
// called, mirroring the push model of the real driver. Delivery happens on
// the caller's goroutine.
func (d *Device) ReadAsync(fn ReadFunc, blockSize uint32) error {
	buf := make([]byte, blockSize)
	for !d.cancelled.Load() {
		d.fill(buf)
		fn(buf)
	}
	return nil
}

// CancelAsync stops async delivery and fails subsequent sync reads until the
// buffer is reset.
func (d *Device) CancelAsync() error {
	d.cancelled.Store(true)
	return nil
}

// fill writes the synthetic interleaved pattern into buf.
func (d *Device) fill(buf []byte) {
	for i := 0; i+1 < len(buf); i += 2 {
		buf[i] = d.counter
		buf[i+1] = 128
		d.counter++
	}
	if len(buf)%2 == 1 {
		buf[len(buf)-1] = d.counter
	}
}

// GetDeviceInfo stub method - returns mock device info for the opened index
func (d *Device) GetDeviceInfo() (string, error) {
	gain := fmt.Sprintf("%.1f dB", float64(d.gain)/10)
	if d.agc {
		gain = "auto"
	}
	return fmt.Sprintf("RTL-SDR Stub Device #%d (freq: %d Hz, rate: %d Hz, gain: %s)",
		d.index, d.frequency, d.sampleRate, gain), nil
}

// Close stub method - no-op for stub implementation
func (d *Device) Close() error {
	return nil
}
