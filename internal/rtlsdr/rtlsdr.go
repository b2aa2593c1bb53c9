//go:build rtlsdr

// Package rtlsdr provides the RTL-SDR device interface for the capture
// pipeline. This file is only compiled when the "rtlsdr" build tag is
// specified.
package rtlsdr

import (
	"fmt"

	"github.com/jpoirier/gortlsdr"
)

// Device represents an RTL-SDR device and its configuration
type Device struct {
	dev        *rtlsdr.Context // RTL-SDR device context
	index      int             // Index the device was opened with
	frequency  uint32          // Current tuned frequency in Hz
	sampleRate uint32          // Current sample rate in Hz
	gain       int             // Current gain in tenths of dB
	agc        bool            // Whether tuner AGC is active
}

// ReadFunc is invoked once per delivered buffer in async mode. The buffer is
// only valid for the duration of the call.
type ReadFunc func(buf []byte)

// NewDevice opens the RTL-SDR device at the given 0-based index.
func NewDevice(deviceIndex int) (*Device, error) {
	count := rtlsdr.GetDeviceCount()
	if count == 0 {
		return nil, fmt.Errorf("no RTL-SDR devices found")
	}

	if deviceIndex >= count {
		return nil, fmt.Errorf("device index %d out of range (found %d devices)", deviceIndex, count)
	}

	dev, err := rtlsdr.Open(deviceIndex)
	if err != nil {
		return nil, fmt.Errorf("failed to open RTL-SDR device: %w", err)
	}

	return &Device{dev: dev, index: deviceIndex}, nil
}

// ListDevices returns information about all available RTL-SDR devices
func ListDevices() ([]DeviceInfo, error) {
	count := rtlsdr.GetDeviceCount()
	if count == 0 {
		return nil, fmt.Errorf("no RTL-SDR devices found")
	}

	devices := make([]DeviceInfo, 0, count)
	for i := 0; i < count; i++ {
		manufacturer, product, serial, err := rtlsdr.GetDeviceUsbStrings(i)
		if err != nil {
			devices = append(devices, DeviceInfo{
				Index:        i,
				Name:         rtlsdr.GetDeviceName(i),
				Manufacturer: "Unknown",
				Product:      "Unknown",
				SerialNumber: "Unknown",
			})
			continue
		}

		devices = append(devices, DeviceInfo{
			Index:        i,
			Name:         rtlsdr.GetDeviceName(i),
			Manufacturer: manufacturer,
			Product:      product,
			SerialNumber: serial,
		})
	}

	return devices, nil
}

// DeviceInfo contains information about an RTL-SDR device
type DeviceInfo struct {
	Index        int    // Device index (0-based)
	Name         string // Device name
	Manufacturer string // USB manufacturer string
	Product      string // USB product string
	SerialNumber string // USB serial number string
}

// SetFrequency sets the center frequency of the RTL-SDR device
// freq: frequency in Hz
func (d *Device) SetFrequency(freq uint32) error {
	if err := d.dev.SetCenterFreq(int(freq)); err != nil {
		return fmt.Errorf("failed to set frequency to %d Hz: %w", freq, err)
	}
	d.frequency = freq
	return nil
}

// SetSampleRate sets the sample rate of the RTL-SDR device
// rate: sample rate in Hz (samples per second)
func (d *Device) SetSampleRate(rate uint32) error {
	if err := d.dev.SetSampleRate(int(rate)); err != nil {
		return fmt.Errorf("failed to set sample rate to %d Hz: %w", rate, err)
	}
	d.sampleRate = rate
	return nil
}

// SetGain sets the tuner gain. A gain of 0 enables automatic gain control;
// any other value switches to manual mode at that gain in dB.
func (d *Device) SetGain(gain float64) error {
	if gain == 0 {
		// Note: SetTunerGainMode expects false for AGC enabled
		if err := d.dev.SetTunerGainMode(false); err != nil {
			return fmt.Errorf("failed to enable AGC: %w", err)
		}
		d.agc = true
		return nil
	}

	if err := d.dev.SetTunerGainMode(true); err != nil {
		return fmt.Errorf("failed to set manual gain mode: %w", err)
	}

	// Convert gain from dB to tenths of dB (RTL-SDR API requirement)
	gainTenthsDB := int(gain * 10)
	if err := d.dev.SetTunerGain(gainTenthsDB); err != nil {
		return fmt.Errorf("failed to set gain to %.1f dB: %w", gain, err)
	}
	d.gain = gainTenthsDB
	d.agc = false
	return nil
}

// SetPPMCorrection sets the frequency correction in parts per million.
func (d *Device) SetPPMCorrection(ppm int) error {
	if ppm == 0 {
		return nil
	}
	if err := d.dev.SetFreqCorrection(ppm); err != nil {
		return fmt.Errorf("failed to set ppm correction to %d: %w", ppm, err)
	}
	return nil
}

// ResetBuffer flushes the device's internal sample buffer. Mandatory before
// the first read or stale samples leak into the capture.
func (d *Device) ResetBuffer() error {
	if err := d.dev.ResetBuffer(); err != nil {
		return fmt.Errorf("failed to reset buffer: %w", err)
	}
	return nil
}

// ReadSync blocks until the device fills buf or fails, returning the number
// of bytes read.
func (d *Device) ReadSync(buf []byte) (int, error) {
	n, err := d.dev.ReadSync(buf, len(buf))
	if err != nil {
		return n, fmt.Errorf("failed to read samples: %w", err)
	}
	return n, nil
}

// ReadAsync hands the USB transfer loop to the driver, invoking fn once per
// delivered buffer of blockSize bytes. Blocks until CancelAsync is called or
// the driver fails.
func (d *Device) ReadAsync(fn ReadFunc, blockSize uint32) error {
	cb := func(buf []byte, userctx *rtlsdr.UserCtx) {
		fn(buf)
	}
	if err := d.dev.ReadAsync(cb, nil, 0, int(blockSize)); err != nil {
		return fmt.Errorf("async read failed: %w", err)
	}
	return nil
}

// CancelAsync asks the driver to abandon further buffer delivery. Safe to
// call from a signal handler path while ReadAsync is blocked.
func (d *Device) CancelAsync() error {
	return d.dev.CancelAsync()
}

// GetDeviceInfo returns a formatted string describing the opened device
func (d *Device) GetDeviceInfo() (string, error) {
	name, _, _, err := rtlsdr.GetDeviceUsbStrings(d.index)
	if err != nil {
		return "", fmt.Errorf("failed to get device info: %w", err)
	}
	gain := fmt.Sprintf("%.1f dB", float64(d.gain)/10)
	if d.agc {
		gain = "auto"
	}
	return fmt.Sprintf("%s #%d (freq: %d Hz, rate: %d Hz, gain: %s)",
		name, d.index, d.frequency, d.sampleRate, gain), nil
}

// Close properly closes the RTL-SDR device and releases resources
func (d *Device) Close() error {
	if d.dev != nil {
		return d.dev.Close()
	}
	return nil
}
