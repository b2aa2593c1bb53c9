// Package config provides configuration structures and defaults for iqwave
package config

// Block size limits for the capture buffer. Requests outside this range fall
// back to DefaultBlockSize rather than failing, since an out-of-range value is
// almost always an operator typo.
const (
	DefaultSampleRate = 2048000     // 2.048 MSps
	DefaultBlockSize  = 16 * 16384  // 262144 bytes per read
	MinBlockSize      = 512         // smallest USB transfer worth making
	MaxBlockSize      = 256 * 16384 // largest buffer the dongle will fill
)

// Config represents the complete application configuration. The mapstructure
// tags carry the viper key names; without them Unmarshal matches struct field
// names only and the underscore keys would silently decode to nothing.
type Config struct {
	RTLSDR  RTLSDRConfig  `mapstructure:"rtlsdr" yaml:"rtlsdr"`   // RTL-SDR device settings
	Capture CaptureConfig `mapstructure:"capture" yaml:"capture"` // Capture loop settings
}

// RTLSDRConfig contains RTL-SDR device configuration parameters
type RTLSDRConfig struct {
	Frequency     uint32  `mapstructure:"frequency" yaml:"frequency"`           // Center frequency in Hz
	SampleRate    uint32  `mapstructure:"sample_rate" yaml:"sample_rate"`       // Sample rate in Hz
	Gain          float64 `mapstructure:"gain" yaml:"gain"`                     // Tuner gain in dB (0 enables AGC)
	DeviceIndex   int     `mapstructure:"device_index" yaml:"device_index"`     // RTL-SDR device index (0-based)
	PPMCorrection int     `mapstructure:"ppm_correction" yaml:"ppm_correction"` // Frequency correction in PPM
}

// CaptureConfig contains capture loop configuration parameters
type CaptureConfig struct {
	BlockSize   uint32 `mapstructure:"block_size" yaml:"block_size"`     // Bytes per device read
	SampleCount uint64 `mapstructure:"sample_count" yaml:"sample_count"` // I/Q pairs to capture (0 = unbounded)
	SyncMode    bool   `mapstructure:"sync_mode" yaml:"sync_mode"`       // Force blocking reads instead of async delivery
	Output      string `mapstructure:"output" yaml:"output"`             // Output path ("-" writes to stdout)
}

// DefaultConfig returns a configuration with sensible default values
func DefaultConfig() *Config {
	return &Config{
		RTLSDR: RTLSDRConfig{
			Frequency:     100000000,         // 100 MHz
			SampleRate:    DefaultSampleRate, // 2.048 MSps
			Gain:          0,                 // Automatic gain
			DeviceIndex:   0,                 // First RTL-SDR device
			PPMCorrection: 0,                 // No frequency correction
		},
		Capture: CaptureConfig{
			BlockSize:   DefaultBlockSize, // 256 KiB reads
			SampleCount: 0,                // Unbounded capture
			SyncMode:    false,            // Async delivery by default
			Output:      "-",              // Stream to stdout
		},
	}
}

// ClampBlockSize validates a requested block size, substituting the default
// when the request is outside the supported range. The boolean reports whether
// the requested value was kept.
func ClampBlockSize(requested uint32) (uint32, bool) {
	if requested < MinBlockSize || requested > MaxBlockSize {
		return DefaultBlockSize, false
	}
	return requested, true
}
