// Package capture drives the sample pipeline: device buffers flow through the
// power monitor and the offset-binary converter into the container writer.
package capture

import (
	"context"
	"fmt"
	"io"
	"os"

	"iqwave/internal/config"
	"iqwave/internal/dsp"
	"iqwave/internal/rtlsdr"
	"iqwave/internal/wavfile"
)

const bitsPerSample = 8

// Session owns the device handle and the output destination for one capture.
// All pipeline components run sequentially on whichever goroutine owns the
// current buffer; at most one buffer is in flight at a time.
type Session struct {
	cfg     *config.Config
	dev     *rtlsdr.Device
	writer  *wavfile.Writer
	monitor *dsp.PowerMonitor
	diag    io.Writer

	blockSize    uint32
	limited      bool
	bytesLeft    uint64
	bytesWritten uint64
}

// NewSession creates a capture session for the given configuration.
// Diagnostics (power reports and operator warnings) go to stderr unless
// redirected with SetDiagnostics before Initialize.
func NewSession(cfg *config.Config) *Session {
	return &Session{
		cfg:  cfg,
		diag: os.Stderr,
	}
}

// SetDiagnostics redirects operator-visible diagnostic output. Must be called
// before Initialize.
func (s *Session) SetDiagnostics(w io.Writer) {
	s.diag = w
}

// Initialize opens and configures the device, opens the output destination,
// and writes the container header. After a successful Initialize the session
// must be Closed even if Run is never called.
func (s *Session) Initialize() error {
	blockSize, kept := config.ClampBlockSize(s.cfg.Capture.BlockSize)
	if !kept {
		fmt.Fprintf(s.diag, "Output block size wrong value, falling back to default\n")
		fmt.Fprintf(s.diag, "Minimal length: %d\n", config.MinBlockSize)
		fmt.Fprintf(s.diag, "Maximal length: %d\n", config.MaxBlockSize)
	}
	s.blockSize = blockSize

	var err error
	s.dev, err = rtlsdr.NewDevice(s.cfg.RTLSDR.DeviceIndex)
	if err != nil {
		return fmt.Errorf("failed to initialize RTL-SDR by index %d: %w", s.cfg.RTLSDR.DeviceIndex, err)
	}

	if err := s.dev.SetSampleRate(s.cfg.RTLSDR.SampleRate); err != nil {
		return fmt.Errorf("failed to set RTL-SDR sample rate: %w", err)
	}

	if err := s.dev.SetFrequency(s.cfg.RTLSDR.Frequency); err != nil {
		return fmt.Errorf("failed to set RTL-SDR frequency: %w", err)
	}

	if err := s.dev.SetGain(s.cfg.RTLSDR.Gain); err != nil {
		return fmt.Errorf("failed to set RTL-SDR gain: %w", err)
	}

	if err := s.dev.SetPPMCorrection(s.cfg.RTLSDR.PPMCorrection); err != nil {
		return fmt.Errorf("failed to set RTL-SDR ppm correction: %w", err)
	}

	if info, err := s.dev.GetDeviceInfo(); err == nil {
		fmt.Fprintf(s.diag, "Device: %s\n", info)
	}

	s.writer, err = wavfile.Open(s.cfg.Capture.Output)
	if err != nil {
		return fmt.Errorf("failed to open output: %w", err)
	}

	if err := s.writer.WriteHeader(s.cfg.RTLSDR.SampleRate, s.cfg.RTLSDR.Frequency, bitsPerSample); err != nil {
		return err
	}

	s.monitor = dsp.NewPowerMonitor(s.cfg.RTLSDR.SampleRate, dsp.DefaultReportInterval, s.diag)

	// A sample pair is one byte of I and one byte of Q.
	if s.cfg.Capture.SampleCount > 0 {
		s.limited = true
		s.bytesLeft = 2 * s.cfg.Capture.SampleCount
	}

	return nil
}

// Run captures until the byte budget is exhausted, the context is cancelled,
// or the stream fails. Cancellation is a clean return; the container stays
// parseable up to the truncation point because its size fields are streaming
// sentinels.
func (s *Session) Run(ctx context.Context) error {
	// Flush stale samples before the first read (mandatory).
	if err := s.dev.ResetBuffer(); err != nil {
		return err
	}

	if s.cfg.Capture.SyncMode {
		fmt.Fprintf(s.diag, "Reading samples in sync mode...\n")
		return s.runSync(ctx)
	}
	fmt.Fprintf(s.diag, "Reading samples in async mode...\n")
	return s.runAsync(ctx)
}

// BytesWritten reports how many sample bytes have been appended to the
// container so far.
func (s *Session) BytesWritten() uint64 {
	return s.bytesWritten
}

// processBuffer runs one buffer through the pipeline: clamp to the remaining
// byte budget, accumulate power statistics on the raw bytes, convert to
// signed in place, append to the container. Returns done=true when the budget
// is exhausted.
func (s *Session) processBuffer(buf []byte) (done bool, err error) {
	if s.limited {
		if s.bytesLeft == 0 {
			return true, nil
		}
		if uint64(len(buf)) >= s.bytesLeft {
			buf = buf[:s.bytesLeft]
			done = true
		}
	}

	s.monitor.Process(buf)
	dsp.SignedFromOffsetBinary(buf)

	if err := s.writer.WriteSamples(buf); err != nil {
		return true, err
	}
	s.bytesWritten += uint64(len(buf))
	if s.limited {
		s.bytesLeft -= uint64(len(buf))
	}
	return done, nil
}

// runSync pulls buffers with blocking reads on the calling goroutine.
func (s *Session) runSync(ctx context.Context) error {
	buf := make([]byte, s.blockSize)
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		n, err := s.dev.ReadSync(buf)
		if err != nil {
			return fmt.Errorf("sync read failed: %w", err)
		}

		done, err := s.processBuffer(buf[:n])
		if err != nil {
			return err
		}
		if done {
			return nil
		}

		// A partial transfer cannot be resynchronized; stop rather than
		// stitch a gap into the stream.
		if uint32(n) < s.blockSize {
			return fmt.Errorf("short read, samples lost")
		}
	}
}

// runAsync lets the driver push buffers into the pipeline from its own
// delivery goroutine. Context cancellation and pipeline failures both funnel
// through CancelAsync to stop delivery.
func (s *Session) runAsync(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		<-ctx.Done()
		s.dev.CancelAsync()
	}()

	var pipeErr error
	err := s.dev.ReadAsync(func(buf []byte) {
		if ctx.Err() != nil {
			return
		}

		done, err := s.processBuffer(buf)
		if err != nil {
			pipeErr = err
		}
		if done || err != nil {
			cancel()
		}
	}, s.blockSize)

	if pipeErr != nil {
		return pipeErr
	}
	if err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

// Close releases the device and the output destination. Best effort: both are
// attempted even if one fails.
func (s *Session) Close() error {
	var errs []error

	if s.dev != nil {
		if err := s.dev.Close(); err != nil {
			errs = append(errs, fmt.Errorf("RTL-SDR close error: %w", err))
		}
	}

	if s.writer != nil {
		if err := s.writer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("output close error: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("cleanup errors: %v", errs)
	}
	return nil
}
