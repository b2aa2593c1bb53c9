// iqwave - an I/Q recorder for RTL2832-based receivers.
// Captures raw sample bytes from an RTL-SDR dongle, converts them from
// offset-binary to signed, and streams them into a WAV container while
// reporting per-channel power statistics.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"iqwave/internal/capture"
	"iqwave/internal/config"
	"iqwave/internal/rtlsdr"
	"iqwave/internal/version"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Command line flag variables
var (
	cfgFile     string  // Configuration file path
	frequency   uint32  // Center frequency in Hz
	sampleRate  uint32  // Sample rate in Hz
	deviceIndex int     // RTL-SDR device index
	gain        float64 // Tuner gain in dB (0 = auto)
	ppmError    int     // Frequency correction in PPM
	blockSize   uint32  // Bytes per device read
	sampleCount uint64  // I/Q pairs to capture (0 = infinite)
	syncMode    bool    // Force blocking reads
	listDevices bool    // List devices and exit
	showVersion bool    // Show version and exit
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "iqwave [output file | -]",
	Short: "I/Q recorder for RTL2832-based receivers",
	Long: `iqwave captures raw I/Q samples from an RTL-SDR dongle and records them
as a streaming WAV container with capture metadata in an auxi chunk.
An output file of '-' dumps samples to stdout. Per-channel peak and
peak-to-average power statistics are printed to stderr while recording.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if showVersion {
			fmt.Println(version.GetVersionInfo("iqwave"))
			return
		}

		if listDevices {
			if err := printDevices(); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			return
		}

		if len(args) == 0 {
			fmt.Fprintf(os.Stderr, "Error: output filename required (use '-' for stdout)\n")
			cmd.Usage()
			os.Exit(1)
		}

		if err := runCapture(args[0]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

// init initializes the CLI flags and configuration
func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./iqwave.yaml)")

	rootCmd.Flags().Uint32VarP(&frequency, "frequency", "f", 100000000, "frequency to tune to (Hz)")
	rootCmd.Flags().Uint32VarP(&sampleRate, "samplerate", "s", config.DefaultSampleRate, "sample rate (Hz)")
	rootCmd.Flags().IntVarP(&deviceIndex, "device", "d", 0, "device index")
	rootCmd.Flags().Float64VarP(&gain, "gain", "g", 0, "tuner gain in dB (0 for auto)")
	rootCmd.Flags().IntVarP(&ppmError, "ppm", "p", 0, "ppm error correction")
	rootCmd.Flags().Uint32VarP(&blockSize, "blocksize", "b", config.DefaultBlockSize, "output block size in bytes")
	rootCmd.Flags().Uint64VarP(&sampleCount, "samples", "n", 0, "number of sample pairs to read (0 for infinite)")
	rootCmd.Flags().BoolVarP(&syncMode, "sync", "S", false, "force sync output")
	rootCmd.Flags().BoolVarP(&listDevices, "list", "l", false, "list connected RTL-SDR devices and exit")
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "show version information")

	// Bind command line flags to viper configuration keys
	viper.BindPFlag("rtlsdr.frequency", rootCmd.Flags().Lookup("frequency"))
	viper.BindPFlag("rtlsdr.sample_rate", rootCmd.Flags().Lookup("samplerate"))
	viper.BindPFlag("rtlsdr.device_index", rootCmd.Flags().Lookup("device"))
	viper.BindPFlag("rtlsdr.gain", rootCmd.Flags().Lookup("gain"))
	viper.BindPFlag("rtlsdr.ppm_correction", rootCmd.Flags().Lookup("ppm"))
	viper.BindPFlag("capture.block_size", rootCmd.Flags().Lookup("blocksize"))
	viper.BindPFlag("capture.sample_count", rootCmd.Flags().Lookup("samples"))
	viper.BindPFlag("capture.sync_mode", rootCmd.Flags().Lookup("sync"))
}

// initConfig reads in config file and ENV variables if set
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Search for iqwave.yaml in current directory
		viper.SetConfigName("iqwave")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
	}

	// Read in environment variables that match
	viper.AutomaticEnv()

	// A config file is optional; flags and defaults cover everything
	viper.ReadInConfig()
}

// printDevices lists the connected RTL-SDR devices
func printDevices() error {
	devices, err := rtlsdr.ListDevices()
	if err != nil {
		return err
	}
	for _, d := range devices {
		fmt.Printf("%d: %s (%s %s, serial %s)\n",
			d.Index, d.Name, d.Manufacturer, d.Product, d.SerialNumber)
	}
	return nil
}

// runCapture is the main application logic
func runCapture(output string) error {
	cfg := config.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Capture.Output = output

	session := capture.NewSession(cfg)
	if err := session.Initialize(); err != nil {
		return err
	}
	defer session.Close()

	// Any interrupt path funnels through one cancellation token; the capture
	// loop checks it between buffers.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintf(os.Stderr, "\nSignal caught, exiting!\n")
		cancel()
	}()

	if err := session.Run(ctx); err != nil {
		return fmt.Errorf("capture failed: %w", err)
	}

	if ctx.Err() != nil {
		fmt.Fprintf(os.Stderr, "User cancel, exiting...\n")
	}
	fmt.Fprintf(os.Stderr, "Wrote %d sample bytes\n", session.BytesWritten())
	return nil
}

// main is the entry point of the application
func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
