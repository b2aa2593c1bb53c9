//go:build !rtlsdr

package rtlsdr

import (
	"strings"
	"testing"
)

func TestDeviceInfoReflectsOpenedIndex(t *testing.T) {
	d, err := NewDevice(3)
	if err != nil {
		t.Fatalf("NewDevice failed: %v", err)
	}
	defer d.Close()

	info, err := d.GetDeviceInfo()
	if err != nil {
		t.Fatalf("GetDeviceInfo failed: %v", err)
	}
	if !strings.Contains(info, "#3") {
		t.Errorf("device info should name the opened index, got %q", info)
	}
}

func TestNewDeviceRejectsNegativeIndex(t *testing.T) {
	if _, err := NewDevice(-1); err == nil {
		t.Error("expected an error for a negative device index")
	}
}
