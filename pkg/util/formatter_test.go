package util

import (
	"strings"
	"testing"
)

func TestFormatValueFactor(t *testing.T) {
	tests := []struct {
		value float64
		unit  string
		want  string
	}{
		{0, "V", "0.000 V"},
		{5, "V", "5.000 V"},
		{1.5e-3, "V", "1.500 mV"},
		{-2e-6, "A", "-2.000 uA"},
		{3.3e-9, "V", "3.300 nV"},
		{4.7e-12, "A", "4.700 pA"},
		{2.2e3, "V", "2.200 kV"},
		{1e7, "V", "10.000 MV"},
		{1e-15, "V", "1.000e-15 V"},
	}
	for _, tt := range tests {
		if got := FormatValueFactor(tt.value, tt.unit); got != tt.want {
			t.Errorf("FormatValueFactor(%g, %q) = %q, want %q", tt.value, tt.unit, got, tt.want)
		}
	}
}

func TestFormatFrequency(t *testing.T) {
	if got := FormatFrequency(1500); got != "  1.500 kHz" {
		t.Errorf("FormatFrequency(1500) = %q", got)
	}
	if got := FormatFrequency(2e6); got != "  2.000 MHz" {
		t.Errorf("FormatFrequency(2e6) = %q", got)
	}
}

func TestFormatPhasor(t *testing.T) {
	got := FormatPhasor("V(2)", complex(0, 2))
	if !strings.HasPrefix(got, "V(2)=") || !strings.HasSuffix(got, "  90.0deg") {
		t.Errorf("FormatPhasor() = %q", got)
	}
}

func TestFormatDensity(t *testing.T) {
	if got := FormatDensity(4e-9, "V"); got != "4.000 nV/rtHz" {
		t.Errorf("FormatDensity() = %q", got)
	}
}
