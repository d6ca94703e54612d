package audio

import "testing"

func TestBytesFromSamplesLittleEndian(t *testing.T) {
	samples := []int16{0x0102, -2, 0}
	got := bytesFromSamples(samples)

	expected := []byte{0x02, 0x01, 0xFE, 0xFF, 0x00, 0x00}
	if len(got) != len(expected) {
		t.Fatalf("expected %d bytes, got %d", len(expected), len(got))
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Fatalf("byte %d mismatch: expected %#x, got %#x", i, expected[i], got[i])
		}
	}
}

func TestBytesFromSamplesEmpty(t *testing.T) {
	got := bytesFromSamples(nil)
	if len(got) != 0 {
		t.Fatalf("expected no bytes for empty input, got %d", len(got))
	}
}

func TestDeviceInput(t *testing.T) {
	tests := []struct {
		name   string
		device Device
		want   bool
	}{
		{"microphone", Device{Name: "Microphone 1", MaxInputChannels: 1}, true},
		{"mapper", Device{Name: "Microsoft Sound Mapper - Input", MaxInputChannels: 2}, true},
		{"speaker", Device{Name: "Speaker", MaxOutputChannels: 2}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.device.Input(); got != tt.want {
				t.Errorf("Input() = %v, want %v", got, tt.want)
			}
		})
	}
}
