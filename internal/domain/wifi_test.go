package domain

import "testing"

func TestBandForFreq(t *testing.T) {
	tests := []struct {
		name string
		freq int
		want Band
	}{
		{"channel 6", 2437, Band2G},
		{"channel 14", 2484, Band2G},
		{"channel 36", 5180, Band5G},
		{"channel 149", 5745, Band5G},
		{"6ghz", 6115, Band6G},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BandForFreq(tt.freq); got != tt.want {
				t.Errorf("BandForFreq(%d) = %s, want %s", tt.freq, got, tt.want)
			}
		})
	}
}

func TestChannelForFreq(t *testing.T) {
	tests := []struct {
		name string
		freq int
		want int
	}{
		{"2.4ghz channel 1", 2412, 1},
		{"2.4ghz channel 6", 2437, 6},
		{"2.4ghz channel 14", 2484, 14},
		{"unknown 2.4ghz freq", 2500, 0},
		{"5ghz channel 36", 5180, 36},
		{"5ghz channel 149", 5745, 149},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ChannelForFreq(tt.freq); got != tt.want {
				t.Errorf("ChannelForFreq(%d) = %d, want %d", tt.freq, got, tt.want)
			}
		})
	}
}

func TestFreqForChannel2G(t *testing.T) {
	if got := FreqForChannel2G(6); got != 2437 {
		t.Errorf("FreqForChannel2G(6) = %d, want 2437", got)
	}
	if got := FreqForChannel2G(15); got != 0 {
		t.Errorf("FreqForChannel2G(15) = %d, want 0", got)
	}
}

func TestSignalPercent(t *testing.T) {
	tests := []struct {
		name string
		dbm  float64
		want int
	}{
		{"strong", -30, 100},
		{"mid", -65, 50},
		{"weak", -90, 14},
		{"floor", -120, 0},
		{"ceiling", 0, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SignalPercent(tt.dbm); got != tt.want {
				t.Errorf("SignalPercent(%v) = %d, want %d", tt.dbm, got, tt.want)
			}
		})
	}
}
