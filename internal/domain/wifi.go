package domain

import "time"

// Band identifies a wifi frequency band
type Band string

const (
	Band2G Band = "2.4GHz"
	Band5G Band = "5GHz"
	Band6G Band = "6GHz"
)

// WifiNetworkObservation is a single network seen during an environment scan
type WifiNetworkObservation struct {
	BSSID     string  `json:"bssid"`
	SSID      string  `json:"ssid"`
	Hidden    bool    `json:"hidden"`
	SignalDBM float64 `json:"signal_dbm"`
	SignalPct int     `json:"signal_pct"`
	FreqMHz   int     `json:"freq_mhz"`
	Channel   int     `json:"channel"`
	Band      Band    `json:"band"`
	Security  string  `json:"security"`
}

// ChannelStat is the congestion score computed for one channel
type ChannelStat struct {
	Channel      int     `json:"channel"`
	Band         Band    `json:"band"`
	NetworkCount int     `json:"network_count"`
	AvgSignalDBM float64 `json:"avg_signal_dbm"`
	Utilization  int     `json:"utilization"`
}

// ChannelRecommendation is per-band advice derived from channel stats
type ChannelRecommendation struct {
	Band        Band     `json:"band"`
	Severity    Severity `json:"severity"`
	Message     string   `json:"message"`
	BestChannel int      `json:"best_channel,omitempty"`
}

// OverlapGroup is a cluster of mutually interfering 2.4GHz channels
type OverlapGroup struct {
	Channels    []int `json:"channels"`
	Utilization int   `json:"utilization"`
}

// ScanReport is the full result of a wifi environment scan
type ScanReport struct {
	ScannedAt       time.Time                `json:"scanned_at"`
	Interface       string                   `json:"interface"`
	Networks        []WifiNetworkObservation `json:"networks"`
	Channels        map[Band][]ChannelStat   `json:"channels"`
	Recommendations []ChannelRecommendation  `json:"recommendations"`
	Overlaps        []OverlapGroup           `json:"overlaps,omitempty"`
}

// Frequencies for 2.4GHz channels 1-14. 5GHz channels follow the
// 5000 + 5*channel arithmetic instead.
var freq2G = map[int]int{
	1: 2412, 2: 2417, 3: 2422, 4: 2427, 5: 2432, 6: 2437, 7: 2442,
	8: 2447, 9: 2452, 10: 2457, 11: 2462, 12: 2467, 13: 2472, 14: 2484,
}

// BandForFreq classifies a frequency in MHz into a band
func BandForFreq(freqMHz int) Band {
	switch {
	case freqMHz < 3000:
		return Band2G
	case freqMHz < 6000:
		return Band5G
	default:
		return Band6G
	}
}

// ChannelForFreq derives the channel number from a frequency in MHz.
// Returns 0 when the frequency maps to no known channel.
func ChannelForFreq(freqMHz int) int {
	if freqMHz < 3000 {
		for ch, f := range freq2G {
			if f == freqMHz {
				return ch
			}
		}
		return 0
	}
	if freqMHz < 6000 {
		return (freqMHz - 5000) / 5
	}
	// 6GHz channels start at 5950MHz per 802.11ax
	return (freqMHz - 5950) / 5
}

// FreqForChannel2G returns the center frequency for a 2.4GHz channel,
// or 0 for channels outside 1-14.
func FreqForChannel2G(channel int) int {
	return freq2G[channel]
}

// SignalPercent converts a dBm reading to a 0-100 quality percentage
func SignalPercent(dbm float64) int {
	pct := int((dbm + 100) * 100 / 70)
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}
