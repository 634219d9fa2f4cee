// Package source defines the domain models and collaborator interfaces for playable source discovery.
package source

import (
	"regexp"
	"strconv"
)

// UnreachablePing is the sentinel latency recorded for candidates whose
// probe failed or timed out.
const UnreachablePing = 9999

// Quality is a coarse resolution bucket.
type Quality string

const (
	Quality4K      Quality = "4K"
	Quality2K      Quality = "2K"
	Quality1080p   Quality = "1080p"
	Quality720p    Quality = "720p"
	Quality480p    Quality = "480p"
	QualitySD      Quality = "SD"
	QualityUnknown Quality = "unknown"
)

// QualityFromHeight buckets a vertical resolution in pixels.
func QualityFromHeight(h int) Quality {
	switch {
	case h >= 2160:
		return Quality4K
	case h >= 1440:
		return Quality2K
	case h >= 1080:
		return Quality1080p
	case h >= 720:
		return Quality720p
	case h >= 480:
		return Quality480p
	case h > 0:
		return QualitySD
	default:
		return QualityUnknown
	}
}

// SpeedUnknown is the LoadSpeed value recorded when throughput was not measured.
const SpeedUnknown = "unknown"

var speedPattern = regexp.MustCompile(`^([\d.]+)\s*(KB/s|MB/s)$`)

// ParseSpeedKBps converts a throughput string ("2.5 MB/s", "800 KB/s") to
// KB/s. Unknown or malformed strings yield zero.
func ParseSpeedKBps(s string) float64 {
	match := speedPattern.FindStringSubmatch(s)
	if match == nil {
		return 0
	}
	value, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 0
	}
	if match[2] == "MB/s" {
		value *= 1024
	}
	return value
}

// Measurement is the probing outcome for one candidate. Every candidate
// submitted for probing receives exactly one, success or failure-sentinel,
// so callers can always fall back to the first candidate deterministically.
type Measurement struct {
	// PingMs is the round-trip availability latency; UnreachablePing means
	// the probe failed.
	PingMs int `json:"ping_ms"`
	// Quality is the measured resolution bucket, QualityUnknown under
	// lightweight strategies.
	Quality Quality `json:"quality"`
	// LoadSpeed is the measured throughput with unit, or SpeedUnknown.
	LoadSpeed string `json:"load_speed"`
	// Available flags reachability.
	Available bool `json:"available"`
}

// Unreachable returns the failure-sentinel measurement.
func Unreachable() Measurement {
	return Measurement{
		PingMs:    UnreachablePing,
		Quality:   QualityUnknown,
		LoadSpeed: SpeedUnknown,
		Available: false,
	}
}

// SpeedKBps returns the measurement's throughput in KB/s, zero when unknown.
func (m Measurement) SpeedKBps() float64 {
	return ParseSpeedKBps(m.LoadSpeed)
}
