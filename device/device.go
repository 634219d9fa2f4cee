// Package device classifies the runtime environment into a capability tier
// used to pick a probing strategy. Classification is a pure function of an
// explicitly passed user agent and touch point count, evaluated once per
// resolution session.
package device

import "regexp"

// Tier is a device-capability classification.
type Tier string

const (
	// TierConstrained covers tablet-class devices prone to crashing when
	// concurrent media probes allocate buffers.
	TierConstrained Tier = "constrained"
	// TierMobile covers phone-class devices that tolerate cheap probes only.
	TierMobile Tier = "mobile"
	// TierDesktop covers everything else.
	TierDesktop Tier = "desktop"
)

var (
	tabletPattern    = regexp.MustCompile(`(?i)iPad`)
	macintoshPattern = regexp.MustCompile(`Macintosh`)
	mobilePattern    = regexp.MustCompile(`(?i)Android|webOS|iPhone|iPod|BlackBerry|IEMobile|Opera Mini`)
)

// Classify maps a user agent and touch point count to a tier. Rules are
// evaluated in order: iPads (including desktop-mode iPads reporting as
// Macintosh with a touch screen) are constrained; known mobile OS/browser
// tokens are mobile; everything else is desktop.
func Classify(userAgent string, touchPoints int) Tier {
	switch {
	case tabletPattern.MatchString(userAgent),
		macintoshPattern.MatchString(userAgent) && touchPoints >= 1:
		return TierConstrained
	case mobilePattern.MatchString(userAgent):
		return TierMobile
	default:
		return TierDesktop
	}
}
