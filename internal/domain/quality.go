package domain

import "fmt"

// QualityCode selects which playback encoding variant to request upstream.
type QualityCode string

const (
	QualityM4A   QualityCode = "m4a"   // 96kbps AAC
	Quality128   QualityCode = "128"   // 128kbps MP3
	Quality320   QualityCode = "320"   // 320kbps MP3
	QualityFLAC  QualityCode = "flac"  // lossless FLAC
	QualityAPE   QualityCode = "ape"   // lossless APE
	QualityHiRes QualityCode = "hires" // 24bit/192kHz master
	QualityAtmos QualityCode = "atmos" // Dolby Atmos
)

// QualitySpec describes how a quality tier maps onto the upstream file
// naming scheme and whether it is gated behind a VIP session.
type QualitySpec struct {
	Prefix      string
	Ext         string
	RequiresVIP bool
}

var qualitySpecs = map[QualityCode]QualitySpec{
	QualityM4A:   {Prefix: "C400", Ext: "m4a"},
	Quality128:   {Prefix: "M500", Ext: "mp3"},
	Quality320:   {Prefix: "M800", Ext: "mp3", RequiresVIP: true},
	QualityFLAC:  {Prefix: "F000", Ext: "flac", RequiresVIP: true},
	QualityAPE:   {Prefix: "A000", Ext: "ape", RequiresVIP: true},
	QualityHiRes: {Prefix: "RS01", Ext: "flac", RequiresVIP: true},
	QualityAtmos: {Prefix: "Q001", Ext: "flac", RequiresVIP: true},
}

// AllQualities lists every known quality code in ascending fidelity order.
var AllQualities = []QualityCode{
	QualityM4A,
	Quality128,
	Quality320,
	QualityFLAC,
	QualityAPE,
	QualityHiRes,
	QualityAtmos,
}

// ParseQuality validates a caller-provided quality string. An empty value
// defaults to Quality128, matching the upstream service's baseline tier.
func ParseQuality(raw string) (QualityCode, error) {
	if raw == "" {
		return Quality128, nil
	}
	code := QualityCode(raw)
	if _, ok := qualitySpecs[code]; !ok {
		return "", E(CodeInvalidArgument, "", fmt.Sprintf("unknown quality %q", raw), nil)
	}
	return code, nil
}

// Spec returns the upstream mapping for the quality code.
func (q QualityCode) Spec() QualitySpec {
	return qualitySpecs[q]
}

// RequiresVIP reports whether the tier needs an authenticated session.
func (q QualityCode) RequiresVIP() bool {
	return qualitySpecs[q].RequiresVIP
}

// Filename builds the upstream media filename for a song mid. The mid is
// doubled in the name, which is how the vkey endpoint expects it.
func (q QualityCode) Filename(songMid string) string {
	spec := qualitySpecs[q]
	return fmt.Sprintf("%s%s%s.%s", spec.Prefix, songMid, songMid, spec.Ext)
}
