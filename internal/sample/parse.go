// Package sample turns raw device lines into timestamped two-channel readings.
package sample

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// Sample is one timestamped pair of channel readings.
type Sample struct {
	Time time.Time
	V1   float64
	V2   float64
}

var labeled = regexp.MustCompile(`v1\s*=\s*([-+]?\d*\.?\d+)\s*,\s*v2\s*=\s*([-+]?\d*\.?\d+)`)

// Parse interprets line as a Sample stamped with the current time.
func Parse(line string) (Sample, bool) {
	return ParseAt(line, time.Now())
}

// ParseAt interprets line as a Sample stamped with now. Lines of the form
// "v1=A, v2=B" are tried first, then bare "A,B[,...]". Anything else is rejected.
func ParseAt(line string, now time.Time) (Sample, bool) {
	if m := labeled.FindStringSubmatch(line); m != nil {
		return build(now, m[1], m[2])
	}

	parts := strings.Split(stripSpace(line), ",")
	if len(parts) < 2 {
		return Sample{}, false
	}
	return build(now, parts[0], parts[1])
}

func build(now time.Time, a, b string) (Sample, bool) {
	v1, ok := parseFloat(a)
	if !ok {
		return Sample{}, false
	}
	v2, ok := parseFloat(b)
	if !ok {
		return Sample{}, false
	}
	return Sample{Time: now, V1: v1, V2: v2}, true
}

// parseFloat accepts plain decimal notation only; hex floats and digit
// separators are rejected.
func parseFloat(s string) (float64, bool) {
	if strings.ContainsAny(s, "xXpP_") {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
