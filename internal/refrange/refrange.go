// Package refrange parses free-text reference ranges from lab reports and
// classifies measured values against them.
package refrange

import (
	"regexp"
	"strconv"
	"strings"
)

// Flag values returned by Classify and ComputeFlag. An empty string means the
// value could not be classified.
const (
	FlagLow    = "low"
	FlagNormal = "normal"
	FlagHigh   = "high"
)

var (
	dualBoundPattern   = regexp.MustCompile(`(-?\d+(?:\.\d+)?)\s*-\s*(-?\d+(?:\.\d+)?)`)
	singleBoundPattern = regexp.MustCompile(`(<=|>=|<|>)\s*(-?\d+(?:\.\d+)?)`)
	numberPattern      = regexp.MustCompile(`-?\d+(?:\.\d+)?`)

	separatorReplacer = strings.NewReplacer("to", "-", "TO", "-", "–", "-", "—", "-")
)

// ParsedRange is a numeric interval derived from a reference-range string.
// A nil bound is open; a range with both bounds nil is unclassifiable.
type ParsedRange struct {
	Low  *float64
	High *float64
}

// Classify places value against the range. Both bounds are required; the
// interval is inclusive, so boundary values are normal.
func (r ParsedRange) Classify(value float64) string {
	if r.Low == nil || r.High == nil {
		return ""
	}
	if value < *r.Low {
		return FlagLow
	}
	if value > *r.High {
		return FlagHigh
	}
	return FlagNormal
}

// ParseRange extracts a numeric interval from arbitrary reference-range text.
// Malformed input degrades to the unclassifiable range, never an error.
func ParseRange(referenceRange string) ParsedRange {
	if referenceRange == "" {
		return ParsedRange{}
	}

	ref := strings.TrimSpace(separatorReplacer.Replace(referenceRange))

	if m := dualBoundPattern.FindStringSubmatch(ref); m != nil {
		low, lowOK := parseFloat(m[1])
		high, highOK := parseFloat(m[2])
		if lowOK && highOK {
			if low > high {
				low, high = high, low
			}
			return ParsedRange{Low: &low, High: &high}
		}
	}

	if m := singleBoundPattern.FindStringSubmatch(ref); m != nil {
		bound, ok := parseFloat(m[2])
		if !ok {
			return ParsedRange{}
		}
		switch m[1] {
		case ">", ">=":
			return ParsedRange{Low: &bound}
		case "<", "<=":
			return ParsedRange{High: &bound}
		}
	}

	// Last resort: the first two bare numbers anywhere in the string. This can
	// pick up stray numbers (dates, counts) but downstream behavior relies on
	// the permissive match.
	if nums := numberPattern.FindAllString(ref, 2); len(nums) >= 2 {
		first, firstOK := parseFloat(nums[0])
		second, secondOK := parseFloat(nums[1])
		if firstOK && secondOK {
			low, high := first, second
			if low > high {
				low, high = high, low
			}
			return ParsedRange{Low: &low, High: &high}
		}
	}

	return ParsedRange{}
}

// ComputeFlag classifies a textual value against a textual reference range.
// Either side failing to parse yields an empty flag.
func ComputeFlag(value, referenceRange string) string {
	numeric, ok := parseFloat(strings.TrimSpace(value))
	if !ok {
		return ""
	}

	parsed := ParseRange(referenceRange)
	if parsed.Low == nil || parsed.High == nil {
		return ""
	}

	return parsed.Classify(numeric)
}

func parseFloat(raw string) (float64, bool) {
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return val, true
}
