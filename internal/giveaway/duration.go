package giveaway

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	durationGrammar = regexp.MustCompile(`^(?:\d+[smhdw])+$`)
	durationToken   = regexp.MustCompile(`(\d+)([smhdw])`)
)

var durationUnits = map[string]time.Duration{
	"s": time.Second,
	"m": time.Minute,
	"h": time.Hour,
	"d": 24 * time.Hour,
	"w": 7 * 24 * time.Hour,
}

var errEmptyDuration = errors.New("empty duration")

// ParseDuration accepts one or more integer+unit tokens such as "30s", "5m",
// "2d" or "1h30m". The result must be strictly positive.
func ParseDuration(text string) (time.Duration, error) {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return 0, errEmptyDuration
	}
	if !durationGrammar.MatchString(text) {
		return 0, fmt.Errorf("invalid duration %q: expected <number><s|m|h|d|w>", text)
	}

	var total time.Duration
	for _, match := range durationToken.FindAllStringSubmatch(text, -1) {
		value, err := strconv.ParseInt(match[1], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q: %w", text, err)
		}
		unit := durationUnits[match[2]]
		if value > int64(math.MaxInt64/unit) {
			return 0, fmt.Errorf("invalid duration %q: overflow", text)
		}
		step := time.Duration(value) * unit
		if total > math.MaxInt64-step {
			return 0, fmt.Errorf("invalid duration %q: overflow", text)
		}
		total += step
	}
	if total <= 0 {
		return 0, fmt.Errorf("invalid duration %q: must be positive", text)
	}
	return total, nil
}
