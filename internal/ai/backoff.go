package ai

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	retryDelayFieldRe = regexp.MustCompile(`(?i)"retry_?delay"\s*:\s*"([^"]+)"`)
	retryInRe         = regexp.MustCompile(`(?i)retry in ([0-9.]+)\s*s`)
	isoDurationRe     = regexp.MustCompile(`^PT(?:([0-9.]+)H)?(?:([0-9.]+)M)?(?:([0-9.]+)S)?$`)
)

// parseRetryDelay extracts a provider-supplied retry hint from an error body.
// The hint appears either as a Go-style duration ("5s", "26.37s") or an
// ISO-8601-like duration ("PT5S"). Returns 0 when no hint is present.
func parseRetryDelay(body string) time.Duration {
	if m := retryDelayFieldRe.FindStringSubmatch(body); len(m) > 1 {
		if d := parseDelayValue(m[1]); d > 0 {
			return d
		}
	}
	if m := retryInRe.FindStringSubmatch(body); len(m) > 1 {
		if d := parseDelayValue(m[1] + "s"); d > 0 {
			return d
		}
	}
	return 0
}

func parseDelayValue(v string) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if strings.HasPrefix(strings.ToUpper(v), "PT") {
		return parseISODuration(strings.ToUpper(v))
	}
	d, err := time.ParseDuration(strings.ToLower(v))
	if err != nil || d < 0 {
		return 0
	}
	return d
}

func parseISODuration(v string) time.Duration {
	m := isoDurationRe.FindStringSubmatch(v)
	if m == nil {
		return 0
	}
	var total float64
	if m[1] != "" {
		h, _ := strconv.ParseFloat(m[1], 64)
		total += h * 3600
	}
	if m[2] != "" {
		mins, _ := strconv.ParseFloat(m[2], 64)
		total += mins * 60
	}
	if m[3] != "" {
		s, _ := strconv.ParseFloat(m[3], 64)
		total += s
	}
	return time.Duration(total * float64(time.Second))
}
