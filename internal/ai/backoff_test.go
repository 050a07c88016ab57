package ai

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseRetryDelay(t *testing.T) {
	cases := []struct {
		name string
		body string
		want time.Duration
	}{
		{
			name: "go style retryDelay field",
			body: `{"error":{"code":429,"details":[{"retryDelay":"5s"}]}}`,
			want: 5 * time.Second,
		},
		{
			name: "snake case field",
			body: `{"error":{"retry_delay":"26.37s"}}`,
			want: time.Duration(26.37 * float64(time.Second)),
		},
		{
			name: "iso 8601 seconds",
			body: `{"retryDelay":"PT5S"}`,
			want: 5 * time.Second,
		},
		{
			name: "iso 8601 minutes and seconds",
			body: `{"retryDelay":"PT1M30S"}`,
			want: 90 * time.Second,
		},
		{
			name: "prose hint",
			body: `Resource exhausted. Please retry in 12.5 seconds.`,
			want: time.Duration(12.5 * float64(time.Second)),
		},
		{
			name: "no hint",
			body: `{"error":{"code":429,"message":"rate limit exceeded"}}`,
			want: 0,
		},
		{
			name: "unparseable value",
			body: `{"retryDelay":"soon"}`,
			want: 0,
		},
		{
			name: "empty body",
			body: "",
			want: 0,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, parseRetryDelay(tc.body))
		})
	}
}

func TestParseISODuration(t *testing.T) {
	assert.Equal(t, time.Hour+30*time.Minute, parseISODuration("PT1H30M"))
	assert.Equal(t, 500*time.Millisecond, parseISODuration("PT0.5S"))
	assert.Equal(t, time.Duration(0), parseISODuration("5s"))
}
