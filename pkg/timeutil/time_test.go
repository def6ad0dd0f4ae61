package timeutil_test

import (
	"regexp"
	"testing"
	"time"

	"github.com/Wind-318/baselib/pkg/timeutil"

	"github.com/stretchr/testify/require"
)

func TestTimestampOffset(t *testing.T) {
	t.Parallel()
	before := time.Now().Add(time.Hour)
	ts := timeutil.Timestamp(time.Hour)
	after := time.Now().Add(time.Hour)

	require.False(t, ts.Before(before.Add(-time.Second)))
	require.False(t, ts.After(after.Add(time.Second)))
	require.Equal(t, time.UTC, ts.Location())
}

func TestFormat(t *testing.T) {
	t.Parallel()
	ts := time.Date(2023, 2, 21, 8, 30, 15, 123_000_000, time.UTC)
	require.Equal(t, "2023-02-21 08:30:15.123", timeutil.Format(ts))

	// Non-UTC input is rendered in UTC.
	loc := time.FixedZone("UTC+8", 8*3600)
	require.Equal(t, "2023-02-21 08:30:15.123", timeutil.Format(ts.In(loc)))
}

func TestFormatNowShape(t *testing.T) {
	t.Parallel()
	shape := regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}\.\d{3}$`)
	require.Regexp(t, shape, timeutil.FormatNow())
}
