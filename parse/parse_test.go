package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transitcore/raptor/testutil"
)

func writeGTFSDir(t *testing.T, files map[string]string) string {
	return testutil.WriteGTFSDir(t, files)
}

func minimalFeed() map[string]string {
	return testutil.MinimalFeedFiles()
}

func TestParseDirectory(t *testing.T) {
	dir := writeGTFSDir(t, minimalFeed())

	fs, digest, err := ParseDirectory(dir)
	require.NoError(t, err)
	assert.NotEmpty(t, digest)
	assert.Len(t, fs.Agencies, 1)
	assert.Len(t, fs.Routes, 1)
	assert.Len(t, fs.Stops, 2)
	assert.Len(t, fs.Trips, 1)
	assert.Len(t, fs.StopTimes, 2)
	assert.Equal(t, "America/Los_Angeles", fs.Timezone)
}

func TestParseDirectoryDigestIsStable(t *testing.T) {
	dir := writeGTFSDir(t, minimalFeed())

	_, digest1, err := ParseDirectory(dir)
	require.NoError(t, err)
	_, digest2, err := ParseDirectory(dir)
	require.NoError(t, err)
	assert.Equal(t, digest1, digest2)
}

func TestParseDirectoryMissingRequiredFile(t *testing.T) {
	files := minimalFeed()
	delete(files, "stop_times.txt")
	dir := writeGTFSDir(t, files)

	_, _, err := ParseDirectory(dir)
	require.Error(t, err)
}

func TestParseDirectoryMissingCalendarAndCalendarDates(t *testing.T) {
	files := minimalFeed()
	delete(files, "calendar.txt")
	dir := writeGTFSDir(t, files)

	_, _, err := ParseDirectory(dir)
	require.Error(t, err)
}

func TestParseDirectoryCalendarDatesOnly(t *testing.T) {
	files := minimalFeed()
	delete(files, "calendar.txt")
	files["calendar_dates.txt"] = `
service_id,date,exception_type
svc,20260704,1`
	dir := writeGTFSDir(t, files)

	fs, _, err := ParseDirectory(dir)
	require.NoError(t, err)
	assert.Len(t, fs.CalendarDates, 1)
}
