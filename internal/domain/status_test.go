package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeStatus_Synonyms(t *testing.T) {
	cases := []struct {
		raw  string
		want Status
	}{
		{"pending", StatusPending},
		{"PENDING", StatusPending},
		{"  Pending  ", StatusPending},
		{"idle", StatusIdle},
		{"Idle", StatusIdle},
		{"ideal", StatusIdle},
		{"IDEAL ", StatusIdle},
		{"work stopped", StatusWorkStopped},
		{"work_stopped", StatusWorkStopped},
		{"work-stopped", StatusWorkStopped},
		{"Work  Stopped", StatusWorkStopped},
		{"completed", StatusCompleted},
		{"complete", StatusCompleted},
		{"Completed", StatusCompleted},
		{"in progress", StatusInProgress},
		{"in-progress", StatusInProgress},
		{"in_progress", StatusInProgress},
		{"IN PROGRESS", StatusInProgress},
		{"in__progress", StatusInProgress},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, NormalizeStatus(tc.raw), "raw=%q", tc.raw)
	}
}

func TestNormalizeStatus_BlankIsIdle(t *testing.T) {
	for _, raw := range []string{"", "   ", "\t", "-", "_ _"} {
		assert.Equal(t, StatusIdle, NormalizeStatus(raw), "raw=%q", raw)
	}
}

func TestNormalizeStatus_UnknownFallsBackToInProgress(t *testing.T) {
	assert.Equal(t, StatusInProgress, NormalizeStatus("garbage-xyz"))
	assert.Equal(t, StatusInProgress, NormalizeStatus("on hold"))
	assert.Equal(t, StatusInProgress, NormalizeStatus("stopped"))
	assert.Equal(t, StatusInProgress, NormalizeStatus("done"))
}

func TestWireValue_RoundTrip(t *testing.T) {
	for _, s := range AllStatuses() {
		assert.Equal(t, s, NormalizeStatus(s.WireValue()), "status=%s", s)
	}
}

func TestSubmittable(t *testing.T) {
	cases := []struct {
		status Status
		want   bool
	}{
		{StatusInProgress, true},
		{StatusIdle, true},
		{StatusWorkStopped, true},
		{StatusPending, false},
		{StatusCompleted, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.status.Submittable(), "status=%s", tc.status)
	}
	for _, s := range SubmittableStatuses() {
		assert.True(t, s.Submittable())
	}
}

func TestParseSubmittableStatus(t *testing.T) {
	s, err := ParseSubmittableStatus("in-progress")
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, s)

	s, err = ParseSubmittableStatus("Work_Stopped")
	require.NoError(t, err)
	assert.Equal(t, StatusWorkStopped, s)

	_, err = ParseSubmittableStatus("completed")
	assert.ErrorIs(t, err, ErrStatusNotSubmittable)

	_, err = ParseSubmittableStatus("")
	assert.Error(t, err)

	_, err = ParseSubmittableStatus("garbage")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown status")
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "IN PROGRESS", StatusInProgress.Label())
	assert.Equal(t, "WORK STOPPED", StatusWorkStopped.Label())
}

func TestLookupStatus(t *testing.T) {
	s, ok := LookupStatus("Work_Stopped")
	assert.True(t, ok)
	assert.Equal(t, StatusWorkStopped, s)

	_, ok = LookupStatus("paused")
	assert.False(t, ok)

	_, ok = LookupStatus("done")
	assert.False(t, ok)

	_, ok = LookupStatus("  ")
	assert.False(t, ok)
}
