package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

func TestRecordStatus_UsesNormalizer(t *testing.T) {
	r := &Record{RawStatus: "in_progress"}
	assert.Equal(t, StatusInProgress, r.Status())

	r = &Record{}
	assert.Equal(t, StatusIdle, r.Status())
}

func TestRecordCreation(t *testing.T) {
	r := &Record{}
	assert.Nil(t, r.Creation())

	r = &Record{CreatedAt: &testNow, CreatedBy: "Devashish"}
	c := r.Creation()
	require.NotNil(t, c)
	assert.Equal(t, testNow, c.At)
	assert.Equal(t, "Devashish", c.ActorName)

	r = &Record{CreatedBy: "Devashish"}
	c = r.Creation()
	require.NotNil(t, c)
	assert.True(t, c.At.IsZero())
}

func TestDisplayTitle(t *testing.T) {
	assert.Equal(t, "Excavation", (&Record{ActivityName: "Excavation"}).DisplayTitle())
	assert.Equal(t, "Activity name not available", (&Record{}).DisplayTitle())
}

func TestProgressEntrySortTime(t *testing.T) {
	e := ProgressEntry{}
	assert.Equal(t, time.Unix(0, 0).UTC(), e.SortTime())

	e.At = testNow
	assert.Equal(t, testNow, e.SortTime())
}
