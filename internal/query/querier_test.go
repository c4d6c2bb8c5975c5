package query

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBuildSnapshotQuery(t *testing.T) {
	since := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	q, args := buildSnapshotQuery(Request{MonitorID: "m1", Since: since, Limit: 20})

	assert.Contains(t, q, "FROM network_snapshots WHERE MonitorID = ? AND Timestamp >= ?")
	assert.True(t, strings.HasSuffix(q, "ORDER BY Timestamp DESC LIMIT ?"))
	assert.Equal(t, []interface{}{"m1", since, 20}, args)
}

func TestBuildSnapshotQueryNoFilters(t *testing.T) {
	q, args := buildSnapshotQuery(Request{})
	assert.NotContains(t, q, "WHERE")
	assert.NotContains(t, q, "LIMIT")
	assert.Empty(t, args)
}

func TestBuildAttackQuery(t *testing.T) {
	until := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	q, args := buildAttackQuery(Request{Until: until})

	assert.Contains(t, q, "arrayJoin(DetectedAttacks) AS Attack")
	assert.Contains(t, q, "WHERE Timestamp <= ?")
	assert.Contains(t, q, "GROUP BY Attack")
	assert.Equal(t, []interface{}{until}, args)
}
