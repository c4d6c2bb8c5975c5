//go:build linux

package sockets

import (
	"testing"

	nwerrors "Go2NetWatch/internal/errors"
	"Go2NetWatch/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcfsSource(t *testing.T) {
	src := newProcfsSource("testdata/proc")
	records, err := src.List()
	require.NoError(t, err)
	require.Len(t, records, 6)

	assert.Equal(t, model.ConnectionRecord{Protocol: "tcp", LocalAddress: "127.0.0.1:5432", RemoteAddress: "0.0.0.0:*", State: model.StateListen}, records[0])
	assert.Equal(t, model.ConnectionRecord{Protocol: "tcp", LocalAddress: "10.0.0.5:22", RemoteAddress: "10.0.0.9:51514", State: model.StateEstablished}, records[1])
	assert.Equal(t, "TIME_WAIT", records[2].State)
	assert.Equal(t, model.ConnectionRecord{Protocol: "tcp6", LocalAddress: "[::]:443", RemoteAddress: "[::]:*", State: model.StateListen}, records[3])
	assert.Equal(t, "UNCONN", records[4].State)
	assert.Equal(t, model.ConnectionRecord{Protocol: "udp", LocalAddress: "10.0.0.5:41000", RemoteAddress: "8.8.8.8:53", State: model.StateEstablished}, records[5])
}

func TestProcfsSourceThroughSampler(t *testing.T) {
	s, err := NewSampler([]string{"procfs"}, "testdata/proc")
	require.NoError(t, err)

	conns, err := s.ListActiveConnections()
	require.NoError(t, err)
	assert.Len(t, conns["tcp"], 2)
	assert.Len(t, conns["tcp6"], 1)
	assert.Len(t, conns["udp"], 1)
}

func TestProcfsSourceMissingRoot(t *testing.T) {
	_, err := newProcfsSource(t.TempDir()).List()
	require.Error(t, err)
	assert.Equal(t, nwerrors.KindUnavailable, nwerrors.GetKind(err))
}
