package sockets

import (
	"errors"
	"os"
	"os/exec"
	"testing"

	nwerrors "Go2NetWatch/internal/errors"
	"Go2NetWatch/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile("testdata/" + name)
	require.NoError(t, err)
	return data
}

func TestParseSSLine(t *testing.T) {
	parsed, ok := parseSSLine("tcp   ESTAB  0      0             10.0.0.5:22         10.0.0.9:51514")
	require.True(t, ok)
	assert.Equal(t, "tcp", parsed.netid)
	assert.Equal(t, model.StateEstablished, parsed.state)
	assert.Equal(t, "10.0.0.5:22", parsed.laddr)
	assert.Equal(t, "10.0.0.9:51514", parsed.raddr)

	_, ok = parseSSLine("")
	assert.False(t, ok)
	_, ok = parseSSLine("garbage")
	assert.False(t, ok)
}

func TestParseSSFixture(t *testing.T) {
	records := parseSS(readFixture(t, "ss.txt"))
	require.Len(t, records, 6)

	assert.Equal(t, model.ConnectionRecord{Protocol: "tcp", LocalAddress: "127.0.0.1:5432", RemoteAddress: "0.0.0.0:*", State: model.StateListen}, records[0])
	assert.Equal(t, "TIME-WAIT", records[2].State)
	assert.Equal(t, "tcp6", records[3].Protocol)
	assert.Equal(t, "[::]:443", records[3].LocalAddress)
	assert.Equal(t, "UNCONN", records[4].State)
	assert.Equal(t, model.StateEstablished, records[5].State)
}

func TestParseNetstatLinux(t *testing.T) {
	records := parseNetstat(readFixture(t, "netstat_linux.txt"))
	require.Len(t, records, 3)

	assert.Equal(t, model.ConnectionRecord{Protocol: "tcp", LocalAddress: "127.0.0.1:5432", RemoteAddress: "0.0.0.0:*", State: model.StateListen}, records[0])
	assert.Equal(t, model.ConnectionRecord{Protocol: "tcp", LocalAddress: "10.0.0.5:22", RemoteAddress: "10.0.0.9:51514", State: model.StateEstablished}, records[1])
	assert.Equal(t, model.ConnectionRecord{Protocol: "tcp6", LocalAddress: ":::21", RemoteAddress: ":::*", State: model.StateListen}, records[2])
}

func TestParseNetstatBSD(t *testing.T) {
	records := parseNetstat(readFixture(t, "netstat_darwin.txt"))
	require.Len(t, records, 3)

	assert.Equal(t, "192.168.1.20:50432", records[0].LocalAddress)
	assert.Equal(t, "140.82.112.4:443", records[0].RemoteAddress)
	assert.Equal(t, model.StateEstablished, records[0].State)
	assert.Equal(t, "127.0.0.1:631", records[1].LocalAddress)
	assert.Equal(t, "*:*", records[1].RemoteAddress)
	assert.Equal(t, "[::1]:3306", records[2].LocalAddress)
}

type fakeSource struct {
	name    string
	records []model.ConnectionRecord
	err     error
	calls   int
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) List() ([]model.ConnectionRecord, error) {
	f.calls++
	return f.records, f.err
}

func TestSamplerFiltersStates(t *testing.T) {
	src := &fakeSource{name: "fake", records: parseSS(readFixture(t, "ss.txt"))}
	conns, err := NewSamplerWithSources(src).ListActiveConnections()
	require.NoError(t, err)

	assert.Len(t, conns["tcp"], 2)
	assert.Len(t, conns["tcp6"], 1)
	assert.Len(t, conns["udp"], 1)
	assert.Equal(t, 4, model.CountConnections(conns))
	assert.Equal(t, []string{"tcp", "tcp6", "udp"}, Protocols(conns))
}

func TestSamplerFallsBack(t *testing.T) {
	failing := &fakeSource{name: "procfs", err: nwerrors.New(nwerrors.KindUnavailable, "no procfs")}
	working := &fakeSource{name: "ss", records: []model.ConnectionRecord{
		{Protocol: "tcp", LocalAddress: "0.0.0.0:23", RemoteAddress: "0.0.0.0:*", State: model.StateListen},
	}}
	unused := &fakeSource{name: "netstat"}

	conns, err := NewSamplerWithSources(failing, working, unused).ListActiveConnections()
	require.NoError(t, err)
	assert.Len(t, conns["tcp"], 1)
	assert.Equal(t, 0, unused.calls)
}

func TestSamplerTotalFailure(t *testing.T) {
	a := &fakeSource{name: "ss", err: nwerrors.WrapOS(exec.ErrNotFound, "failed to run ss")}
	b := &fakeSource{name: "netstat", err: nwerrors.WrapOS(os.ErrPermission, "failed to run netstat")}

	conns, err := NewSamplerWithSources(a, b).ListActiveConnections()
	require.Error(t, err)
	assert.NotNil(t, conns)
	assert.Empty(t, conns)
	assert.Equal(t, nwerrors.KindPermission, nwerrors.Classify(err))
	assert.Equal(t, "netstat", nwerrors.GetAttributes(err)["source"])
}

func TestCommandSources(t *testing.T) {
	ssOut := readFixture(t, "ss.txt")
	ss := &ssSource{run: func(name string, args ...string) ([]byte, error) {
		assert.Equal(t, "ss", name)
		return ssOut, nil
	}}
	records, err := ss.List()
	require.NoError(t, err)
	assert.Len(t, records, 6)

	netstat := &netstatSource{run: func(string, ...string) ([]byte, error) {
		return nil, exec.ErrNotFound
	}}
	_, err = netstat.List()
	require.Error(t, err)
	assert.True(t, errors.Is(err, exec.ErrNotFound))
	assert.True(t, nwerrors.Expected(err))
}

func TestNewSamplerRejectsUnknownSource(t *testing.T) {
	_, err := NewSampler([]string{"procfs", "lsof"}, "")
	assert.Error(t, err)

	s, err := NewSampler(nil, "")
	require.NoError(t, err)
	assert.Len(t, s.sources, 3)
}
