//go:build linux

package sockets

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"strconv"

	nwerrors "Go2NetWatch/internal/errors"
	"Go2NetWatch/internal/model"

	"github.com/prometheus/procfs"
)

// tcpStates maps the kernel's hex socket state codes to their names.
var tcpStates = map[uint64]string{
	0x01: "ESTABLISHED",
	0x02: "SYN_SENT",
	0x03: "SYN_RECV",
	0x04: "FIN_WAIT1",
	0x05: "FIN_WAIT2",
	0x06: "TIME_WAIT",
	0x07: "CLOSE",
	0x08: "CLOSE_WAIT",
	0x09: "LAST_ACK",
	0x0A: "LISTEN",
	0x0B: "CLOSING",
}

type procfsSource struct {
	root string
}

func newProcfsSource(root string) Source {
	if root == "" {
		root = procfs.DefaultMountPoint
	}
	return &procfsSource{root: root}
}

func (s *procfsSource) Name() string { return "procfs" }

type socketLine struct {
	localAddr  net.IP
	localPort  uint64
	remoteAddr net.IP
	remotePort uint64
	state      uint64
}

func (s *procfsSource) List() ([]model.ConnectionRecord, error) {
	pfs, err := procfs.NewFS(s.root)
	if err != nil {
		return nil, nwerrors.WrapOS(err, "failed to open procfs")
	}

	tables := []struct {
		proto string
		read  func() ([]socketLine, error)
	}{
		{"tcp", func() ([]socketLine, error) { t, err := pfs.NetTCP(); return tcpLines(t), err }},
		{"tcp6", func() ([]socketLine, error) { t, err := pfs.NetTCP6(); return tcpLines(t), err }},
		{"udp", func() ([]socketLine, error) { t, err := pfs.NetUDP(); return udpLines(t), err }},
		{"udp6", func() ([]socketLine, error) { t, err := pfs.NetUDP6(); return udpLines(t), err }},
	}

	var records []model.ConnectionRecord
	read := 0
	for _, table := range tables {
		lines, err := table.read()
		if err != nil {
			// a family is absent when the kernel has it disabled
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, nwerrors.WrapOS(err, fmt.Sprintf("failed to read /proc/net/%s", table.proto))
		}
		read++
		for _, l := range lines {
			records = append(records, toRecord(table.proto, l))
		}
	}
	if read == 0 {
		return nil, nwerrors.Errorf(nwerrors.KindUnavailable, "no socket tables under %s/net", s.root)
	}
	return records, nil
}

func tcpLines(t procfs.NetTCP) []socketLine {
	out := make([]socketLine, 0, len(t))
	for _, l := range t {
		out = append(out, socketLine{l.LocalAddr, l.LocalPort, l.RemAddr, l.RemPort, l.St})
	}
	return out
}

func udpLines(t procfs.NetUDP) []socketLine {
	out := make([]socketLine, 0, len(t))
	for _, l := range t {
		out = append(out, socketLine{l.LocalAddr, l.LocalPort, l.RemAddr, l.RemPort, l.St})
	}
	return out
}

func toRecord(proto string, l socketLine) model.ConnectionRecord {
	state, ok := tcpStates[l.state]
	if !ok {
		state = fmt.Sprintf("UNKNOWN_%02X", l.state)
	}
	if (proto == "udp" || proto == "udp6") && state == "CLOSE" {
		state = "UNCONN"
	}
	remote := formatAddr(l.remoteAddr, l.remotePort)
	if state == model.StateListen {
		remote = formatHost(l.remoteAddr) + ":*"
	}
	return model.ConnectionRecord{
		Protocol:      proto,
		LocalAddress:  formatAddr(l.localAddr, l.localPort),
		RemoteAddress: remote,
		State:         state,
	}
}

func formatAddr(ip net.IP, port uint64) string {
	return formatHost(ip) + ":" + strconv.FormatUint(port, 10)
}

func formatHost(ip net.IP) string {
	if ip == nil {
		return "*"
	}
	if ip.To4() != nil {
		return ip.String()
	}
	return "[" + ip.String() + "]"
}
