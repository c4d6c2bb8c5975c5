package sockets

import (
	"net"
	"strings"

	nwerrors "Go2NetWatch/internal/errors"
	"Go2NetWatch/internal/model"
)

// netstat -an
// Linux:  tcp   0   0 127.0.0.1:5432   0.0.0.0:*   LISTEN
// BSD:    tcp4  0   0 127.0.0.1.5432   *.*         LISTEN
type netstatSource struct {
	run commandRunner
}

func (s *netstatSource) Name() string { return "netstat" }

func (s *netstatSource) List() ([]model.ConnectionRecord, error) {
	out, err := s.run("netstat", "-an")
	if err != nil {
		return nil, nwerrors.WrapOS(err, "failed to run netstat")
	}
	return parseNetstat(out), nil
}

func parseNetstat(out []byte) []model.ConnectionRecord {
	var records []model.ConnectionRecord
	for _, line := range splitLines(out) {
		if !strings.Contains(line, "ESTABLISHED") && !strings.Contains(line, "LISTEN") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 4 {
			continue
		}
		proto := strings.ToLower(fields[0])
		if !strings.HasPrefix(proto, "tcp") && !strings.HasPrefix(proto, "udp") {
			// unix domain sockets also report LISTENING
			continue
		}
		remote := "*"
		if len(fields) > 4 {
			remote = normalizeBSDAddr(fields[4])
		}
		records = append(records, model.ConnectionRecord{
			Protocol:      proto,
			LocalAddress:  normalizeBSDAddr(fields[3]),
			RemoteAddress: remote,
			State:         normalizeState(fields[len(fields)-1]),
		})
	}
	return records
}

// normalizeBSDAddr rewrites the BSD "a.b.c.d.port" and "*.*" forms as "host:port".
func normalizeBSDAddr(addr string) string {
	if strings.Contains(addr, ":") && !strings.Contains(addr, "::") && strings.Count(addr, ":") == 1 {
		return addr
	}
	i := strings.LastIndex(addr, ".")
	if i <= 0 {
		return addr
	}
	host, port := addr[:i], addr[i+1:]
	if host == "*" {
		return "*:" + port
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return addr
	}
	if ip.To4() != nil {
		return host + ":" + port
	}
	return "[" + host + "]:" + port
}
