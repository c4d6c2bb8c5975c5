package sockets

import (
	"regexp"
	"strings"

	nwerrors "Go2NetWatch/internal/errors"
	"Go2NetWatch/internal/model"
)

// ss -H -tuan
// tcp   ESTAB  0  0  10.0.0.5:22  10.0.0.9:51514
var reSS = regexp.MustCompile(`^(?P<netid>\S+)\s+(?P<state>\S+)\s+\d+\s+\d+\s+(?P<laddr>\S+)\s+(?P<raddr>\S+)`)

type ssLine struct {
	netid string
	state string
	laddr string
	raddr string
}

func parseSSLine(line string) (ssLine, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return ssLine{}, false
	}
	m := reSS.FindStringSubmatch(line)
	if m == nil {
		return ssLine{}, false
	}
	return ssLine{
		netid: strings.ToLower(m[reSS.SubexpIndex("netid")]),
		state: normalizeState(m[reSS.SubexpIndex("state")]),
		laddr: m[reSS.SubexpIndex("laddr")],
		raddr: m[reSS.SubexpIndex("raddr")],
	}, true
}

// ssProtocol names the family the way the kernel tables do: tcp, tcp6, udp, udp6.
func ssProtocol(netid, laddr string) string {
	if strings.HasPrefix(laddr, "[") {
		return netid + "6"
	}
	return netid
}

type ssSource struct {
	run commandRunner
}

func (s *ssSource) Name() string { return "ss" }

func (s *ssSource) List() ([]model.ConnectionRecord, error) {
	out, err := s.run("ss", "-H", "-tuan")
	if err != nil {
		return nil, nwerrors.WrapOS(err, "failed to run ss")
	}
	return parseSS(out), nil
}

func parseSS(out []byte) []model.ConnectionRecord {
	var records []model.ConnectionRecord
	for _, line := range splitLines(out) {
		parsed, ok := parseSSLine(line)
		if !ok {
			continue
		}
		records = append(records, model.ConnectionRecord{
			Protocol:      ssProtocol(parsed.netid, parsed.laddr),
			LocalAddress:  parsed.laddr,
			RemoteAddress: parsed.raddr,
			State:         parsed.state,
		})
	}
	return records
}
