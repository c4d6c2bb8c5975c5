// Package sockets lists the host's established and listening sockets.
package sockets

import (
	"fmt"
	"os/exec"
	"sort"
	"strings"

	nwerrors "Go2NetWatch/internal/errors"
	"Go2NetWatch/internal/model"

	log "github.com/sirupsen/logrus"
)

// Source is one way of asking the OS for its socket table.
type Source interface {
	Name() string
	List() ([]model.ConnectionRecord, error)
}

// commandRunner runs an external tool and returns its stdout.
type commandRunner func(name string, args ...string) ([]byte, error)

func execRunner(name string, args ...string) ([]byte, error) {
	return exec.Command(name, args...).Output()
}

// Sampler tries its sources in order until one succeeds.
type Sampler struct {
	sources []Source
}

// NewSampler builds a sampler from source names ("procfs", "ss", "netstat").
func NewSampler(names []string, procRoot string) (*Sampler, error) {
	if len(names) == 0 {
		names = []string{"procfs", "ss", "netstat"}
	}
	var sources []Source
	for _, name := range names {
		switch strings.ToLower(name) {
		case "procfs":
			sources = append(sources, newProcfsSource(procRoot))
		case "ss":
			sources = append(sources, &ssSource{run: execRunner})
		case "netstat":
			sources = append(sources, &netstatSource{run: execRunner})
		default:
			return nil, fmt.Errorf("unknown connection source '%s'", name)
		}
	}
	return &Sampler{sources: sources}, nil
}

// NewSamplerWithSources builds a sampler over explicit sources.
func NewSamplerWithSources(sources ...Source) *Sampler {
	return &Sampler{sources: sources}
}

// ListActiveConnections returns ESTABLISHED and LISTEN sockets grouped by
// protocol. When every source fails the map is empty, never nil, and the
// error of the last source is returned.
func (s *Sampler) ListActiveConnections() (map[string][]model.ConnectionRecord, error) {
	out := make(map[string][]model.ConnectionRecord)
	if len(s.sources) == 0 {
		return out, nwerrors.New(nwerrors.KindUnavailable, "no connection source configured")
	}

	var lastErr error
	for _, src := range s.sources {
		records, err := src.List()
		if err != nil {
			log.Debugf("Connection source '%s' failed: %v", src.Name(), err)
			lastErr = nwerrors.Attr(err, "source", src.Name())
			continue
		}
		for _, r := range records {
			if !keep(r.State) {
				continue
			}
			out[r.Protocol] = append(out[r.Protocol], r)
		}
		return out, nil
	}
	return out, lastErr
}

func keep(state string) bool {
	return state == model.StateEstablished || state == model.StateListen
}

// normalizeState maps tool-specific spellings onto the kernel names.
func normalizeState(state string) string {
	state = strings.ToUpper(strings.TrimSpace(state))
	switch state {
	case "ESTAB":
		return model.StateEstablished
	case "LISTENING":
		return model.StateListen
	default:
		return state
	}
}

// Protocols returns the protocol names of a connection map in sorted order.
func Protocols(conns map[string][]model.ConnectionRecord) []string {
	out := make([]string, 0, len(conns))
	for p := range conns {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

func splitLines(b []byte) []string {
	s := strings.TrimSpace(string(b))
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
