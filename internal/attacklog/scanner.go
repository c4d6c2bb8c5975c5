// Package attacklog detects attack types from the textual log written by the
// attack simulator.
package attacklog

import (
	"bytes"
	"io"
	"os"
	"regexp"
	"sort"
	"sync"

	nwerrors "Go2NetWatch/internal/errors"

	log "github.com/sirupsen/logrus"
)

// Attack type identifiers.
const (
	DDoS       = "ddos"
	PortScan   = "port_scan"
	SYNFlood   = "syn_flood"
	BruteForce = "brute_force"
)

// Signature binds an attack type to the log phrase that reveals it.
type Signature struct {
	Type    string
	Pattern *regexp.Regexp
}

// Signatures is the table of known attack phrases.
var Signatures = []Signature{
	{Type: DDoS, Pattern: regexp.MustCompile(`Simulated connection attempt to`)},
	{Type: PortScan, Pattern: regexp.MustCompile(`Simulated open port found`)},
	{Type: SYNFlood, Pattern: regexp.MustCompile(`Simulated SYN packet`)},
	{Type: BruteForce, Pattern: regexp.MustCompile(`Simulated login attempt`)},
}

// maxPartial bounds the unterminated tail kept between reads.
const maxPartial = 64 * 1024

// headSize is how much of the file start is remembered to detect rewrites.
const headSize = 4096

// ScanText returns the sorted set of attack types whose signature occurs in text.
func ScanText(text string) []string {
	found := make(map[string]struct{})
	match([]byte(text), found)
	return sortedKeys(found)
}

func match(data []byte, found map[string]struct{}) {
	for _, sig := range Signatures {
		if _, ok := found[sig.Type]; ok {
			continue
		}
		if sig.Pattern.Match(data) {
			found[sig.Type] = struct{}{}
		}
	}
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Scanner reports the attack types present in a log file.
//
// The file is read incrementally: only bytes appended since the previous Scan
// are matched and the types found so far are retained. When the file shrinks
// is replaced, shrinks, or no longer starts with the bytes already read (an
// in-place truncate followed by a longer write), the state is dropped and the
// file is read from the start, so the result equals a scan of the full content.
type Scanner struct {
	path string

	mu      sync.Mutex
	info    os.FileInfo
	offset  int64
	head    []byte
	partial []byte
	found   map[string]struct{}
}

// NewScanner creates a scanner for the log at path.
func NewScanner(path string) *Scanner {
	return &Scanner{path: path, found: make(map[string]struct{})}
}

// Path returns the scanned file path.
func (s *Scanner) Path() string {
	return s.path
}

// Scan returns the sorted set of attack types in the current log content.
// A missing log is not an error and yields an empty set.
func (s *Scanner) Scan() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if err != nil {
		s.reset(nil)
		if os.IsNotExist(err) {
			log.Debugf("Attack log %s does not exist yet", s.path)
			return []string{}, nil
		}
		return []string{}, nwerrors.WrapOS(err, "failed to open attack log")
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return []string{}, nwerrors.WrapOS(err, "failed to stat attack log")
	}
	if s.info == nil || !os.SameFile(s.info, info) || info.Size() < s.offset {
		s.reset(info)
	} else if rewritten, err := s.headChanged(f); err != nil {
		return []string{}, nwerrors.WrapOS(err, "failed to read attack log")
	} else if rewritten {
		s.reset(info)
	}

	if _, err := f.Seek(s.offset, io.SeekStart); err != nil {
		return []string{}, nwerrors.WrapOS(err, "failed to seek attack log")
	}
	chunk, err := io.ReadAll(f)
	if err != nil {
		return []string{}, nwerrors.WrapOS(err, "failed to read attack log")
	}
	s.offset += int64(len(chunk))
	if room := headSize - len(s.head); room > 0 {
		if room > len(chunk) {
			room = len(chunk)
		}
		s.head = append(s.head, chunk[:room]...)
	}

	data := append(s.partial, chunk...)
	match(data, s.found)

	// keep the unterminated tail so a phrase split across writes is still seen
	tail := data[bytes.LastIndexByte(data, '\n')+1:]
	if len(tail) > maxPartial {
		tail = tail[len(tail)-maxPartial:]
	}
	s.partial = append([]byte(nil), tail...)

	return sortedKeys(s.found), nil
}

// headChanged reports whether the start of the file differs from the bytes
// read before.
func (s *Scanner) headChanged(f *os.File) (bool, error) {
	if len(s.head) == 0 {
		return false, nil
	}
	buf := make([]byte, len(s.head))
	n, err := f.ReadAt(buf, 0)
	if err != nil && err != io.EOF {
		return false, err
	}
	return !bytes.Equal(buf[:n], s.head), nil
}

func (s *Scanner) reset(info os.FileInfo) {
	s.info = info
	s.offset = 0
	s.head = nil
	s.partial = nil
	s.found = make(map[string]struct{})
}
