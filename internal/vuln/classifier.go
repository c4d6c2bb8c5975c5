// Package vuln flags connections bound to ports of commonly attacked services.
package vuln

import (
	"fmt"
	"strconv"
	"strings"

	"Go2NetWatch/internal/model"
)

// Service describes a known-vulnerable port entry.
type Service struct {
	Name     string
	Severity model.Severity
}

// KnownPorts is the fixed table of local ports considered vulnerable.
var KnownPorts = map[int]Service{
	21:    {Name: "FTP", Severity: model.SeverityHigh},
	23:    {Name: "Telnet", Severity: model.SeverityHigh},
	25:    {Name: "SMTP", Severity: model.SeverityHigh},
	80:    {Name: "HTTP", Severity: model.SeverityMedium},
	443:   {Name: "HTTPS", Severity: model.SeverityMedium},
	3306:  {Name: "MySQL", Severity: model.SeverityMedium},
	3389:  {Name: "RDP", Severity: model.SeverityMedium},
	5432:  {Name: "PostgreSQL", Severity: model.SeverityMedium},
	27017: {Name: "MongoDB", Severity: model.SeverityMedium},
}

// Classify reports a finding when the connection's local port is in KnownPorts.
// Only the local address is inspected; an address without a parseable
// trailing ":port" yields no finding.
func Classify(conn model.ConnectionRecord) (model.VulnerabilityFinding, bool) {
	port, ok := LocalPort(conn.LocalAddress)
	if !ok {
		return model.VulnerabilityFinding{}, false
	}
	svc, ok := KnownPorts[port]
	if !ok {
		return model.VulnerabilityFinding{}, false
	}
	return model.VulnerabilityFinding{
		Connection: conn,
		Label:      Label(svc.Name),
		Severity:   svc.Severity,
	}, true
}

// Label renders the human-readable finding label for a service.
func Label(service string) string {
	return fmt.Sprintf("Potentially vulnerable %s port", service)
}

// LocalPort extracts the numeric port after the last colon of an address.
func LocalPort(addr string) (int, bool) {
	i := strings.LastIndex(addr, ":")
	if i < 0 || i == len(addr)-1 {
		return 0, false
	}
	port, err := strconv.Atoi(addr[i+1:])
	if err != nil || port < 0 || port > 65535 {
		return 0, false
	}
	return port, true
}
