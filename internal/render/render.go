// Package render prints snapshots, interfaces and topologies for the terminal.
package render

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"Go2NetWatch/internal/anomaly"
	"Go2NetWatch/internal/clientinfo"
	"Go2NetWatch/internal/model"
	"Go2NetWatch/internal/topology"

	"github.com/charmbracelet/lipgloss"
	"github.com/olekukonko/tablewriter"
	"golang.org/x/term"
)

var (
	styleHigh   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true) // Red
	styleMedium = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))            // Orange
	styleOK     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))             // Green
	styleTitle  = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	styleFaint  = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

// Options controls the output.
type Options struct {
	Color bool
}

// ResolveColor maps "always", "never" or "auto" to a colour decision.
func ResolveColor(mode string) bool {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "always":
		return true
	case "never":
		return false
	default:
		return os.Getenv("NO_COLOR") == "" && term.IsTerminal(int(os.Stdout.Fd()))
	}
}

func (o Options) paint(style lipgloss.Style, text string) string {
	if !o.Color {
		return text
	}
	return style.Render(text)
}

func (o Options) severity(s model.Severity) string {
	switch s {
	case model.SeverityHigh:
		return o.paint(styleHigh, string(s))
	case model.SeverityMedium:
		return o.paint(styleMedium, string(s))
	}
	return string(s)
}

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	return table
}

// Snapshot prints one snapshot with its anomaly evaluation.
func Snapshot(w io.Writer, s model.MetricsSnapshot, status anomaly.Status, opt Options) {
	fmt.Fprintln(w, opt.paint(styleTitle, "Snapshot "+s.Timestamp.Format(time.RFC3339)))

	scoreText := fmt.Sprintf("%.2f (threshold %.2f)", status.Score, status.Threshold)
	if status.Anomalous {
		scoreText = opt.paint(styleHigh, scoreText+" ANOMALOUS")
	} else {
		scoreText = opt.paint(styleOK, scoreText)
	}

	summary := newTable(w, "Metric", "Value")
	summary.AppendBulk([][]string{
		{"CPU", fmt.Sprintf("%.1f%%", s.CPUPercent)},
		{"Memory", fmt.Sprintf("%.1f%%", s.MemoryPercent)},
		{"Connections", strconv.Itoa(s.TotalConnections)},
		{"New connections", strconv.Itoa(len(s.NewConnections))},
		{"Traffic", fmt.Sprintf("%.1f B/s", s.TrafficRate)},
		{"Network errors", strconv.FormatUint(s.NetworkErrors, 10)},
		{"Attacks", joinOrNone(s.DetectedAttacks)},
		{"Anomaly score", scoreText},
	})
	if len(s.Degraded) > 0 {
		summary.Append([]string{"Degraded", opt.paint(styleMedium, strings.Join(s.Degraded, ", "))})
	}
	summary.Render()

	if len(s.VulnerableConnections) > 0 {
		fmt.Fprintln(w, opt.paint(styleTitle, "Vulnerable connections"))
		Findings(w, s.VulnerableConnections, opt)
	}
}

// Findings prints vulnerability findings.
func Findings(w io.Writer, findings []model.VulnerabilityFinding, opt Options) {
	table := newTable(w, "Protocol", "Local", "Remote", "State", "Vulnerability", "Severity")
	for _, f := range findings {
		table.Append([]string{
			f.Connection.Protocol, f.Connection.LocalAddress, f.Connection.RemoteAddress,
			f.Connection.State, f.Label, opt.severity(f.Severity),
		})
	}
	table.Render()
}

// Connections prints every connection grouped by protocol.
func Connections(w io.Writer, conns map[string][]model.ConnectionRecord) {
	protos := make([]string, 0, len(conns))
	for p := range conns {
		protos = append(protos, p)
	}
	sort.Strings(protos)

	table := newTable(w, "Protocol", "Local", "Remote", "State")
	for _, p := range protos {
		for _, c := range conns[p] {
			table.Append([]string{p, c.LocalAddress, c.RemoteAddress, c.State})
		}
	}
	table.Render()
}

// Interfaces prints the interface inventory sorted by name.
func Interfaces(w io.Writer, ifaces map[string]model.InterfaceInfo, opt Options) {
	names := make([]string, 0, len(ifaces))
	for n := range ifaces {
		names = append(names, n)
	}
	sort.Strings(names)

	table := newTable(w, "Name", "IP", "Netmask", "MAC")
	for _, n := range names {
		i := ifaces[n]
		mac := i.MAC
		if mac == "" {
			mac = opt.paint(styleFaint, "-")
		}
		table.Append([]string{i.Name, i.IP, i.Netmask, mac})
	}
	table.Render()
}

// Topology prints the graph as node and edge tables.
func Topology(w io.Writer, g topology.Graph) {
	nodes := newTable(w, "ID", "Type", "Name", "Address")
	for _, n := range g.Nodes {
		nodes.Append([]string{n.ID, string(n.Kind), n.Name, n.Address})
	}
	nodes.Render()

	edges := newTable(w, "Source", "Target", "Type", "Protocol", "State", "Service")
	for _, e := range g.Edges {
		edges.Append([]string{e.Source, e.Target, string(e.Kind), e.Protocol, e.State, e.Service})
	}
	edges.Render()
}

// History prints one row per snapshot, oldest first.
func History(w io.Writer, snaps []model.MetricsSnapshot, threshold float64, opt Options) {
	table := newTable(w, "Time", "CPU %", "Mem %", "Conns", "New", "Vuln", "Traffic B/s", "Attacks", "Score")
	for _, s := range snaps {
		status := anomaly.Evaluate(s, threshold)
		score := fmt.Sprintf("%.2f", status.Score)
		if status.Anomalous {
			score = opt.paint(styleHigh, score)
		}
		table.Append([]string{
			s.Timestamp.Format(time.RFC3339),
			fmt.Sprintf("%.1f", s.CPUPercent),
			fmt.Sprintf("%.1f", s.MemoryPercent),
			strconv.Itoa(s.TotalConnections),
			strconv.Itoa(len(s.NewConnections)),
			strconv.Itoa(len(s.VulnerableConnections)),
			fmt.Sprintf("%.1f", s.TrafficRate),
			joinOrNone(s.DetectedAttacks),
			score,
		})
	}
	table.Render()
}

// ClientInfo prints the host identity.
func ClientInfo(w io.Writer, info clientinfo.Info, opt Options) {
	table := newTable(w, "Field", "Value")
	table.Append([]string{"Hostname", orUnavailable(info.Hostname, opt)})
	table.Append([]string{"Local IP", orUnavailable(info.LocalIP, opt)})
	public := orUnavailable(info.PublicIP, opt)
	if info.PublicIPSource != "" {
		public += " (" + info.PublicIPSource + ")"
	}
	table.Append([]string{"Public IP", public})
	table.Render()
}

// Attacks prints the attack types found in a log.
func Attacks(w io.Writer, attacks []string, opt Options) {
	if len(attacks) == 0 {
		fmt.Fprintln(w, opt.paint(styleOK, "No attack activity found"))
		return
	}
	for _, a := range attacks {
		fmt.Fprintln(w, opt.paint(styleHigh, "detected: "+a))
	}
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}

func orUnavailable(v string, opt Options) string {
	if v == "" {
		return opt.paint(styleFaint, "unavailable")
	}
	return v
}
