// Package topology derives a host/interface/remote graph from the current
// interfaces and connections.
package topology

import (
	"sort"
	"strings"

	"Go2NetWatch/internal/model"

	"github.com/google/gopacket/layers"
)

// Build assembles the graph. Nodes appear as host, then interfaces sorted by
// name, then remotes in the order they are first met while walking protocols
// in sorted order. Wildcard remotes produce neither node nor edge.
func Build(host Host, ifaces map[string]model.InterfaceInfo, conns map[string][]model.ConnectionRecord) Graph {
	g := Graph{
		Nodes: []Node{{ID: HostNodeID, Name: host.Name, Kind: NodeHost, Address: host.Address}},
		Edges: []Edge{},
	}

	names := make([]string, 0, len(ifaces))
	for name := range ifaces {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		info := ifaces[name]
		if info.IP == "" {
			continue
		}
		id := "interface_" + name
		g.Nodes = append(g.Nodes, Node{ID: id, Name: name, Kind: NodeInterface, Address: info.IP, MAC: info.MAC})
		g.Edges = append(g.Edges, Edge{Source: HostNodeID, Target: id, Kind: EdgePhysical})
	}

	protocols := make([]string, 0, len(conns))
	for proto := range conns {
		protocols = append(protocols, proto)
	}
	sort.Strings(protocols)

	seen := make(map[string]bool)
	for _, proto := range protocols {
		for _, c := range conns[proto] {
			rhost, rport := splitHostPort(c.RemoteAddress)
			if isWildcardIP(rhost) {
				continue
			}
			ip := normalizeIP(rhost)
			id := "remote_" + ip
			if !seen[id] {
				seen[id] = true
				g.Nodes = append(g.Nodes, Node{ID: id, Name: ip, Kind: NodeRemote, Address: ip})
			}
			_, lport := splitHostPort(c.LocalAddress)
			g.Edges = append(g.Edges, Edge{
				Source:   HostNodeID,
				Target:   id,
				Kind:     EdgeConnection,
				Protocol: proto,
				State:    c.State,
				Service:  serviceName(proto, rport, lport),
			})
		}
	}
	return g
}

// serviceName resolves the well-known name of the remote port, falling back
// to the local port for inbound connections from ephemeral ports.
func serviceName(proto string, ports ...int) string {
	udp := strings.HasPrefix(proto, "udp")
	for _, p := range ports {
		if p <= 0 {
			continue
		}
		var s string
		if udp {
			s = layers.UDPPort(p).String()
		} else {
			s = layers.TCPPort(p).String()
		}
		// known ports render as "443(https)"
		open := strings.Index(s, "(")
		if open >= 0 && strings.HasSuffix(s, ")") {
			return s[open+1 : len(s)-1]
		}
	}
	return ""
}

// Counts returns the number of nodes per kind.
func (g Graph) Counts() map[NodeKind]int {
	out := make(map[NodeKind]int)
	for _, n := range g.Nodes {
		out[n.Kind]++
	}
	return out
}
