package topology

type NodeKind string

const (
	NodeHost      NodeKind = "host"
	NodeInterface NodeKind = "interface"
	NodeRemote    NodeKind = "remote"
)

type EdgeKind string

const (
	EdgePhysical   EdgeKind = "physical"
	EdgeConnection EdgeKind = "connection"
)

// HostNodeID is the id of the single host node.
const HostNodeID = "host"

type Node struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Kind    NodeKind `json:"type"`
	Address string   `json:"address,omitempty"`
	MAC     string   `json:"mac,omitempty"`
}

type Edge struct {
	Source   string   `json:"source"`
	Target   string   `json:"target"`
	Kind     EdgeKind `json:"type"`
	Protocol string   `json:"protocol,omitempty"`
	State    string   `json:"state,omitempty"`
	Service  string   `json:"service,omitempty"`
}

type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Host identifies the monitored machine.
type Host struct {
	Name    string
	Address string
}
