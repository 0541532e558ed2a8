package trace

import (
	"errors"
	"fmt"
	"iter"
	"maps"
	"slices"

	"github.com/google/uuid"
)

// ErrDuplicateNode is returned when a node is added under a name that is
// already present in the trace. Names are write-once.
var ErrDuplicateNode = errors.New("duplicate trace node")

// GraphType selects how much structure a trace records.
type GraphType string

const (
	// GraphFlat records nodes only; no dependency edges are inferred.
	GraphFlat GraphType = "flat"
	// GraphDense infers dependency edges between sample nodes from their
	// conditional-independence frames when the invocation completes.
	GraphDense GraphType = "dense"
)

// NodeType tags the kind of site a node was recorded at.
type NodeType string

const (
	// NodeInput is the synthetic node holding the invocation arguments.
	NodeInput NodeType = "input"
	// NodeReturn is the synthetic node holding the computation result.
	NodeReturn NodeType = "return"
	// NodeSample is a recorded sample effect.
	NodeSample NodeType = "sample"
	// NodeParam is a recorded param effect.
	NodeParam NodeType = "param"
	// NodeSubsample marks minibatch bookkeeping pseudo-sites. They are
	// excluded from dependency inference.
	NodeSubsample NodeType = "subsample"
)

// Reserved names of the synthetic nodes bracketing every traced invocation.
const (
	InputName  = "_input"
	ReturnName = "_return"
)

// Frame marks one conditional-independence context active at a site:
// the context name and the replicate counter within it.
type Frame struct {
	Name    string `json:"name"`
	Counter int    `json:"counter"`
}

// Node is one recorded effect site. Value is an opaque payload; the trace
// never interprets it.
type Node struct {
	Name           string   `json:"name"`
	Type           NodeType `json:"type"`
	Value          any      `json:"value,omitempty"`
	IsObserved     bool     `json:"is_observed,omitempty"`
	CondIndepStack []Frame  `json:"cond_indep_stack,omitempty"`
	Args           []any    `json:"args,omitempty"`
}

// Edge is a directed dependency between two named nodes.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Trace is the directed graph produced by one traced invocation: named nodes
// in insertion order plus a set of dependency edges.
type Trace struct {
	id        string
	graphType GraphType
	order     []string
	nodes     map[string]*Node
	edges     map[Edge]struct{}
	edgeOrder []Edge
}

// New creates an empty trace of the given graph type.
func New(graphType GraphType) *Trace {
	return &Trace{
		id:        uuid.NewString(),
		graphType: graphType,
		nodes:     make(map[string]*Node),
		edges:     make(map[Edge]struct{}),
	}
}

// ID returns the unique identifier assigned at creation. Copies share it.
func (t *Trace) ID() string {
	return t.id
}

// GraphType reports whether the trace is flat or dense.
func (t *Trace) GraphType() GraphType {
	return t.graphType
}

// Has reports whether a node is recorded under the name.
func (t *Trace) Has(name string) bool {
	_, ok := t.nodes[name]
	return ok
}

// Node returns the node recorded under the name, if any.
func (t *Trace) Node(name string) (*Node, bool) {
	node, ok := t.nodes[name]
	return node, ok
}

// Len returns the number of recorded nodes.
func (t *Trace) Len() int {
	return len(t.order)
}

// Add records a node under its name. Names are write-once: adding a second
// node under an existing name fails with ErrDuplicateNode.
func (t *Trace) Add(node *Node) error {
	if _, ok := t.nodes[node.Name]; ok {
		return fmt.Errorf("trace: node %q: %w", node.Name, ErrDuplicateNode)
	}
	t.nodes[node.Name] = node
	t.order = append(t.order, node.Name)
	return nil
}

// AddEdge records a directed dependency from one node to another.
// Adding an existing edge is a no-op.
func (t *Trace) AddEdge(from, to string) {
	edge := Edge{From: from, To: to}
	if _, ok := t.edges[edge]; ok {
		return
	}
	t.edges[edge] = struct{}{}
	t.edgeOrder = append(t.edgeOrder, edge)
}

// HasEdge reports whether the directed edge is recorded.
func (t *Trace) HasEdge(from, to string) bool {
	_, ok := t.edges[Edge{From: from, To: to}]
	return ok
}

// Nodes yields name/node pairs in insertion order.
func (t *Trace) Nodes() iter.Seq2[string, *Node] {
	return func(yield func(string, *Node) bool) {
		for _, name := range t.order {
			if !yield(name, t.nodes[name]) {
				return
			}
		}
	}
}

// Names returns the node names in insertion order.
func (t *Trace) Names() []string {
	return slices.Clone(t.order)
}

// Edges returns the dependency edges in insertion order.
func (t *Trace) Edges() []Edge {
	return slices.Clone(t.edgeOrder)
}

// Copy returns a shallow snapshot: node values are shared, but the containers
// are cloned so later mutation or reset of the original leaves the copy
// untouched.
func (t *Trace) Copy() *Trace {
	return &Trace{
		id:        t.id,
		graphType: t.graphType,
		order:     slices.Clone(t.order),
		nodes:     maps.Clone(t.nodes),
		edges:     maps.Clone(t.edges),
		edgeOrder: slices.Clone(t.edgeOrder),
	}
}
