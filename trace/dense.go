package trace

// Predicate reports whether a node is a subsampling pseudo-site that should
// be excluded from dependency inference.
type Predicate func(*Node) bool

// IsSubsample is the default Predicate. It matches nodes recorded with the
// reserved subsample type.
func IsSubsample(node *Node) bool {
	return node.Type == NodeSubsample
}

// IdentifyDenseEdges mutates the trace in place, adding a dependency edge
// from every earlier sample node to every later one unless the pair is judged
// conditionally independent. Two sites are independent when some pair of
// positionally matched frames shares a context name but not a counter, i.e.
// the sites are different replicates inside the same repeated context.
//
// Subsample pseudo-sites neither receive nor originate edges.
func IdentifyDenseEdges(tr *Trace, isSubsample Predicate) {
	if isSubsample == nil {
		isSubsample = IsSubsample
	}
	for i, name := range tr.order {
		node := tr.nodes[name]
		if node.Type != NodeSample || isSubsample(node) {
			continue
		}
		for _, pastName := range tr.order[:i] {
			past := tr.nodes[pastName]
			if past.Type != NodeSample || isSubsample(past) {
				continue
			}
			if independent(node.CondIndepStack, past.CondIndepStack) {
				continue
			}
			tr.AddEdge(pastName, name)
		}
	}
}

// independent zips the two frame stacks up to the shorter length and reports
// whether any matched pair differs only in its replicate counter.
func independent(a, b []Frame) bool {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i].Name == b[i].Name && a[i].Counter != b[i].Counter {
			return true
		}
	}
	return false
}
