package topicgraph

import (
	"fmt"
	"slices"
	"sort"
)

// Graph holds the topic DAG with precomputed indices. It is immutable once
// built and safe for concurrent use.
type Graph struct {
	topics     []Topic
	branches   []Branch
	byID       map[string]*Topic
	byBranch   map[string][]Topic
	dependents map[string][]string
	topoOrder  []Topic
	topoIndex  map[string]int

	defaultTopic     string
	foundationBranch string
}

// New validates the given branches and topics and builds a Graph.
func New(branches []Branch, topics []Topic, opts ...Option) (*Graph, error) {
	if err := validateTopics(branches, topics); err != nil {
		return nil, err
	}
	gr := build(branches, topics)
	for _, opt := range opts {
		opt(gr)
	}
	if gr.defaultTopic == "" && len(gr.topoOrder) > 0 {
		gr.defaultTopic = gr.topoOrder[0].ID
	}
	if _, ok := gr.byID[gr.defaultTopic]; !ok {
		return nil, fmt.Errorf("default topic %q is not in the graph", gr.defaultTopic)
	}
	return gr, nil
}

// Option customizes a Graph.
type Option func(*Graph)

// WithDefaultTopic sets the topic used when no other topic qualifies.
func WithDefaultTopic(id string) Option {
	return func(g *Graph) { g.defaultTopic = id }
}

// WithFoundationBranch sets the branch sampled for foundation problems when
// the focus topic has no prerequisites.
func WithFoundationBranch(id string) Option {
	return func(g *Graph) { g.foundationBranch = id }
}

// build constructs the indices including topological order (Kahn's algorithm).
func build(branches []Branch, topics []Topic) *Graph {
	gr := &Graph{
		topics:     slices.Clone(topics),
		branches:   slices.Clone(branches),
		byID:       make(map[string]*Topic, len(topics)),
		byBranch:   make(map[string][]Topic),
		dependents: make(map[string][]string),
		topoIndex:  make(map[string]int, len(topics)),
	}

	for i := range gr.topics {
		gr.byID[gr.topics[i].ID] = &gr.topics[i]
	}

	for i := range gr.topics {
		for _, prereqID := range gr.topics[i].Prerequisites {
			gr.dependents[prereqID] = append(gr.dependents[prereqID], gr.topics[i].ID)
		}
	}

	inDegree := make(map[string]int, len(gr.topics))
	for i := range gr.topics {
		inDegree[gr.topics[i].ID] = len(gr.topics[i].Prerequisites)
	}

	// Seed the queue in declaration order so catalog authors control ties.
	var queue []string
	for _, t := range gr.topics {
		if inDegree[t.ID] == 0 {
			queue = append(queue, t.ID)
		}
	}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]

		gr.topoIndex[id] = len(gr.topoOrder)
		gr.topoOrder = append(gr.topoOrder, *gr.byID[id])

		for _, depID := range gr.dependents[id] {
			inDegree[depID]--
			if inDegree[depID] == 0 {
				queue = append(queue, depID)
			}
		}
	}

	for i := range gr.topics {
		t := gr.topics[i]
		gr.byBranch[t.Branch] = append(gr.byBranch[t.Branch], t)
	}
	for branch, ts := range gr.byBranch {
		sort.SliceStable(ts, func(i, j int) bool {
			return gr.topoIndex[ts[i].ID] < gr.topoIndex[ts[j].ID]
		})
		gr.byBranch[branch] = ts
	}

	return gr
}

// Topic returns a topic by ID.
func (g *Graph) Topic(id string) (Topic, bool) {
	t, ok := g.byID[id]
	if !ok {
		return Topic{}, false
	}
	return *t, true
}

// Has reports whether id names a topic in the graph.
func (g *Graph) Has(id string) bool {
	_, ok := g.byID[id]
	return ok
}

// Len returns the number of topics.
func (g *Graph) Len() int { return len(g.topics) }

// Topics returns all topics in declaration order.
func (g *Graph) Topics() []Topic {
	return slices.Clone(g.topics)
}

// Branches returns all branches in declaration order.
func (g *Graph) Branches() []Branch {
	return slices.Clone(g.branches)
}

// ByBranch returns the topics of a branch in topological order.
func (g *Graph) ByBranch(branch string) []Topic {
	return slices.Clone(g.byBranch[branch])
}

// Prerequisites returns the direct prerequisites of a topic.
func (g *Graph) Prerequisites(id string) []Topic {
	t, ok := g.byID[id]
	if !ok {
		return nil
	}
	result := make([]Topic, 0, len(t.Prerequisites))
	for _, prereqID := range t.Prerequisites {
		if p, ok := g.byID[prereqID]; ok {
			result = append(result, *p)
		}
	}
	return result
}

// AllPrerequisites returns the transitive prerequisites of a topic, nearest
// first in depth-first order. The topic itself is not included.
func (g *Graph) AllPrerequisites(id string) []Topic {
	t, ok := g.byID[id]
	if !ok {
		return nil
	}
	seen := map[string]bool{id: true}
	var result []Topic
	var visit func(ids []string)
	visit = func(ids []string) {
		for _, pid := range ids {
			if seen[pid] {
				continue
			}
			seen[pid] = true
			p, ok := g.byID[pid]
			if !ok {
				continue
			}
			result = append(result, *p)
			visit(p.Prerequisites)
		}
	}
	visit(t.Prerequisites)
	return result
}

// Dependents returns topics that directly depend on the given topic.
func (g *Graph) Dependents(id string) []Topic {
	depIDs := g.dependents[id]
	result := make([]Topic, 0, len(depIDs))
	for _, depID := range depIDs {
		if t, ok := g.byID[depID]; ok {
			result = append(result, *t)
		}
	}
	return result
}

// TopologicalOrder returns all topics such that every topic appears after
// its prerequisites.
func (g *Graph) TopologicalOrder() []Topic {
	return slices.Clone(g.topoOrder)
}

// TopoIndex returns the position of a topic in TopologicalOrder, or -1.
func (g *Graph) TopoIndex(id string) int {
	i, ok := g.topoIndex[id]
	if !ok {
		return -1
	}
	return i
}

// DefaultTopic is the fallback topic when nothing else qualifies.
func (g *Graph) DefaultTopic() Topic {
	return *g.byID[g.defaultTopic]
}

// FoundationTopics returns the topics of the foundational branch, or the
// root topics when no foundational branch is configured or it is empty.
func (g *Graph) FoundationTopics() []Topic {
	if ts := g.byBranch[g.foundationBranch]; len(ts) > 0 {
		return slices.Clone(ts)
	}
	return g.Roots()
}

// Roots returns all topics without prerequisites, in topological order.
func (g *Graph) Roots() []Topic {
	var roots []Topic
	for _, t := range g.topoOrder {
		if len(t.Prerequisites) == 0 {
			roots = append(roots, t)
		}
	}
	return roots
}

// IsUnlocked reports whether every prerequisite of id is in the mastered set.
// Locked topics remain practicable; this only feeds recommendations.
func (g *Graph) IsUnlocked(id string, mastered map[string]bool) bool {
	t, ok := g.byID[id]
	if !ok {
		return false
	}
	for _, prereqID := range t.Prerequisites {
		if !mastered[prereqID] {
			return false
		}
	}
	return true
}
