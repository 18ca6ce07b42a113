package progress

import (
	"context"

	"github.com/abhisek/practix/internal/topicgraph"
)

// DisplayState is how a topic is presented in the branch/topic view.
type DisplayState string

const (
	// DisplayLocked topics have unmastered prerequisites. They stay practicable.
	DisplayLocked     DisplayState = "locked"
	DisplayAvailable  DisplayState = "available"
	DisplayInProgress DisplayState = "in_progress"
	DisplayMastered   DisplayState = "mastered"
)

// ResolveDisplayState maps a status and prerequisite state to a display state.
func ResolveDisplayState(status Status, prerequisitesMet bool) DisplayState {
	switch status {
	case StatusInProgress:
		return DisplayInProgress
	case StatusMastered:
		return DisplayMastered
	default:
		if prerequisitesMet {
			return DisplayAvailable
		}
		return DisplayLocked
	}
}

// TopicView is one topic in the branch/topic view.
type TopicView struct {
	Topic       topicgraph.Topic
	Progress    TopicProgress
	State       DisplayState
	Recommended bool
}

// BranchView groups topic views by branch.
type BranchView struct {
	Branch topicgraph.Branch
	Topics []TopicView
}

// Recommendations returns topics that are not mastered and whose
// prerequisites are all mastered, in topological order.
func Recommendations(g *topicgraph.Graph, snap map[string]TopicProgress) []topicgraph.Topic {
	mastered := masteredSet(snap)
	var out []topicgraph.Topic
	for _, t := range g.TopologicalOrder() {
		if mastered[t.ID] {
			continue
		}
		if g.IsUnlocked(t.ID, mastered) {
			out = append(out, t)
		}
	}
	return out
}

// BuildView assembles the branch/topic view from a snapshot.
func BuildView(g *topicgraph.Graph, snap map[string]TopicProgress) []BranchView {
	mastered := masteredSet(snap)
	recommended := make(map[string]bool)
	for _, t := range Recommendations(g, snap) {
		recommended[t.ID] = true
	}

	var out []BranchView
	for _, b := range g.Branches() {
		bv := BranchView{Branch: b}
		for _, t := range g.ByBranch(b.ID) {
			tp, ok := snap[t.ID]
			if !ok {
				tp = notStarted("", t.ID)
			}
			bv.Topics = append(bv.Topics, TopicView{
				Topic:       t,
				Progress:    tp,
				State:       ResolveDisplayState(tp.Status, g.IsUnlocked(t.ID, mastered)),
				Recommended: recommended[t.ID],
			})
		}
		out = append(out, bv)
	}
	return out
}

// View returns the user's branch/topic view with recommendations.
func (t *Tracker) View(ctx context.Context, userID string) []BranchView {
	return BuildView(t.graph, t.Snapshot(ctx, userID))
}

func masteredSet(snap map[string]TopicProgress) map[string]bool {
	m := make(map[string]bool)
	for id, tp := range snap {
		if tp.Status == StatusMastered {
			m[id] = true
		}
	}
	return m
}
