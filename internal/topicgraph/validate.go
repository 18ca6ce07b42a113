package topicgraph

import (
	"fmt"
	"strings"
)

// validateTopics performs all structural checks on the given catalog.
// Returns a combined error describing all problems found, or nil if valid.
func validateTopics(branches []Branch, topics []Topic) error {
	var errs []string

	if len(topics) == 0 {
		errs = append(errs, "catalog has no topics")
	}

	branchSet := make(map[string]bool, len(branches))
	for _, b := range branches {
		if b.ID == "" {
			errs = append(errs, "branch with empty ID")
			continue
		}
		if branchSet[b.ID] {
			errs = append(errs, fmt.Sprintf("duplicate branch ID: %q", b.ID))
		}
		branchSet[b.ID] = true
	}

	idSet := make(map[string]bool, len(topics))
	for _, t := range topics {
		if t.ID == "" {
			errs = append(errs, "topic with empty ID")
			continue
		}
		if idSet[t.ID] {
			errs = append(errs, fmt.Sprintf("duplicate topic ID: %q", t.ID))
		}
		idSet[t.ID] = true
	}

	for _, t := range topics {
		if !branchSet[t.Branch] {
			errs = append(errs, fmt.Sprintf("topic %q references unknown branch %q", t.ID, t.Branch))
		}
		for _, prereqID := range t.Prerequisites {
			if prereqID == t.ID {
				errs = append(errs, fmt.Sprintf("topic %q lists itself as a prerequisite", t.ID))
				continue
			}
			if !idSet[prereqID] {
				errs = append(errs, fmt.Sprintf("topic %q references nonexistent prerequisite %q", t.ID, prereqID))
			}
		}
		for _, d := range t.Difficulties {
			if !d.Valid() {
				errs = append(errs, fmt.Sprintf("topic %q declares unknown difficulty %q", t.ID, d))
			}
		}
	}

	// Cycle check (Kahn's algorithm).
	inDegree := make(map[string]int, len(topics))
	adjList := make(map[string][]string)
	for _, t := range topics {
		for _, prereqID := range t.Prerequisites {
			if !idSet[prereqID] || prereqID == t.ID {
				continue
			}
			inDegree[t.ID]++
			adjList[prereqID] = append(adjList[prereqID], t.ID)
		}
	}

	var queue []string
	for id := range idSet {
		if inDegree[id] == 0 {
			queue = append(queue, id)
		}
	}

	visited := 0
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		visited++
		for _, depID := range adjList[id] {
			inDegree[depID]--
			if inDegree[depID] == 0 {
				queue = append(queue, depID)
			}
		}
	}

	if visited < len(idSet) {
		var cycleNodes []string
		for _, t := range topics {
			if inDegree[t.ID] > 0 {
				cycleNodes = append(cycleNodes, t.ID)
			}
		}
		errs = append(errs, fmt.Sprintf("cycle detected involving topics: %s", strings.Join(cycleNodes, ", ")))
	}

	if len(errs) > 0 {
		return fmt.Errorf("topic graph validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}
