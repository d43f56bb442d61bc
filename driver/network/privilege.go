// Package network implements netdrv's "network" driver: a generic.Driver
// plus privilege-level awareness, so callers can ask for a command or a
// batch of config lines to run at a named privilege level and have the
// driver handle escalating or de-escalating to get there.
package network

import (
	"regexp"

	"github.com/netdrv/netdrv/errs"
)

// PrivilegeLevel defines one rung of a device's privilege ladder: its
// name, the pattern that recognizes its prompt, and how to move into and
// out of it.
type PrivilegeLevel struct {
	// Name identifies this level, e.g. "exec" or "configuration".
	Name string

	// Pattern matches this level's prompt.
	Pattern *regexp.Regexp

	// NotContains lists substrings that, if present in the candidate
	// prompt text, disqualify a Pattern match for this level -- used to
	// disambiguate prompts that would otherwise collide.
	NotContains []string

	// PreviousPrivilegeLevel is the name of the level directly below this
	// one, used to build the privilege graph. Empty for the lowest level.
	PreviousPrivilegeLevel string

	// Escalate is the input sent to move from PreviousPrivilegeLevel into
	// this level.
	Escalate string
	// EscalateAuth indicates escalating into this level requires
	// authentication (handled via the secondary password).
	EscalateAuth bool
	// EscalatePrompt is the prompt expected while escalating, if
	// EscalateAuth is set.
	EscalatePrompt string

	// Deescalate is the input sent to move from this level back down to
	// PreviousPrivilegeLevel.
	Deescalate string
}

// graph is an adjacency map over privilege level names, built once per
// Driver.Open/UpdatePrivileges call and mirrored so it can be walked in
// either direction.
type graph map[string]map[string]bool

func buildGraph(levels []PrivilegeLevel) graph {
	g := make(graph, len(levels))

	for _, lvl := range levels {
		if _, ok := g[lvl.Name]; !ok {
			g[lvl.Name] = make(map[string]bool)
		}

		if lvl.PreviousPrivilegeLevel == "" {
			continue
		}

		g[lvl.Name][lvl.PreviousPrivilegeLevel] = true
	}

	// Mirror edges so the graph can be walked toward higher or lower
	// privilege levels alike.
	for name, neighbors := range g {
		for neighbor := range neighbors {
			if _, ok := g[neighbor]; !ok {
				g[neighbor] = make(map[string]bool)
			}
			g[neighbor][name] = true
		}
	}

	return g
}

// shortestPath returns the sequence of privilege level names from start
// to target inclusive, walking the graph breadth-first so the result is
// always the shortest available path and is found deterministically
// regardless of map iteration order. It returns an error if target is
// unreachable from start.
func shortestPath(g graph, start, target string) ([]string, error) {
	if start == target {
		return []string{start}, nil
	}

	visited := map[string]bool{start: true}
	prev := map[string]string{}
	queue := []string{start}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		for neighbor := range g[cur] {
			if visited[neighbor] {
				continue
			}
			visited[neighbor] = true
			prev[neighbor] = cur

			if neighbor == target {
				return reconstructPath(prev, start, target), nil
			}

			queue = append(queue, neighbor)
		}
	}

	return nil, errs.Newf("no path from privilege level %q to %q", start, target)
}

func reconstructPath(prev map[string]string, start, target string) []string {
	path := []string{target}

	for path[len(path)-1] != start {
		path = append(path, prev[path[len(path)-1]])
	}

	// path was built target -> start; reverse it.
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}

	return path
}
