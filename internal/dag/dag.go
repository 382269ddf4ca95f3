// Package dag provides the dependency graph between named derivations.
// It detects cycles and groups the derivations needed for a target set
// into parallel execution levels.
package dag

import (
	"fmt"
	"maps"
	"slices"
)

// Node is a derivation in the graph.
type Node struct {
	// Name is the unique derivation name.
	Name string
	// Description is a one-line summary shown by listings.
	Description string
}

// Graph is a directed acyclic graph of derivations. An edge from A to B
// means B is computed from A.
type Graph struct {
	nodes    map[string]*Node
	children map[string][]string
	parents  map[string][]string
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		nodes:    make(map[string]*Node),
		children: make(map[string][]string),
		parents:  make(map[string][]string),
	}
}

// AddNode adds a derivation, replacing the description if it already exists.
func (g *Graph) AddNode(name, description string) {
	if n, ok := g.nodes[name]; ok {
		n.Description = description
		return
	}
	g.nodes[name] = &Node{Name: name, Description: description}
	g.children[name] = nil
	g.parents[name] = nil
}

// AddEdge records that child is computed from parent.
func (g *Graph) AddEdge(parent, child string) error {
	if _, ok := g.nodes[parent]; !ok {
		return fmt.Errorf("parent node %q does not exist", parent)
	}
	if _, ok := g.nodes[child]; !ok {
		return fmt.Errorf("child node %q does not exist", child)
	}
	if parent == child {
		return fmt.Errorf("self-loop detected: %s", parent)
	}

	if !slices.Contains(g.children[parent], child) {
		g.children[parent] = append(g.children[parent], child)
	}
	if !slices.Contains(g.parents[child], parent) {
		g.parents[child] = append(g.parents[child], parent)
	}
	return nil
}

// Node returns the derivation with the given name.
func (g *Graph) Node(name string) (*Node, bool) {
	n, ok := g.nodes[name]
	return n, ok
}

// Has reports whether name is a derivation in the graph.
func (g *Graph) Has(name string) bool {
	_, ok := g.nodes[name]
	return ok
}

// Parents returns the direct dependencies of name, sorted.
func (g *Graph) Parents(name string) []string {
	return sorted(g.parents[name])
}

// Children returns the direct dependents of name, sorted.
func (g *Graph) Children(name string) []string {
	return sorted(g.children[name])
}

// Names returns every derivation name, sorted.
func (g *Graph) Names() []string {
	return slices.Sorted(maps.Keys(g.nodes))
}

// Len returns the number of derivations.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// FindCycle returns a cycle path, or nil when the graph is acyclic.
func (g *Graph) FindCycle() []string {
	const (
		unvisited = iota
		active
		done
	)
	state := make(map[string]int, len(g.nodes))
	var stack []string
	var cycle []string

	var visit func(name string) bool
	visit = func(name string) bool {
		state[name] = active
		stack = append(stack, name)
		for _, child := range sorted(g.children[name]) {
			switch state[child] {
			case active:
				start := slices.Index(stack, child)
				cycle = append(slices.Clone(stack[start:]), child)
				return true
			case unvisited:
				if visit(child) {
					return true
				}
			}
		}
		stack = stack[:len(stack)-1]
		state[name] = done
		return false
	}

	for _, name := range g.Names() {
		if state[name] == unvisited && visit(name) {
			return cycle
		}
	}
	return nil
}

// Upstream returns every transitive dependency of name, sorted.
func (g *Graph) Upstream(name string) []string {
	seen := make(map[string]bool)
	var walk func(string)
	walk = func(n string) {
		for _, p := range g.parents[n] {
			if !seen[p] {
				seen[p] = true
				walk(p)
			}
		}
	}
	walk(name)
	return slices.Sorted(maps.Keys(seen))
}

// Closure returns the targets plus all of their upstream derivations, sorted.
func (g *Graph) Closure(targets ...string) ([]string, error) {
	set := make(map[string]bool)
	for _, t := range targets {
		if !g.Has(t) {
			return nil, fmt.Errorf("unknown node %q", t)
		}
		set[t] = true
		for _, u := range g.Upstream(t) {
			set[u] = true
		}
	}
	return slices.Sorted(maps.Keys(set)), nil
}

// Levels groups derivations into execution levels: every derivation in
// level N depends only on derivations in levels below N. With targets,
// only the targets and their upstream derivations are included.
func (g *Graph) Levels(targets ...string) ([][]string, error) {
	if cycle := g.FindCycle(); cycle != nil {
		return nil, fmt.Errorf("cycle detected: %v", cycle)
	}

	names := g.Names()
	if len(targets) > 0 {
		var err error
		if names, err = g.Closure(targets...); err != nil {
			return nil, err
		}
	}

	depth := make(map[string]int, len(names))
	var level func(string) int
	level = func(name string) int {
		if d, ok := depth[name]; ok {
			return d
		}
		d := 0
		for _, p := range g.parents[name] {
			d = max(d, level(p)+1)
		}
		depth[name] = d
		return d
	}

	var levels [][]string
	for _, name := range names {
		d := level(name)
		for len(levels) <= d {
			levels = append(levels, nil)
		}
		levels[d] = append(levels[d], name)
	}
	return levels, nil
}

func sorted(s []string) []string {
	return slices.Sorted(slices.Values(s))
}
