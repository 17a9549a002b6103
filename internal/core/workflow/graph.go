// Package workflow holds the per-request-type stage graphs. Graphs are
// immutable configuration loaded once at startup and validated for
// well-formedness before use.
package workflow

import (
	_ "embed"
	"errors"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/bgf/dashboard-api/internal/core/domain"
)

//go:embed graphs.yaml
var defaultGraphs []byte

// Stage is a node of a stage graph.
type Stage struct {
	Name     domain.RequestStatus
	Terminal bool
	Next     []domain.RequestStatus
	Actors   []domain.Role
}

// Graph is the directed graph of stages for one request type.
type Graph struct {
	Type             domain.RequestType
	Initial          domain.RequestStatus
	RequesterTargets []domain.RequestStatus
	Stages           map[domain.RequestStatus]Stage
}

// Registry maps every request type to its graph.
type Registry struct {
	graphs map[domain.RequestType]*Graph
}

type stageSpec struct {
	Terminal bool     `yaml:"terminal"`
	Next     []string `yaml:"next"`
	Actors   []string `yaml:"actors"`
}

type graphSpec struct {
	Initial          string               `yaml:"initial"`
	RequesterTargets []string             `yaml:"requester_targets"`
	Stages           map[string]stageSpec `yaml:"stages"`
}

// Default loads the embedded graphs.
func Default() (*Registry, error) {
	return Load(defaultGraphs)
}

// Load parses and validates stage graphs from YAML.
func Load(data []byte) (*Registry, error) {
	var specs map[string]graphSpec
	if err := yaml.Unmarshal(data, &specs); err != nil {
		return nil, fmt.Errorf("parse stage graphs: %w", err)
	}
	if len(specs) == 0 {
		return nil, errors.New("parse stage graphs: no request types defined")
	}

	reg := &Registry{graphs: make(map[domain.RequestType]*Graph, len(specs))}
	for name, spec := range specs {
		g := &Graph{
			Type:             domain.RequestType(name),
			Initial:          domain.RequestStatus(spec.Initial),
			RequesterTargets: toStatuses(spec.RequesterTargets),
			Stages:           make(map[domain.RequestStatus]Stage, len(spec.Stages)),
		}
		for stageName, s := range spec.Stages {
			st := Stage{
				Name:     domain.RequestStatus(stageName),
				Terminal: s.Terminal,
				Next:     toStatuses(s.Next),
			}
			for _, a := range s.Actors {
				st.Actors = append(st.Actors, domain.Role(a))
			}
			g.Stages[st.Name] = st
		}
		if err := g.Validate(); err != nil {
			return nil, err
		}
		reg.graphs[g.Type] = g
	}
	return reg, nil
}

func toStatuses(in []string) []domain.RequestStatus {
	out := make([]domain.RequestStatus, 0, len(in))
	for _, s := range in {
		out = append(out, domain.RequestStatus(s))
	}
	return out
}

// Validate checks that the graph is well formed: known stage names, a
// declared initial stage, no edges out of terminal stages, every non-terminal
// stage has at least one edge, every edge targets a declared stage, and every
// stage is reachable from the initial one.
func (g *Graph) Validate() error {
	if _, ok := g.Stages[g.Initial]; !ok {
		return fmt.Errorf("graph %s: initial stage %q not declared", g.Type, g.Initial)
	}
	for name, st := range g.Stages {
		if !name.Known() {
			return fmt.Errorf("graph %s: unknown stage %q", g.Type, name)
		}
		if st.Terminal && (len(st.Next) > 0 || len(st.Actors) > 0) {
			return fmt.Errorf("graph %s: terminal stage %q declares transitions", g.Type, name)
		}
		if !st.Terminal && len(st.Next) == 0 {
			return fmt.Errorf("graph %s: stage %q is a dead end but not terminal", g.Type, name)
		}
		for _, next := range st.Next {
			if _, ok := g.Stages[next]; !ok {
				return fmt.Errorf("graph %s: stage %q points to undeclared stage %q", g.Type, name, next)
			}
		}
		for _, a := range st.Actors {
			if !a.Valid() {
				return fmt.Errorf("graph %s: stage %q names unknown role %q", g.Type, name, a)
			}
		}
	}
	for _, t := range g.RequesterTargets {
		if _, ok := g.Stages[t]; !ok {
			return fmt.Errorf("graph %s: requester target %q not declared", g.Type, t)
		}
	}

	seen := map[domain.RequestStatus]bool{g.Initial: true}
	queue := []domain.RequestStatus{g.Initial}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range g.Stages[cur].Next {
			if !seen[next] {
				seen[next] = true
				queue = append(queue, next)
			}
		}
	}
	for name := range g.Stages {
		if !seen[name] {
			return fmt.Errorf("graph %s: stage %q is unreachable", g.Type, name)
		}
	}
	return nil
}

// Graph returns the graph for a request type.
func (r *Registry) Graph(t domain.RequestType) (*Graph, bool) {
	g, ok := r.graphs[t]
	return g, ok
}

// Types lists the configured request types, sorted.
func (r *Registry) Types() []domain.RequestType {
	out := make([]domain.RequestType, 0, len(r.graphs))
	for t := range r.graphs {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// NextStages returns the stages reachable in one step from stage. Terminal
// and unknown stages, and unknown types, yield an empty slice.
func (r *Registry) NextStages(t domain.RequestType, stage domain.RequestStatus) []domain.RequestStatus {
	g, ok := r.graphs[t]
	if !ok {
		return []domain.RequestStatus{}
	}
	st, ok := g.Stages[stage]
	if !ok || st.Terminal {
		return []domain.RequestStatus{}
	}
	out := make([]domain.RequestStatus, len(st.Next))
	copy(out, st.Next)
	return out
}

// CanTransition reports whether to is one step from from in t's graph.
func (r *Registry) CanTransition(t domain.RequestType, from, to domain.RequestStatus) bool {
	for _, next := range r.NextStages(t, from) {
		if next == to {
			return true
		}
	}
	return false
}

// MayAct reports whether role may move a request out of stage. Requesters
// acting on their own request are checked separately via RequesterTargets.
func (g *Graph) MayAct(stage domain.RequestStatus, role domain.Role) bool {
	if role == domain.RoleAdmin {
		return true
	}
	for _, a := range g.Stages[stage].Actors {
		if a == role {
			return true
		}
	}
	return false
}

// RequesterMay reports whether the requester may move their request to target.
func (g *Graph) RequesterMay(target domain.RequestStatus) bool {
	for _, t := range g.RequesterTargets {
		if t == target {
			return true
		}
	}
	return false
}
