// Package graph projects a quiz's structure into a node/edge graph for
// editors and diagram renderers.
package graph

import (
	"fmt"

	"github.com/abhisek/quizflow/internal/quiz"
)

// NodeKind distinguishes question nodes from the synthetic end node.
type NodeKind string

const (
	NodeQuestion NodeKind = "question"
	NodeEnd      NodeKind = "end"
)

// EdgeKind distinguishes default-order edges from branching edges.
type EdgeKind string

const (
	EdgeDefault  EdgeKind = "default"
	EdgeBranch   EdgeKind = "branch"
	EdgeComplete EdgeKind = "complete"
)

// EndNodeID is the ID of the synthetic end node added by WithEndNode. When a
// question already uses it, the end node gets underscores prepended until
// the ID is free; use Graph.EndNode to find it.
const EndNodeID = "end"

// Node is one question in the graph.
type Node struct {
	ID       string   `json:"id"`
	Label    string   `json:"label"`
	Position int      `json:"position"` // 1-based; 0 for the end node
	Kind     NodeKind `json:"kind"`
}

// Edge is a possible transition between two nodes.
type Edge struct {
	ID       string   `json:"id"`
	Source   string   `json:"source"`
	Target   string   `json:"target"`
	Kind     EdgeKind `json:"kind"`
	Label    string   `json:"label,omitempty"`
	OptionID string   `json:"optionId,omitempty"`
}

// Graph is the projection of a quiz. Nodes are in quiz order.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

type config struct {
	endNode bool
}

// Option configures Project.
type Option func(*config)

// WithEndNode adds an "end" node with edges from the last question and from
// every rule that completes the quiz.
func WithEndNode() Option {
	return func(c *config) { c.endNode = true }
}

// Project derives the graph of q. Default edges join consecutive questions.
// Branch edges are added for every rule whose target is a question in the
// quiz, visiting rules in option order; rules pointing elsewhere are skipped.
func Project(q quiz.Quiz, opts ...Option) Graph {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	ids := make(map[string]bool, len(q.Questions))
	for _, question := range q.Questions {
		ids[question.ID] = true
	}

	endID := EndNodeID
	for ids[endID] {
		endID = "_" + endID
	}

	g := Graph{Nodes: make([]Node, 0, len(q.Questions)), Edges: []Edge{}}
	for i, question := range q.Questions {
		g.Nodes = append(g.Nodes, Node{
			ID:       question.ID,
			Label:    fmt.Sprintf("Q%d: %s", i+1, question.Title),
			Position: i + 1,
			Kind:     NodeQuestion,
		})
	}

	for i := 0; i+1 < len(q.Questions); i++ {
		src, dst := q.Questions[i].ID, q.Questions[i+1].ID
		g.Edges = append(g.Edges, Edge{
			ID:     src + "-" + dst,
			Source: src,
			Target: dst,
			Kind:   EdgeDefault,
		})
	}

	for _, question := range q.Questions {
		for _, optionID := range question.Branching.OptionIDs(question.Options) {
			target := question.Branching[optionID]
			label := optionLabel(question, optionID)

			if target.IsComplete() {
				if cfg.endNode {
					g.Edges = append(g.Edges, Edge{
						ID:       question.ID + "-" + optionID + "-" + endID,
						Source:   question.ID,
						Target:   endID,
						Kind:     EdgeComplete,
						Label:    label,
						OptionID: optionID,
					})
				}
				continue
			}

			targetID, ok := target.QuestionID()
			if !ok || !ids[targetID] {
				continue
			}
			g.Edges = append(g.Edges, Edge{
				ID:       question.ID + "-" + optionID + "-" + targetID,
				Source:   question.ID,
				Target:   targetID,
				Kind:     EdgeBranch,
				Label:    label,
				OptionID: optionID,
			})
		}
	}

	if cfg.endNode {
		g.Nodes = append(g.Nodes, Node{ID: endID, Label: "End", Kind: NodeEnd})
		if n := len(q.Questions); n > 0 {
			last := q.Questions[n-1].ID
			g.Edges = append(g.Edges, Edge{
				ID:     last + "-" + endID,
				Source: last,
				Target: endID,
				Kind:   EdgeComplete,
			})
		}
	}

	return g
}

func optionLabel(q quiz.Question, optionID string) string {
	if o, ok := q.Option(optionID); ok && o.Text != "" {
		return o.Text
	}
	return optionID
}

// BranchEdges returns the edges produced by branching rules.
func (g Graph) BranchEdges() []Edge {
	return g.edgesOfKind(EdgeBranch)
}

// DefaultEdges returns the edges of the default question order.
func (g Graph) DefaultEdges() []Edge {
	return g.edgesOfKind(EdgeDefault)
}

// Outgoing returns the edges leaving the given node.
func (g Graph) Outgoing(nodeID string) []Edge {
	var out []Edge
	for _, e := range g.Edges {
		if e.Source == nodeID {
			out = append(out, e)
		}
	}
	return out
}

// Node returns the node with the given ID.
func (g Graph) Node(id string) (Node, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// EndNode returns the synthetic end node, if the graph has one.
func (g Graph) EndNode() (Node, bool) {
	for _, n := range g.Nodes {
		if n.Kind == NodeEnd {
			return n, true
		}
	}
	return Node{}, false
}

func (g Graph) edgesOfKind(kind EdgeKind) []Edge {
	var out []Edge
	for _, e := range g.Edges {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}
