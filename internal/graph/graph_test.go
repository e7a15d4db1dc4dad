package graph

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/quizflow/internal/quiz"
)

func question(id, title string, options ...string) quiz.Question {
	q := quiz.Question{ID: id, Type: quiz.TypeTextList, Title: title}
	for _, o := range options {
		q.Options = append(q.Options, quiz.Option{ID: o, Text: strings.ToUpper(o)})
	}
	return q
}

func sampleQuiz() quiz.Quiz {
	q1 := question("Q1", "Pick one", "a", "b", "c")
	q1.Branching = quiz.Branching{
		"a": quiz.GoTo("Q3"),
		"b": quiz.NextDefault(),
		"c": quiz.Complete(),
	}
	return quiz.Quiz{Questions: []quiz.Question{
		q1,
		question("Q2", "Why", "a"),
		question("Q3", "Done?", "a"),
	}}
}

func TestProject_Nodes(t *testing.T) {
	g := Project(sampleQuiz())

	require.Len(t, g.Nodes, 3)
	assert.Equal(t, Node{ID: "Q1", Label: "Q1: Pick one", Position: 1, Kind: NodeQuestion}, g.Nodes[0])
	assert.Equal(t, "Q3: Done?", g.Nodes[2].Label)
}

func TestProject_DefaultAndBranchEdges(t *testing.T) {
	g := Project(sampleQuiz())

	assert.Equal(t, []Edge{
		{ID: "Q1-Q2", Source: "Q1", Target: "Q2", Kind: EdgeDefault},
		{ID: "Q2-Q3", Source: "Q2", Target: "Q3", Kind: EdgeDefault},
	}, g.DefaultEdges())

	assert.Equal(t, []Edge{
		{ID: "Q1-a-Q3", Source: "Q1", Target: "Q3", Kind: EdgeBranch, Label: "A", OptionID: "a"},
	}, g.BranchEdges())
}

func TestProject_SkipsUnresolvableTargets(t *testing.T) {
	q := sampleQuiz()
	q.Questions[1].Branching = quiz.Branching{"a": quiz.GoTo("ghost")}

	g := Project(q)
	assert.Len(t, g.BranchEdges(), 1)
}

func TestProject_LabelFallsBackToOptionID(t *testing.T) {
	q := sampleQuiz()
	q.Questions[1].Options[0].Text = ""
	q.Questions[1].Branching = quiz.Branching{"a": quiz.GoTo("Q1"), "orphan": quiz.GoTo("Q3")}

	g := Project(q)
	var labels []string
	for _, e := range g.Outgoing("Q2") {
		if e.Kind == EdgeBranch {
			labels = append(labels, e.Label)
		}
	}
	assert.Equal(t, []string{"a", "orphan"}, labels)
}

func TestProject_DrawsSelfLoops(t *testing.T) {
	q := sampleQuiz()
	q.Questions[1].Branching = quiz.Branching{"a": quiz.GoTo("Q2")}

	edges := Project(q).BranchEdges()
	require.Len(t, edges, 2)
	assert.Equal(t, "Q2-a-Q2", edges[1].ID)
}

func TestProject_EndNode(t *testing.T) {
	g := Project(sampleQuiz(), WithEndNode())

	end, ok := g.Node(EndNodeID)
	require.True(t, ok)
	assert.Equal(t, NodeEnd, end.Kind)

	var completes []string
	for _, e := range g.Edges {
		if e.Kind == EdgeComplete {
			completes = append(completes, e.ID)
		}
	}
	assert.Equal(t, []string{"Q1-c-end", "Q3-end"}, completes)

	_, ok = Project(sampleQuiz()).Node(EndNodeID)
	assert.False(t, ok, "end node is opt-in")
}

func TestProject_EndNodeAvoidsQuestionID(t *testing.T) {
	q := quiz.Quiz{Questions: []quiz.Question{
		question("q1", "Start", "a"),
		question("end", "Last words"),
	}}
	q.Questions[0].Branching = quiz.Branching{"a": quiz.Complete()}

	g := Project(q, WithEndNode())

	seen := map[string]bool{}
	for _, n := range g.Nodes {
		assert.False(t, seen[n.ID], "duplicate node %q", n.ID)
		seen[n.ID] = true
	}

	end, ok := g.EndNode()
	require.True(t, ok)
	assert.Equal(t, "_end", end.ID)

	node, ok := g.Node("end")
	require.True(t, ok)
	assert.Equal(t, NodeQuestion, node.Kind)

	var completes []string
	for _, e := range g.Edges {
		if e.Kind == EdgeComplete {
			assert.Equal(t, end.ID, e.Target)
			completes = append(completes, e.ID)
		}
	}
	assert.Equal(t, []string{"q1-a-_end", "end-_end"}, completes)
}

func TestProject_EmptyQuiz(t *testing.T) {
	g := Project(quiz.Quiz{})
	assert.Empty(t, g.Nodes)
	assert.Empty(t, g.Edges)

	g = Project(quiz.Quiz{}, WithEndNode())
	assert.Len(t, g.Nodes, 1)
	assert.Empty(t, g.Edges)
}

// TestProject_BranchEdgeCount checks that every rule targeting a question in
// the quiz yields exactly one branch edge, with no deduplication.
func TestProject_BranchEdgeCount(t *testing.T) {
	targets := []quiz.BranchTarget{
		quiz.NextDefault(), quiz.Complete(), quiz.GoTo("ghost"),
	}

	for n := 1; n <= 5; n++ {
		var qs []quiz.Question
		for i := range n {
			qs = append(qs, question(fmt.Sprintf("q%d", i), "t", "x", "y", "z"))
		}
		want := 0
		for i := range qs {
			qs[i].Branching = quiz.Branching{}
			for j, opt := range []string{"x", "y", "z"} {
				k := (i*3 + j) % (len(targets) + n)
				if k < len(targets) {
					qs[i].Branching[opt] = targets[k]
					continue
				}
				qs[i].Branching[opt] = quiz.GoTo(qs[k-len(targets)].ID)
				want++
			}
		}

		got := Project(quiz.Quiz{Questions: qs})
		assert.Len(t, got.BranchEdges(), want, "quiz with %d questions", n)
		assert.Len(t, got.DefaultEdges(), n-1)
	}
}

func TestProject_Deterministic(t *testing.T) {
	q := sampleQuiz()
	q.Questions[0].Branching["zz"] = quiz.GoTo("Q2")
	q.Questions[0].Branching["mm"] = quiz.GoTo("Q2")

	first := Project(q)
	for range 20 {
		assert.Equal(t, first, Project(q))
	}
}

func TestDOT(t *testing.T) {
	out := Project(sampleQuiz(), WithEndNode()).DOT()

	assert.True(t, strings.HasPrefix(out, "digraph quiz {"))
	assert.Contains(t, out, `"Q1" [label="Q1: Pick one"];`)
	assert.Contains(t, out, `"Q1" -> "Q2" [style=dashed, color=gray];`)
	assert.Contains(t, out, `"Q1" -> "Q3" [label="A"];`)
	assert.Contains(t, out, `"end" [label="End", shape=doublecircle];`)
}

func TestDOT_EscapesQuotes(t *testing.T) {
	q := quiz.Quiz{Questions: []quiz.Question{question("q1", `Say "hi"`)}}
	assert.Contains(t, Project(q).DOT(), `label="Q1: Say \"hi\""`)
}

func TestMermaid(t *testing.T) {
	out := Project(sampleQuiz(), WithEndNode()).Mermaid()

	assert.True(t, strings.HasPrefix(out, "flowchart TD\n"))
	assert.Contains(t, out, `n0["Q1: Pick one"]`)
	assert.Contains(t, out, `n0 -.-> n1`)
	assert.Contains(t, out, `n0 -->|"A"| n2`)
	assert.Contains(t, out, `n3(("End"))`)
}
