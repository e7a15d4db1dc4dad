package quiz

import "fmt"

// CyclePolicy decides whether multi-question branching cycles are accepted.
type CyclePolicy int

const (
	// AllowCycles accepts A -> B -> A style loops; the respondent's back
	// navigation and the UI are relied on to leave them.
	AllowCycles CyclePolicy = iota
	// RejectCycles refuses any question set whose flow graph has a cycle.
	RejectCycles
)

// ParseCyclePolicy converts "allow" or "reject" into a CyclePolicy.
func ParseCyclePolicy(s string) (CyclePolicy, error) {
	switch s {
	case "", "allow":
		return AllowCycles, nil
	case "reject":
		return RejectCycles, nil
	default:
		return AllowCycles, fmt.Errorf("unknown cycle policy %q (want allow or reject)", s)
	}
}

func (p CyclePolicy) String() string {
	if p == RejectCycles {
		return "reject"
	}
	return "allow"
}

type validateConfig struct {
	cycles CyclePolicy
}

// ValidateOption configures Validate.
type ValidateOption func(*validateConfig)

// WithCyclePolicy sets how branching cycles are treated.
func WithCyclePolicy(p CyclePolicy) ValidateOption {
	return func(c *validateConfig) { c.cycles = p }
}

// Validate checks a candidate question set before it is persisted.
// It reports every problem found; a nil return means the set is safe to hand
// to the flow resolver. The checks are: unique question and option IDs that
// do not collide with the branch keywords, known question types, branch targets that resolve to another question in
// the set (or are "complete"/unset), and optionally the absence of cycles.
func Validate(questions []Question, opts ...ValidateOption) error {
	cfg := validateConfig{}
	for _, o := range opts {
		o(&cfg)
	}

	var problems []error

	ids := make(map[string]bool, len(questions))
	for i, q := range questions {
		if q.ID == "" {
			problems = append(problems, fmt.Errorf("question at position %d has no ID", i+1))
			continue
		}
		if IsReservedID(q.ID) {
			problems = append(problems, fmt.Errorf("%w: %q", ErrReservedQuestionID, q.ID))
		}
		if ids[q.ID] {
			problems = append(problems, fmt.Errorf("%w: %q", ErrDuplicateQuestionID, q.ID))
		}
		ids[q.ID] = true
	}

	for _, q := range questions {
		if !q.Type.Valid() {
			problems = append(problems, fmt.Errorf("%w: question %q has type %q", ErrUnknownQuestionType, q.ID, q.Type))
		}

		optionIDs := make(map[string]bool, len(q.Options))
		for _, o := range q.Options {
			if optionIDs[o.ID] {
				problems = append(problems, fmt.Errorf("%w: question %q option %q", ErrDuplicateOptionID, q.ID, o.ID))
			}
			optionIDs[o.ID] = true
		}

		for _, optionID := range q.Branching.OptionIDs(q.Options) {
			targetID, ok := q.Branching[optionID].QuestionID()
			if !ok {
				continue
			}
			switch {
			case targetID == q.ID:
				problems = append(problems, &InvalidBranchTargetError{
					QuestionID: q.ID, OptionID: optionID, TargetID: targetID, Reason: ReasonSelfLoop,
				})
			case !ids[targetID]:
				problems = append(problems, &InvalidBranchTargetError{
					QuestionID: q.ID, OptionID: optionID, TargetID: targetID, Reason: ReasonNotFound,
				})
			}
		}
	}

	// Cycle detection only makes sense on an otherwise well-formed set.
	if cfg.cycles == RejectCycles && len(problems) == 0 {
		if cycle := findCycle(questions); len(cycle) > 0 {
			problems = append(problems, &CycleError{QuestionIDs: cycle})
		}
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// ValidateQuiz validates the questions of q.
func ValidateQuiz(q Quiz, opts ...ValidateOption) error {
	return Validate(q.Questions, opts...)
}

// findCycle returns the IDs of questions that sit on a cycle of the flow
// graph (default edges plus branch edges), in quiz order. A question is on a
// cycle when its strongly connected component has more than one member;
// self-loops are rejected before this runs.
func findCycle(questions []Question) []string {
	succ := make(map[string][]string, len(questions))
	for i, q := range questions {
		if i+1 < len(questions) {
			succ[q.ID] = append(succ[q.ID], questions[i+1].ID)
		}
		for _, optionID := range q.Branching.OptionIDs(q.Options) {
			if targetID, ok := q.Branching[optionID].QuestionID(); ok {
				succ[q.ID] = append(succ[q.ID], targetID)
			}
		}
	}

	onCycle := make(map[string]bool)
	for _, component := range stronglyConnected(questions, succ) {
		if len(component) > 1 {
			for _, id := range component {
				onCycle[id] = true
			}
		}
	}

	var cycle []string
	for _, q := range questions {
		if onCycle[q.ID] {
			cycle = append(cycle, q.ID)
		}
	}
	return cycle
}

// stronglyConnected runs Tarjan's algorithm over the flow graph, visiting
// roots in quiz order.
func stronglyConnected(questions []Question, succ map[string][]string) [][]string {
	var (
		next       int
		index      = make(map[string]int, len(questions))
		lowlink    = make(map[string]int, len(questions))
		onStack    = make(map[string]bool, len(questions))
		stack      []string
		components [][]string
	)

	var visit func(id string)
	visit = func(id string) {
		index[id] = next
		lowlink[id] = next
		next++
		stack = append(stack, id)
		onStack[id] = true

		for _, to := range succ[id] {
			if _, seen := index[to]; !seen {
				visit(to)
				lowlink[id] = min(lowlink[id], lowlink[to])
			} else if onStack[to] {
				lowlink[id] = min(lowlink[id], index[to])
			}
		}

		if lowlink[id] != index[id] {
			return
		}
		var component []string
		for {
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			onStack[top] = false
			component = append(component, top)
			if top == id {
				break
			}
		}
		components = append(components, component)
	}

	for _, q := range questions {
		if _, seen := index[q.ID]; !seen {
			visit(q.ID)
		}
	}
	return components
}
