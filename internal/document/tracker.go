package document

// Section names a top-level key of the document.
type Section string

const (
	SectionProblem    Section = "Problem"
	SectionModel      Section = "Model"
	SectionDomains    Section = "Domains"
	SectionBoundaries Section = "Boundaries"
	SectionSolver     Section = "Solver"
)

// order is the emission order of the top-level keys.
var order = []Section{SectionProblem, SectionModel, SectionDomains, SectionBoundaries, SectionSolver}

// Required lists the sections that gate serialization. Boundaries is not
// among them.
var Required = []Section{SectionProblem, SectionModel, SectionDomains, SectionSolver}

// State summarizes how far a document has been configured.
type State int

const (
	Empty State = iota
	PartiallyConfigured
	Complete
)

func (s State) String() string {
	switch s {
	case Empty:
		return "empty"
	case PartiallyConfigured:
		return "partially configured"
	default:
		return "complete"
	}
}

// tracker records which sections have been supplied. Inserts are idempotent
// for the gate; the counter only records how often a section was replaced.
type tracker struct {
	supplied map[Section]int
}

func newTracker() *tracker {
	return &tracker{supplied: make(map[Section]int)}
}

func (t *tracker) add(s Section) {
	t.supplied[s]++
}

func (t *tracker) count(s Section) int {
	return t.supplied[s]
}

// missing returns the required sections not yet supplied, in Required order.
func (t *tracker) missing() []Section {
	var out []Section
	for _, s := range Required {
		if t.supplied[s] == 0 {
			out = append(out, s)
		}
	}
	return out
}

// state treats a document holding only its Problem section as Empty, since
// Problem is recorded at construction.
func (t *tracker) state() State {
	if len(t.missing()) == 0 {
		return Complete
	}
	for s, n := range t.supplied {
		if s != SectionProblem && n > 0 {
			return PartiallyConfigured
		}
	}
	return Empty
}
