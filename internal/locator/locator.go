// Package locator models abstract UI targets as ordered lists of concrete
// element-finding strategies. The ordering is a trust ladder: resilient
// attribute/role expressions first, brittle absolute structural paths kept
// only as last resort for when the portal renders with altered styling but
// stable structure.
package locator

// Kind is one concrete element-finding strategy.
type Kind int

const (
	CSS Kind = iota
	XPath
	LinkText
)

func (k Kind) String() string {
	switch k {
	case CSS:
		return "css"
	case XPath:
		return "xpath"
	case LinkText:
		return "linkText"
	default:
		return "unknown"
	}
}

// Candidate is one strategy/expression pair for finding a Target.
type Candidate struct {
	Kind Kind
	Expr string
}

// Predicate is the readiness condition a resolved element must satisfy.
type Predicate int

const (
	Exists Predicate = iota
	Visible
	Clickable
)

func (p Predicate) String() string {
	switch p {
	case Visible:
		return "visible"
	case Clickable:
		return "clickable"
	default:
		return "exists"
	}
}

// Target is an abstract named UI element bound to its candidate ladder.
// Targets are static, defined per workflow stage, never mutated at runtime.
type Target struct {
	Name       string
	Candidates []Candidate
}

// NewTarget builds a target from candidates in declared trust order.
func NewTarget(name string, candidates ...Candidate) Target {
	return Target{Name: name, Candidates: candidates}
}
