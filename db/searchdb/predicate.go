package searchdb

import (
	"fmt"
	"time"
)

// Field names a document path. The values follow the stored document layout so
// adapters that keep documents as-is can use them directly.
type Field string

const (
	FieldID              Field = "_id"
	FieldTitle           Field = "title"
	FieldDescription     Field = "description"
	FieldCategoryName    Field = "category.name"
	FieldPlatformName    Field = "platforms.name"
	FieldPlatformQuality Field = "platforms.quality"
	FieldViews           Field = "views"
	FieldLikes           Field = "statistics.likes"
	FieldShares          Field = "statistics.shares"
	FieldDownloads       Field = "statistics.downloads"
	FieldCreatedAt       Field = "createdAt"
	FieldUpdatedAt       Field = "updatedAt"
)

// Predicate is a node of a filter tree. Adapters compile it into their own query language.
type Predicate interface {
	fmt.Stringer
	predicate()
}

// MatchAll matches every document.
type MatchAll struct{}

// And matches when every child matches. An empty And matches everything.
type And []Predicate

// Or matches when at least one child matches. An empty Or matches nothing.
type Or []Predicate

// Contains is an unanchored, case-insensitive substring match against any value of Field.
type Contains struct {
	Field   Field
	Pattern string
}

// Equals is an exact match against any value of Field.
type Equals struct {
	Field Field
	Value string
}

// ActiveCategory matches documents holding a category entry with the given id that is active.
type ActiveCategory struct {
	ID string
}

// Since matches documents whose Field is at or after Time.
type Since struct {
	Field Field
	Time  time.Time
}

func (MatchAll) predicate()       {}
func (And) predicate()            {}
func (Or) predicate()             {}
func (Contains) predicate()       {}
func (Equals) predicate()         {}
func (ActiveCategory) predicate() {}
func (Since) predicate()          {}

func (MatchAll) String() string { return "*" }

func (a And) String() string { return joinPredicates("AND", a) }

func (o Or) String() string { return joinPredicates("OR", o) }

func (c Contains) String() string { return fmt.Sprintf("%s~%q", c.Field, c.Pattern) }

func (e Equals) String() string { return fmt.Sprintf("%s=%q", e.Field, e.Value) }

func (a ActiveCategory) String() string { return fmt.Sprintf("category{id=%q,active}", a.ID) }

func (s Since) String() string { return fmt.Sprintf("%s>=%s", s.Field, s.Time.Format(time.RFC3339)) }

func joinPredicates(op string, children []Predicate) string {
	out := "("
	for i, child := range children {
		if i > 0 {
			out += " " + op + " "
		}
		out += child.String()
	}
	return out + ")"
}

// SortKey orders by a single field.
type SortKey struct {
	Field      Field
	Descending bool
}

// Sort is an ordered list of keys, most significant first.
type Sort []SortKey
