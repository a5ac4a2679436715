package filter

// Source selects which provenance partition of the snapshot is visible.
// SourceCombined disables source filtering entirely.
type Source string

const (
	SourceBatch    Source = "batch"
	SourceOnline   Source = "online"
	SourceCombined Source = "combined"
)

// ParseSource converts a string to a Source; unknown values fall back
// to combined so a bad preference can never hide data
func ParseSource(s string) Source {
	switch s {
	case "batch":
		return SourceBatch
	case "online":
		return SourceOnline
	default:
		return SourceCombined
	}
}

// TypeFilter is an optional exact-match filter on a type string. The
// zero value matches everything. Modeling this as an option rather than
// an "All" magic string keeps a real type named "All" representable.
type TypeFilter struct {
	value string
	set   bool
}

// TypeOf creates a filter that matches exactly the given type
func TypeOf(t string) TypeFilter {
	return TypeFilter{value: t, set: true}
}

// AllTypes creates a filter that matches every type
func AllTypes() TypeFilter {
	return TypeFilter{}
}

// ParseTypeFilter maps the UI sentinel "All" (and the empty string) to
// the unset filter. Only use at the HTTP boundary.
func ParseTypeFilter(s string) TypeFilter {
	if s == "" || s == "All" {
		return AllTypes()
	}
	return TypeOf(s)
}

// IsAll returns true if the filter matches every type
func (f TypeFilter) IsAll() bool {
	return !f.set
}

// Matches returns true if the given type passes the filter
func (f TypeFilter) Matches(t string) bool {
	return !f.set || f.value == t
}

// String returns the UI representation of the filter
func (f TypeFilter) String() string {
	if !f.set {
		return "All"
	}
	return f.value
}

// Config is the full filter selection a view is projected against. It
// is an explicit value passed into the pure pipeline; the core never
// reads ambient state.
type Config struct {
	// SelectedTeams is the set of visible teams. Empty means "show
	// nothing", never "show all".
	SelectedTeams []string
	DataSource    Source
	// SearchTerm is a case-insensitive substring match; empty disables
	// search filtering.
	SearchTerm   string
	EntityType   TypeFilter
	RelationType TypeFilter
}

// Options holds presentation tuning knobs that are configuration, not
// correctness constraints
type Options struct {
	// HubDegree is the minimum total relation degree for the hub
	// retention rule. Zero means the default.
	HubDegree int
}

// DefaultHubDegree is the degree threshold above which an entity is
// considered a hub worth keeping in filtered views
const DefaultHubDegree = 3

func (o Options) hubDegree() int {
	if o.HubDegree <= 0 {
		return DefaultHubDegree
	}
	return o.HubDegree
}
