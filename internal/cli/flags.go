package cli

import "github.com/ilya-bc/backstage/internal/visits"

// GlobalFlags holds flags available to all subcommands.
type GlobalFlags struct {
	Config  string `long:"config" description:"Path to config file" default:""`
	JSON    bool   `long:"json" description:"Output in JSON format"`
	Version bool   `long:"version" description:"Show version and exit"`
}

// VisitCommand — record a visit to a resource.
type VisitCommand struct {
	EntityRef string `long:"entity" description:"Entity ref of the visited resource (required)"`
	Pathname  string `long:"pathname" description:"Location visited, e.g. /catalog/default/component/foo (required)"`
	Name      string `long:"name" description:"Human-readable name of the resource"`

	globals *GlobalFlags
	version string
	store   *visits.Store // injectable for testing; nil means open configured store
}

// ListCommand — list tracked visits with sorting and filtering.
type ListCommand struct {
	OrderBy []string `long:"order-by" description:"Sort key field[:asc|desc], repeatable, highest priority first"`
	Filter  []string `long:"filter" description:"Predicate field<op>value; ops: >= <= == > < ~ (contains); repeatable, combined with AND"`
	Limit   int      `long:"limit" description:"Maximum results (0 = all)" default:"0"`

	globals *GlobalFlags
	version string
	store   *visits.Store
}

// StatusCommand — show working set statistics.
type StatusCommand struct {
	globals *GlobalFlags
	version string
	store   *visits.Store
}

// PurgeCommand — delete every tracked visit.
type PurgeCommand struct {
	All   bool `long:"all" description:"Required flag to confirm purge intent"`
	Force bool `long:"force" description:"Skip safety confirmation prompt"`

	globals *GlobalFlags
	version string
	backend visits.Backend // injectable for testing
}
