// Package capability implements the capability tag bitset and the
// bridge symbol catalog/policy gating which bridge calls a run may
// make.
package capability

import "github.com/chazu/vibeswift/pkg/ids"

// Tag is one coarse permission bit. The set is fixed and small; new
// tags are added here, not discovered at runtime.
type Tag uint

const (
	FoundationBasic Tag = 1 << iota
	DateFormatting
	UIBasic
	Diagnostics
)

func (t Tag) String() string {
	switch t {
	case FoundationBasic:
		return "foundation_basic"
	case DateFormatting:
		return "date_formatting"
	case UIBasic:
		return "ui_basic"
	case Diagnostics:
		return "diagnostics"
	default:
		return "unknown"
	}
}

// ParseTag looks up a Tag by its String() name, for loading capability
// presets from config.
func ParseTag(name string) (Tag, bool) {
	switch name {
	case "foundation_basic":
		return FoundationBasic, true
	case "date_formatting":
		return DateFormatting, true
	case "ui_basic":
		return UIBasic, true
	case "diagnostics":
		return Diagnostics, true
	default:
		return 0, false
	}
}

// Set is a bitset over Tag.
type Set uint

func NewSet(tags ...Tag) Set {
	var s Set
	for _, t := range tags {
		s |= Set(t)
	}
	return s
}

func (s Set) Has(t Tag) bool { return s&Set(t) != 0 }

func (s Set) With(t Tag) Set { return s | Set(t) }

// CatalogEntry is one static bridge-routine descriptor: its symbol
// id, display name, and the single capability tag required to call
// it.
type CatalogEntry struct {
	SymbolID ids.SymbolID
	Name     string
	Required Tag
}

// Catalog is the static symbol_id -> CatalogEntry table.
type Catalog struct {
	entries map[ids.SymbolID]CatalogEntry
}

func NewCatalog() *Catalog {
	return &Catalog{entries: make(map[ids.SymbolID]CatalogEntry)}
}

func (c *Catalog) Register(name string, required Tag) CatalogEntry {
	return c.RegisterID(ids.HashBridge(name), name, required)
}

// RegisterOperator registers a catalog entry hashed in the operator
// namespace rather than the bridge namespace: operator symbols use
// the op namespace and the operator's literal text.
func (c *Catalog) RegisterOperator(op string, required Tag) CatalogEntry {
	return c.RegisterID(ids.HashOperator(op), op, required)
}

func (c *Catalog) RegisterID(id ids.SymbolID, name string, required Tag) CatalogEntry {
	entry := CatalogEntry{SymbolID: id, Name: name, Required: required}
	c.entries[entry.SymbolID] = entry
	return entry
}

func (c *Catalog) Lookup(id ids.SymbolID) (CatalogEntry, bool) {
	e, ok := c.entries[id]
	return e, ok
}

func (c *Catalog) Entries() map[ids.SymbolID]CatalogEntry { return c.entries }

// Policy gates a bridge call: a symbol is allowed iff it has a
// catalog entry and that entry's capability is in the run's set. Any
// symbol absent from the catalog is denied.
type Policy struct {
	catalog *Catalog
}

func NewPolicy(catalog *Catalog) *Policy { return &Policy{catalog: catalog} }

func (p *Policy) IsAllowed(id ids.SymbolID, caps Set) bool {
	entry, ok := p.catalog.Lookup(id)
	if !ok {
		return false
	}
	return caps.Has(entry.Required)
}
