package bridge

import (
	"fmt"
	"time"

	"github.com/chazu/vibeswift/pkg/capability"
	"github.com/chazu/vibeswift/pkg/ids"
	"github.com/chazu/vibeswift/pkg/value"
)

// PrintSink receives one line of program output per print call.
type PrintSink func(text string)

// Implementation is a single bridge routine: receiver is the zero
// Value (Kind==KindNone) when the call had no receiver.
type Implementation func(receiver value.Value, args []value.Value, ctx ScriptContext, sink PrintSink) (value.Value, error)

// DeniedError and UnknownSymbolError are the two policy errors a
// dispatch can raise.
type DeniedError struct{ SymbolID ids.SymbolID }

func (e DeniedError) Error() string { return fmt.Sprintf("bridge call denied: symbol %d not allowed", e.SymbolID) }

type UnknownSymbolError struct{ SymbolID ids.SymbolID }

func (e UnknownSymbolError) Error() string {
	return fmt.Sprintf("unknown bridge symbol: %d", e.SymbolID)
}

// Registry binds catalog entries to Go implementations and runs a
// three-step protocol: policy check, dispatch, unknown symbol.
type Registry struct {
	catalog  *capability.Catalog
	policy   *capability.Policy
	impls    map[ids.SymbolID]Implementation
}

func NewRegistry(catalog *capability.Catalog) *Registry {
	return &Registry{
		catalog: catalog,
		policy:  capability.NewPolicy(catalog),
		impls:   make(map[ids.SymbolID]Implementation),
	}
}

func (r *Registry) Bind(id ids.SymbolID, impl Implementation) {
	r.impls[id] = impl
}

// Dispatch runs the three-step protocol: policy check, dispatch,
// unknown symbol.
func (r *Registry) Dispatch(id ids.SymbolID, caps capability.Set, receiver value.Value, args []value.Value, ctx ScriptContext, sink PrintSink) (value.Value, error) {
	if !r.policy.IsAllowed(id, caps) {
		return value.Value{}, DeniedError{SymbolID: id}
	}
	impl, ok := r.impls[id]
	if !ok {
		return value.Value{}, UnknownSymbolError{SymbolID: id}
	}
	return impl(receiver, args, ctx, sink)
}

// UsedSymbols/BlockedSymbols support for build_preview is exposed via
// the Policy directly; Registry adds no extra state for it.
func (r *Registry) Policy() *capability.Policy { return r.policy }
func (r *Registry) Catalog() *capability.Catalog { return r.catalog }

// now is overridable only for tests that might want deterministic
// timestamps; production code always uses time.Now via Date.now's
// implementation installed in BindDefaults.
var now = time.Now
