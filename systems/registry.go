package systems

import "fmt"

// Registry holds particle type prototypes by name.
// Registration order is kept so renderers can layer types consistently.
type Registry struct {
	names  []string
	byName map[string]TypeDef
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]TypeDef),
	}
}

// Register adds or overwrites a type definition.
// Overwriting keeps the type's original position in registration order.
// Particles already on the grid keep their own copies and are unaffected.
func (r *Registry) Register(def TypeDef) error {
	if def.Name == "" {
		return fmt.Errorf("registering particle type: empty name")
	}
	if def.Kind == KindEmpty {
		return fmt.Errorf("registering particle type %q: kind must not be empty", def.Name)
	}
	if _, exists := r.byName[def.Name]; !exists {
		r.names = append(r.names, def.Name)
	}
	r.byName[def.Name] = def
	return nil
}

// Lookup returns the type definition by name.
func (r *Registry) Lookup(name string) (TypeDef, bool) {
	def, ok := r.byName[name]
	return def, ok
}

// Has reports whether a type is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.byName[name]
	return ok
}

// Names returns all type names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Len returns the number of registered types.
func (r *Registry) Len() int {
	return len(r.names)
}

// ByKind returns type names of the given kind, in registration order.
func (r *Registry) ByKind(kind Kind) []string {
	var result []string
	for _, name := range r.names {
		if r.byName[name].Kind == kind {
			result = append(result, name)
		}
	}
	return result
}
