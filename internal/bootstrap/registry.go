package bootstrap

import (
	"fmt"
	"slices"

	"dep-bootstrap/internal/failure"
	"dep-bootstrap/internal/resource"
)

// All selects every recipe of a registry.
const All = "all"

// Registry is an ordered set of recipes addressed by name.
type Registry struct {
	kind    string
	order   []string
	recipes map[string]Recipe
}

// NewRegistry returns an empty registry; kind labels it in errors and listings.
func NewRegistry(kind string) *Registry {
	return &Registry{kind: kind, recipes: make(map[string]Recipe)}
}

func (r *Registry) Kind() string { return r.kind }

// Add registers rc after every previously added recipe.
func (r *Registry) Add(rc Recipe) error {
	if rc.Resource == nil {
		return &failure.ConfigurationError{Registry: r.kind, Reason: "recipe has no resource"}
	}
	name := rc.Name()
	if err := resource.ValidateName(name); err != nil {
		return &failure.ConfigurationError{Registry: r.kind, Name: name, Reason: err.Error()}
	}
	if name == All {
		return &failure.ConfigurationError{Registry: r.kind, Name: name, Reason: "name is reserved"}
	}
	if rc.Installer == nil {
		return &failure.ConfigurationError{Registry: r.kind, Name: name, Reason: "recipe has no installer"}
	}
	if _, ok := r.recipes[name]; ok {
		return &failure.ConfigurationError{Registry: r.kind, Name: name, Reason: "registered twice"}
	}
	r.order = append(r.order, name)
	r.recipes[name] = rc
	return nil
}

// Names returns the registered names in registration order.
func (r *Registry) Names() []string { return slices.Clone(r.order) }

func (r *Registry) Get(name string) (Recipe, bool) {
	rc, ok := r.recipes[name]
	return rc, ok
}

func (r *Registry) Len() int { return len(r.order) }

// Select resolves requested names against the registry.
//
// "all" expands to every registered name and makes any explicit name redundant; redundant
// names (including repeats) are returned so the caller can warn about them. An unknown
// name fails the whole selection.
func (r *Registry) Select(requested []string) (names, redundant []string, err error) {
	all := slices.Contains(requested, All)
	seen := make(map[string]bool, len(requested))
	for _, name := range requested {
		if name == All {
			continue
		}
		if _, ok := r.recipes[name]; !ok {
			return nil, nil, &failure.ConfigurationError{
				Registry: r.kind,
				Name:     name,
				Reason:   fmt.Sprintf("unknown name (available: %v)", r.order),
			}
		}
		if all || seen[name] {
			redundant = append(redundant, name)
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	if all {
		return r.Names(), redundant, nil
	}
	return names, redundant, nil
}
