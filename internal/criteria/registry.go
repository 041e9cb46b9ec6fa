package criteria

import (
	"fmt"
)

// TypeInfo is the registry listing entry used to populate rule-type
// selectors.
type TypeInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Registry maps content types to criterion definitions. It is built
// once at startup and read-only afterwards, so concurrent readers
// need no locking.
type Registry struct {
	defs  map[string]Definition
	order []string
}

func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]Definition)}
}

// Register adds a definition under its content type. An empty or
// already registered content type is rejected; duplicate registration
// is a wiring bug, never a silent overwrite.
func (r *Registry) Register(def Definition) error {
	if def.ContentType == "" {
		return fmt.Errorf("register criterion type: content type is required")
	}
	if def.Evaluate == nil {
		return fmt.Errorf("register criterion type %q: evaluate func is required", def.ContentType)
	}
	if len(def.Operators) == 0 {
		return fmt.Errorf("register criterion type %q: operator set is required", def.ContentType)
	}
	if _, exists := r.defs[def.ContentType]; exists {
		return fmt.Errorf("register criterion type %q: %w", def.ContentType, ErrDuplicateType)
	}
	r.defs[def.ContentType] = def
	r.order = append(r.order, def.ContentType)
	return nil
}

// MustRegister panics on registration failure. Reserved for static
// startup wiring where a failure means the binary is miswired.
func (r *Registry) MustRegister(def Definition) {
	if err := r.Register(def); err != nil {
		panic(err)
	}
}

// Lookup resolves a content type back to its definition. Stale
// persisted data referencing a retired type yields ErrUnknownType.
func (r *Registry) Lookup(contentType string) (Definition, error) {
	def, ok := r.defs[contentType]
	if !ok {
		return Definition{}, fmt.Errorf("lookup criterion type %q: %w", contentType, ErrUnknownType)
	}
	return def, nil
}

// List returns all registered types in registration order.
func (r *Registry) List() []TypeInfo {
	infos := make([]TypeInfo, 0, len(r.order))
	for _, ct := range r.order {
		def := r.defs[ct]
		infos = append(infos, TypeInfo{ID: def.ContentType, Name: def.Name})
	}
	return infos
}

// Len returns the number of registered types.
func (r *Registry) Len() int { return len(r.order) }

// Defaults builds a registry holding every built-in criterion type.
func Defaults() *Registry {
	r := NewRegistry()
	for _, def := range []Definition{
		orderCountDefinition(),
		orderSumDefinition(),
		cartAmountDefinition(),
		cartPriceDefinition(),
		maxWeightDefinition(),
		profitDefinition(),
		timeDefinition(),
		categoryDefinition(),
		productDefinition(),
		manufacturerDefinition(),
		groupDefinition(),
		countryDefinition(),
		compositionDefinition(),
		discountDefinition(),
		forSaleDefinition(),
		manualDeliveryTimeDefinition(),
		userDefinition(),
	} {
		r.MustRegister(def)
	}
	return r
}
