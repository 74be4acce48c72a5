// Package resolve flattens a profile's inheritance chain into the effective
// settings that get applied to the live system.
package resolve

import (
	"github.com/systune-dev/systune/internal/apperrors"
	"github.com/systune-dev/systune/internal/config"
)

// EffectiveSetting is one resolved key with the profile that supplied its
// winning value.
type EffectiveSetting struct {
	Key    string       `json:"key" yaml:"key"`
	Value  config.Value `json:"value" yaml:"value"`
	Origin string       `json:"origin" yaml:"origin"`
}

// EffectiveSettings is the flattened, override-resolved settings for one
// profile. Keys keep first-definer order, root profile first. Derived, never
// persisted.
type EffectiveSettings struct {
	Profile  string
	Chain    []string
	settings []EffectiveSetting
	index    map[string]int
}

// Settings returns the resolved settings in apply order.
func (e *EffectiveSettings) Settings() []EffectiveSetting {
	return e.settings
}

// Keys returns the resolved keys in apply order.
func (e *EffectiveSettings) Keys() []string {
	keys := make([]string, len(e.settings))
	for i, st := range e.settings {
		keys[i] = st.Key
	}
	return keys
}

// Get returns the winning value and its origin for a key.
func (e *EffectiveSettings) Get(key string) (EffectiveSetting, bool) {
	i, ok := e.index[key]
	if !ok {
		return EffectiveSetting{}, false
	}
	return e.settings[i], true
}

// Len returns the number of resolved keys.
func (e *EffectiveSettings) Len() int {
	return len(e.settings)
}

// set inserts or overwrites a key, preserving its original position on
// overwrite so the apply order stays stable.
func (e *EffectiveSettings) set(key string, value config.Value, origin string) {
	if i, ok := e.index[key]; ok {
		e.settings[i].Value = value
		e.settings[i].Origin = origin
		return
	}
	e.index[key] = len(e.settings)
	e.settings = append(e.settings, EffectiveSetting{Key: key, Value: value, Origin: origin})
}

// ProfileSource is the subset of the profile store the resolver needs.
type ProfileSource interface {
	Get(id string) (*config.Definition, error)
	Len() int
}

// Resolver flattens inheritance chains against a profile source.
type Resolver struct {
	source ProfileSource
}

// NewResolver creates a resolver over a profile source.
func NewResolver(source ProfileSource) *Resolver {
	return &Resolver{source: source}
}

// Resolve walks the parent chain from id to the root, then applies each
// profile root-to-child so a child's value always wins over any ancestor's.
// The chain walk is bounded by the number of loaded profiles; exceeding the
// bound means the store holds a cycle that validation missed.
func (r *Resolver) Resolve(id string) (*EffectiveSettings, error) {
	chain, err := r.collectChain(id)
	if err != nil {
		return nil, err
	}

	effective := &EffectiveSettings{
		Profile: id,
		index:   make(map[string]int),
	}
	for _, def := range chain {
		effective.Chain = append(effective.Chain, def.ID)
		for _, st := range def.Settings {
			effective.set(st.Key, st.Value, def.ID)
		}
	}

	return effective, nil
}

// collectChain returns the inheritance chain for id ordered root-first.
func (r *Resolver) collectChain(id string) ([]*config.Definition, error) {
	limit := r.source.Len()

	var reversed []*config.Definition
	seen := []string{}
	current := id
	for {
		def, err := r.source.Get(current)
		if err != nil {
			return nil, err
		}
		reversed = append(reversed, def)
		seen = append(seen, def.ID)

		if !def.HasParent() {
			break
		}
		if len(reversed) >= limit {
			return nil, apperrors.NewCycleError(id, seen)
		}
		current = def.Meta.Parent
	}

	// Reverse so the root applies first and descendants overwrite.
	chain := make([]*config.Definition, len(reversed))
	for i, def := range reversed {
		chain[len(reversed)-1-i] = def
	}
	return chain, nil
}
