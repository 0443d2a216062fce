package variant

import (
	"fmt"

	"storefront/internal/models"
)

// State is the stage a shopper's selection has reached.
type State int

const (
	StateEmpty State = iota
	StatePartial
	StateUnresolved
	StateResolved
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StatePartial:
		return "partial"
	case StateUnresolved:
		return "unresolved"
	case StateResolved:
		return "resolved"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ValueAvailability tags an option value with whether it can be picked.
type ValueAvailability struct {
	Value     string `json:"value"`
	Available bool   `json:"available"`
}

// OptionAvailability is the picker state of a single option.
type OptionAvailability struct {
	Option string              `json:"option"`
	Locked bool                `json:"locked"`
	Values []ValueAvailability `json:"values"`
}

// Resolver narrows a product's variants down as options are chosen in order.
// Options must be chosen in OptionOrder: an option stays locked until every
// option before it has a value.
type Resolver struct {
	variants []models.Variant
	order    []string
	position map[string]int
}

// NewResolver builds the option order of p. Names listed in p.OptionOrder come
// first; the remaining options follow in order of first appearance across the
// variants. Explicit names no variant uses are ignored.
func NewResolver(p models.Product) *Resolver {
	r := &Resolver{
		variants: p.Variants,
		position: make(map[string]int),
	}

	used := make(map[string]bool)
	for _, v := range p.Variants {
		for _, a := range v.Attributes {
			used[a.Key()] = true
		}
	}

	add := func(name string) {
		if !used[name] {
			return
		}
		if _, ok := r.position[name]; ok {
			return
		}
		r.position[name] = len(r.order)
		r.order = append(r.order, name)
	}
	for _, name := range p.OptionOrder {
		add(name)
	}
	for _, v := range p.Variants {
		for _, a := range v.Attributes {
			add(a.Key())
		}
	}
	return r
}

// HasVariants reports whether the resolver has anything to resolve.
func (r *Resolver) HasVariants() bool {
	return len(r.variants) > 0
}

// OptionOrder returns the option names in picking order.
func (r *Resolver) OptionOrder() []string {
	return append([]string(nil), r.order...)
}

// Values lists the distinct values variants use for option, in order of first
// appearance.
func (r *Resolver) Values(option string) []string {
	seen := make(map[string]bool)
	var values []string
	for _, v := range r.variants {
		val, ok := v.Value(option)
		if !ok || seen[val] {
			continue
		}
		seen[val] = true
		values = append(values, val)
	}
	return values
}

// Locked reports whether some option before option is still unselected.
func (r *Resolver) Locked(option string, sel Selection) (bool, error) {
	pos, ok := r.position[option]
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownOption, option)
	}
	return r.lockedAt(pos, sel), nil
}

func (r *Resolver) lockedAt(pos int, sel Selection) bool {
	for _, prev := range r.order[:pos] {
		if !sel.Has(prev) {
			return true
		}
	}
	return false
}

// AvailableValues tags every value of option as available or not under sel.
// A value is available when all previous options are chosen and at least one
// variant agrees with sel on those options and carries the value.
func (r *Resolver) AvailableValues(option string, sel Selection) ([]ValueAvailability, error) {
	pos, ok := r.position[option]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownOption, option)
	}
	locked := r.lockedAt(pos, sel)

	values := r.Values(option)
	out := make([]ValueAvailability, 0, len(values))
	for _, val := range values {
		out = append(out, ValueAvailability{
			Value:     val,
			Available: !locked && r.reachable(pos, sel, val),
		})
	}
	return out, nil
}

// Availability reports the picker state of every option, in order.
func (r *Resolver) Availability(sel Selection) []OptionAvailability {
	out := make([]OptionAvailability, 0, len(r.order))
	for pos, option := range r.order {
		values, _ := r.AvailableValues(option, sel)
		out = append(out, OptionAvailability{
			Option: option,
			Locked: r.lockedAt(pos, sel),
			Values: values,
		})
	}
	return out
}

func (r *Resolver) reachable(pos int, sel Selection, value string) bool {
	option := r.order[pos]
	for _, v := range r.variants {
		if got, ok := v.Value(option); !ok || got != value {
			continue
		}
		if r.matches(v, sel, pos) {
			return true
		}
	}
	return false
}

// matches reports whether v agrees with sel on the first n options.
func (r *Resolver) matches(v models.Variant, sel Selection, n int) bool {
	for _, option := range r.order[:n] {
		want, _ := sel.Get(option)
		got, ok := v.Value(option)
		if !ok || got != want {
			return false
		}
	}
	return true
}

// Complete reports whether sel has a value for every option.
func (r *Resolver) Complete(sel Selection) bool {
	for _, option := range r.order {
		if !sel.Has(option) {
			return false
		}
	}
	return true
}

// Resolve returns the variant matching a complete selection. It fails with
// ErrNoVariants, ErrIncompleteSelection or ErrUnresolvedVariant.
func (r *Resolver) Resolve(sel Selection) (*models.Variant, error) {
	if !r.HasVariants() {
		return nil, ErrNoVariants
	}
	if !r.Complete(sel) {
		return nil, ErrIncompleteSelection
	}
	for i := range r.variants {
		if r.matches(r.variants[i], sel, len(r.order)) {
			v := r.variants[i]
			return &v, nil
		}
	}
	return nil, ErrUnresolvedVariant
}

// InitialSelection pre-selects every value of a single-variant product. Other
// products start with an empty selection.
func (r *Resolver) InitialSelection() Selection {
	if len(r.variants) != 1 {
		return Selection{}
	}
	values := make(map[string]string)
	for _, a := range r.variants[0].Attributes {
		values[a.Key()] = a.Value
	}
	return NewSelection(values)
}

// Choose sets option to value and returns the new selection. Choosing a new
// value clears every option after it, so they must be picked again.
func (r *Resolver) Choose(sel Selection, option, value string) (Selection, error) {
	pos, ok := r.position[option]
	if !ok {
		return sel, fmt.Errorf("%w: %s", ErrUnknownOption, option)
	}
	if r.lockedAt(pos, sel) {
		return sel, fmt.Errorf("%w: %s", ErrOptionLocked, option)
	}
	if current, ok := sel.Get(option); ok && current == value {
		return sel, nil
	}
	if !r.reachable(pos, sel, value) {
		return sel, fmt.Errorf("%w: %s=%s", ErrValueUnavailable, option, value)
	}

	next := make(map[string]string, pos+1)
	for _, prev := range r.order[:pos] {
		next[prev], _ = sel.Get(prev)
	}
	next[option] = value
	return NewSelection(next), nil
}

// State classifies sel.
func (r *Resolver) State(sel Selection) State {
	if !r.HasVariants() {
		return StateEmpty
	}
	chosen := 0
	for _, option := range r.order {
		if sel.Has(option) {
			chosen++
		}
	}
	switch {
	case chosen == 0:
		return StateEmpty
	case chosen < len(r.order):
		return StatePartial
	}
	if _, err := r.Resolve(sel); err != nil {
		return StateUnresolved
	}
	return StateResolved
}
