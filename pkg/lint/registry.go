package lint

import (
	"cmp"
	"slices"
	"strings"
	"sync"
)

// Registry indexes rules by code. Rules can also be looked up by their
// name or by an alias, which is how configuration files and noqa-style
// selectors refer to them.
type Registry struct {
	mu      sync.RWMutex
	ordered []Rule            // sorted by code
	names   map[string]string // rule name -> code
	aliases map[string]string // alternate spelling -> code
}

// NewRegistry creates an empty rule registry.
func NewRegistry() *Registry {
	return &Registry{
		names:   make(map[string]string),
		aliases: make(map[string]string),
	}
}

func compareCode(rule Rule, code string) int {
	return cmp.Compare(rule.ID(), code)
}

// Register adds rule, replacing any rule that already uses its code.
func (r *Registry) Register(rule Rule) {
	r.mu.Lock()
	defer r.mu.Unlock()

	code := rule.ID()
	i, found := slices.BinarySearchFunc(r.ordered, code, compareCode)
	if found {
		delete(r.names, r.ordered[i].Name())
		r.ordered[i] = rule
	} else {
		r.ordered = slices.Insert(r.ordered, i, rule)
	}
	r.names[rule.Name()] = code
}

// RegisterAlias lets alias stand for the rule with the given code, e.g.
// the flake8-style "invalid-rst" for NAP001.
func (r *Registry) RegisterAlias(alias, code string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.aliases[alias] = code
}

// byCode must be called with the lock held.
func (r *Registry) byCode(code string) (Rule, bool) {
	i, found := slices.BinarySearchFunc(r.ordered, code, compareCode)
	if !found {
		return nil, false
	}
	return r.ordered[i], true
}

// Get looks key up as a code, then as a rule name. Aliases are not
// consulted; use Resolve for user input.
func (r *Registry) Get(key string) (Rule, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if rule, ok := r.byCode(key); ok {
		return rule, true
	}
	if code, ok := r.names[key]; ok {
		return r.byCode(code)
	}
	return nil, false
}

// GetByID retrieves a rule by its exact code.
func (r *Registry) GetByID(id string) (Rule, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byCode(id)
}

// GetByName retrieves a rule by its name only.
func (r *Registry) GetByName(name string) (Rule, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	code, ok := r.names[name]
	if !ok {
		return nil, false
	}
	return r.byCode(code)
}

// Resolve maps anything a user may type for a rule to its canonical code.
// Codes match in any case ("nap003"), and names and aliases match exactly.
func (r *Registry) Resolve(key string) (string, Rule, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	candidates := []string{key, r.names[key], r.aliases[key], strings.ToUpper(key)}
	for _, code := range candidates {
		if code == "" {
			continue
		}
		if rule, ok := r.byCode(code); ok {
			return code, rule, true
		}
	}
	return "", nil, false
}

// Rules returns every registered rule ordered by code.
func (r *Registry) Rules() []Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.ordered)
}

// IDs returns every registered code in order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, len(r.ordered))
	for i, rule := range r.ordered {
		ids[i] = rule.ID()
	}
	return ids
}

// ByFamily returns the rules of one family ordered by code.
func (r *Registry) ByFamily(family Family) []Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Rule
	for _, rule := range r.ordered {
		if FamilyOf(rule) == family {
			out = append(out, rule)
		}
	}
	return out
}

// FamilyOfCode returns the family of the rule registered under code, or
// FamilyOther when no such rule exists.
func (r *Registry) FamilyOfCode(code string) Family {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rule, ok := r.byCode(code)
	if !ok {
		return FamilyOther
	}
	return FamilyOf(rule)
}

// DefaultRegistry holds the built-in rules, which register themselves
// from the rules package's init.
//
//nolint:gochecknoglobals // rules self-register
var DefaultRegistry = NewRegistry()
