// Package variables implements the named variable store consumed by the
// flow player: typed variables partitioned into namespaces, a speculative
// shadow overlay stack, and per-object visit counters.
package variables

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

// Kind is the value type of a variable.
type Kind uint8

const (
	Bool Kind = iota
	Int
	String
)

func (k Kind) String() string {
	switch k {
	case Bool:
		return "bool"
	case Int:
		return "int"
	case String:
		return "string"
	}
	return "unknown"
}

// shadowValue is a saved copy restored once the given shadow level drops.
type shadowValue struct {
	level int
	value any
}

// Variable is a single named value. Writes performed above the variable's
// recorded shadow level lazily save the previous value for restore on pop.
type Variable struct {
	namespace string
	name      string
	kind      Kind
	value     any
	shadows   []shadowValue
}

// FullName returns the variable's name in the form Namespace.Variable.
func (v *Variable) FullName() string { return v.namespace + "." + v.name }

// Kind returns the variable's value type.
func (v *Variable) Kind() Kind { return v.kind }

// Value returns the current (possibly shadowed) value.
func (v *Variable) Value() any { return v.value }

func (v *Variable) shadowLevel() int {
	if len(v.shadows) == 0 {
		return 0
	}
	return v.shadows[len(v.shadows)-1].level
}

// Namespace groups variables under a common prefix.
type Namespace struct {
	name string
	vars map[string]*Variable
}

// Name returns the namespace prefix.
func (n *Namespace) Name() string { return n.name }

// Names returns the variable names in the namespace, sorted.
func (n *Namespace) Names() []string {
	out := make([]string, 0, len(n.vars))
	for name := range n.vars {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Store holds all variable namespaces plus the shadow machinery described
// in shadow.go. It is not safe for concurrent use; the player is
// single-threaded by design.
type Store struct {
	namespaces map[string]*Namespace

	level    int
	popHooks map[int][]func()

	seen     []map[string]int
	fallback []map[string]bool

	onChanged func(fullName string, value any)
	logger    *slog.Logger
}

// NewStore creates an empty store at shadow level zero.
func NewStore() *Store {
	return &Store{
		namespaces: make(map[string]*Namespace),
		popHooks:   make(map[int][]func()),
		seen:       []map[string]int{{}},
		fallback:   []map[string]bool{{}},
		logger:     slog.New(slog.DiscardHandler),
	}
}

// SetLogger replaces the store's logger (nop by default).
func (s *Store) SetLogger(logger *slog.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// OnChange registers a callback invoked for every level-zero write.
// Shadowed writes never trigger it.
func (s *Store) OnChange(fn func(fullName string, value any)) {
	s.onChanged = fn
}

func kindOf(value any) (Kind, bool) {
	switch value.(type) {
	case bool:
		return Bool, true
	case int:
		return Int, true
	case string:
		return String, true
	}
	return 0, false
}

// Declare registers a variable with its initial value. The value's Go type
// fixes the variable kind (bool, int or string).
func (s *Store) Declare(namespace, name string, initial any) error {
	kind, ok := kindOf(initial)
	if !ok {
		return fmt.Errorf("unsupported variable type %T for %s.%s", initial, namespace, name)
	}
	ns := s.namespaces[namespace]
	if ns == nil {
		ns = &Namespace{name: namespace, vars: make(map[string]*Variable)}
		s.namespaces[namespace] = ns
	}
	if _, exists := ns.vars[name]; exists {
		return fmt.Errorf("variable %s.%s already declared", namespace, name)
	}
	ns.vars[name] = &Variable{namespace: namespace, name: name, kind: kind, value: initial}
	return nil
}

// Namespace returns a namespace by prefix, or nil.
func (s *Store) Namespace(name string) *Namespace {
	return s.namespaces[name]
}

// Namespaces returns all namespace prefixes, sorted.
func (s *Store) Namespaces() []string {
	out := make([]string, 0, len(s.namespaces))
	for name := range s.namespaces {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (s *Store) variable(namespace, name string) *Variable {
	ns := s.namespaces[namespace]
	if ns == nil {
		return nil
	}
	return ns.vars[name]
}

// Get returns the current value of a variable.
func (s *Store) Get(namespace, name string) (any, bool) {
	v := s.variable(namespace, name)
	if v == nil {
		return nil, false
	}
	return v.value, true
}

// GetByFullName resolves "Namespace.Variable" and returns its value.
func (s *Store) GetByFullName(fullName string) (any, bool) {
	namespace, name, ok := SplitName(fullName)
	if !ok {
		return nil, false
	}
	return s.Get(namespace, name)
}

// GetBool returns a bool variable's value.
func (s *Store) GetBool(namespace, name string) (bool, bool) {
	v, ok := s.Get(namespace, name)
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// GetInt returns an int variable's value.
func (s *Store) GetInt(namespace, name string) (int, bool) {
	v, ok := s.Get(namespace, name)
	if !ok {
		return 0, false
	}
	i, ok := v.(int)
	return i, ok
}

// GetString returns a string variable's value.
func (s *Store) GetString(namespace, name string) (string, bool) {
	v, ok := s.Get(namespace, name)
	if !ok {
		return "", false
	}
	str, ok := v.(string)
	return str, ok
}

// Set writes a variable. Writing within a shadow level saves the previous
// value, which is restored when that level pops.
func (s *Store) Set(namespace, name string, value any) error {
	v := s.variable(namespace, name)
	if v == nil {
		return fmt.Errorf("unknown variable %s.%s", namespace, name)
	}
	kind, ok := kindOf(value)
	if !ok || kind != v.kind {
		return fmt.Errorf("variable %s.%s is %s, cannot assign %T", namespace, name, v.kind, value)
	}

	// Save the value lazily if this is the first write at a deeper level.
	if s.level > v.shadowLevel() {
		v.shadows = append(v.shadows, shadowValue{level: s.level, value: v.value})
		s.registerOnPopState(func() {
			if len(v.shadows) == 0 {
				return
			}
			top := v.shadows[len(v.shadows)-1]
			v.shadows = v.shadows[:len(v.shadows)-1]
			v.value = top.value
		})
	}

	v.value = value
	if s.level == 0 && s.onChanged != nil {
		s.onChanged(v.FullName(), value)
	}
	return nil
}

// SetByFullName resolves "Namespace.Variable" and writes it.
func (s *Store) SetByFullName(fullName string, value any) error {
	namespace, name, ok := SplitName(fullName)
	if !ok {
		return fmt.Errorf("invalid variable name %q, want Namespace.Variable", fullName)
	}
	return s.Set(namespace, name, value)
}

// Snapshot dumps every variable's current value keyed by full name.
func (s *Store) Snapshot() map[string]any {
	out := make(map[string]any)
	for _, ns := range s.namespaces {
		for _, v := range ns.vars {
			out[v.FullName()] = v.value
		}
	}
	return out
}

// SplitName splits "Namespace.Variable" into its two parts.
func SplitName(fullName string) (namespace, name string, ok bool) {
	i := strings.IndexByte(fullName, '.')
	if i <= 0 || i == len(fullName)-1 {
		return "", "", false
	}
	return fullName[:i], fullName[i+1:], true
}
