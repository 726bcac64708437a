package signature

import (
	"fmt"
	"sort"

	"github.com/roach88/literality/internal/ir"
)

// entry holds every signature registered for one operation name.
type entry struct {
	fixed    map[int]Signature
	variadic *Signature
}

// Table is an immutable signature registry.
//
// INVARIANTS:
//   - A Table never changes after Build
//   - At most one fixed signature per (name, arity)
//   - At most one variadic signature per name
type Table struct {
	entries     map[string]*entry
	fingerprint string
	count       int
}

// Builder assembles a Table. A Builder is not safe for concurrent use.
type Builder struct {
	entries map[string]*entry
	order   []Signature
	built   bool
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{entries: make(map[string]*entry)}
}

// Register adds a signature.
// Returns an error if the signature is invalid, if it conflicts with an
// already registered one, or if Build has been called.
func (b *Builder) Register(sig Signature) error {
	if b.built {
		return fmt.Errorf("register %s: table already built", sig)
	}
	if err := validateHead(sig.Name, sig.Arity); err != nil {
		return fmt.Errorf("register: %w", err)
	}
	if sig.rule == nil {
		return fmt.Errorf("register %s: signature has no rule (use a constructor)", sig)
	}
	if sig.Kind == KindFallback {
		return fmt.Errorf("register %s: fallback signatures cannot be registered", sig)
	}

	e, ok := b.entries[sig.Name]
	if !ok {
		e = &entry{fixed: make(map[int]Signature)}
		b.entries[sig.Name] = e
	}

	if sig.Arity.Variadic {
		if e.variadic != nil {
			return fmt.Errorf("register %s: conflicts with %s", sig, *e.variadic)
		}
		s := sig
		e.variadic = &s
	} else {
		if existing, dup := e.fixed[sig.Arity.N]; dup {
			return fmt.Errorf("register %s: conflicts with %s", sig, existing)
		}
		e.fixed[sig.Arity.N] = sig
	}

	b.order = append(b.order, sig)
	return nil
}

// RegisterAll registers signatures in order, stopping at the first error.
func (b *Builder) RegisterAll(sigs ...Signature) error {
	for _, sig := range sigs {
		if err := b.Register(sig); err != nil {
			return err
		}
	}
	return nil
}

// Build freezes the registered signatures into a Table.
// The Builder cannot be used after Build.
func (b *Builder) Build() (*Table, error) {
	if b.built {
		return nil, fmt.Errorf("build: table already built")
	}
	b.built = true

	t := &Table{entries: b.entries, count: len(b.order)}

	fp, err := ir.TableFingerprint(t.canonical())
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}
	t.fingerprint = fp

	b.entries = nil
	b.order = nil
	return t, nil
}

// Lookup resolves the signature for a call with argc arguments.
// Exact fixed arity wins over a variadic entry. For unregistered operations
// the fallback signature is returned together with false; Lookup never fails.
func (t *Table) Lookup(name string, argc int) (Signature, bool) {
	if t != nil {
		if e, ok := t.entries[name]; ok {
			if sig, ok := e.fixed[argc]; ok {
				return sig, true
			}
			if e.variadic != nil && e.variadic.Arity.Accepts(argc) {
				return *e.variadic, true
			}
		}
	}
	return fallbackSignature(name, argc), false
}

// Has reports whether any signature is registered for name.
func (t *Table) Has(name string) bool {
	if t == nil {
		return false
	}
	_, ok := t.entries[name]
	return ok
}

// Len returns the number of registered signatures.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return t.count
}

// Signatures returns all registered signatures sorted by name, then with
// fixed arities ascending before the variadic entry.
func (t *Table) Signatures() []Signature {
	if t == nil {
		return nil
	}

	names := make([]string, 0, len(t.entries))
	for name := range t.entries {
		names = append(names, name)
	}
	sort.Strings(names)

	sigs := make([]Signature, 0, t.count)
	for _, name := range names {
		e := t.entries[name]
		arities := make([]int, 0, len(e.fixed))
		for n := range e.fixed {
			arities = append(arities, n)
		}
		sort.Ints(arities)
		for _, n := range arities {
			sigs = append(sigs, e.fixed[n])
		}
		if e.variadic != nil {
			sigs = append(sigs, *e.variadic)
		}
	}
	return sigs
}

// Fingerprint returns a content hash of the table's definitions.
// Two tables with the same definitions have the same fingerprint.
func (t *Table) Fingerprint() string {
	if t == nil {
		return ""
	}
	return t.fingerprint
}

func (t *Table) canonical() []any {
	sigs := t.Signatures()
	defs := make([]any, len(sigs))
	for i, sig := range sigs {
		defs[i] = sig.canonical()
	}
	return defs
}
