package asm

// SymbolKind is the kind of entity a Symbol names. Labels are the only
// kind the dialect currently declares.
type SymbolKind byte

const (
	SymbolLabel SymbolKind = iota
)

// Symbol is a named offset, per spec.md §3. Offset is undefined until
// set by SetOffset.
type Symbol struct {
	Name      string
	Kind      SymbolKind
	Offset    uint32
	HasOffset bool
}

// SymbolTable is an insertion-ordered collection of Symbols. Lookups go
// through a name-keyed map; a parallel slice of names keeps the insertion
// order that Snapshot reports.
type SymbolTable struct {
	order  []string
	byName map[string]*Symbol
}

// NewSymbolTable creates an empty symbol table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{byName: make(map[string]*Symbol)}
}

// Insert declares a new symbol with no offset yet assigned. It fails if
// the name is already declared.
func (t *SymbolTable) Insert(name string, kind SymbolKind) error {
	if _, exists := t.byName[name]; exists {
		return &AssemblerError{Kind: SymbolAlreadyDeclared, Name: name}
	}
	t.byName[name] = &Symbol{Name: name, Kind: kind}
	t.order = append(t.order, name)
	return nil
}

// SetOffset updates the offset of a previously declared symbol, returning
// false if the name is not present.
func (t *SymbolTable) SetOffset(name string, offset uint32) bool {
	s, ok := t.byName[name]
	if !ok {
		return false
	}
	s.Offset = offset
	s.HasOffset = true
	return true
}

// Lookup returns the offset of a symbol, if declared and assigned.
func (t *SymbolTable) Lookup(name string) (uint32, bool) {
	s, ok := t.byName[name]
	if !ok || !s.HasOffset {
		return 0, false
	}
	return s.Offset, true
}

// Has reports whether a symbol with the given name has been declared.
func (t *SymbolTable) Has(name string) bool {
	_, ok := t.byName[name]
	return ok
}

// Snapshot returns all symbols in insertion order, for diagnostics (the
// Assembler API's symbols_snapshot in spec.md §6).
func (t *SymbolTable) Snapshot() []Symbol {
	out := make([]Symbol, 0, len(t.order))
	for _, name := range t.order {
		out = append(out, *t.byName[name])
	}
	return out
}
