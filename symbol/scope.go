package symbol

import "github.com/psyk-lang/psyk/bytecode"

// ScopeKind enumerates the block constructs that open a scope.
type ScopeKind uint8

const (
	ScopeInvalid ScopeKind = iota
	ScopeRoot
	ScopeIfElse // wrapper shared by an if and its else
	ScopeIf
	ScopeElse
	ScopeWhile
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeRoot:
		return "root"
	case ScopeIfElse:
		return "if_else"
	case ScopeIf:
		return "if"
	case ScopeElse:
		return "else"
	case ScopeWhile:
		return "while"
	default:
		return "invalid"
	}
}

// Scope is one frame of the scope stack.
type Scope struct {
	kind    ScopeKind
	labelID int
	symbols map[string]bytecode.Address
	names   []string
	held    []int
}

func newScope(kind ScopeKind, labelID int) *Scope {
	return &Scope{
		kind:    kind,
		labelID: labelID,
		symbols: map[string]bytecode.Address{},
	}
}

// Kind returns the construct that opened the scope.
func (s *Scope) Kind() ScopeKind {
	return s.kind
}

// LabelID returns the id used to name the scope's labels.
func (s *Scope) LabelID() int {
	return s.labelID
}

// Lookup returns the address of a name declared directly in this scope.
func (s *Scope) Lookup(name string) (bytecode.Address, bool) {
	addr, ok := s.symbols[name]
	return addr, ok
}

// Names returns the names declared in this scope in declaration order.
func (s *Scope) Names() []string {
	return append([]string(nil), s.names...)
}

// Held returns the scalar addresses this scope will release when popped.
func (s *Scope) Held() []bytecode.Address {
	addrs := make([]bytecode.Address, len(s.held))
	for i, slot := range s.held {
		addrs[i] = bytecode.Scalar(slot)
	}
	return addrs
}

func (s *Scope) declare(name string, addr bytecode.Address) {
	if _, exists := s.symbols[name]; !exists {
		s.names = append(s.names, name)
	}
	s.symbols[name] = addr
}

func (s *Scope) hold(slot int) {
	s.held = append(s.held, slot)
}

func (s *Scope) unhold(slot int) {
	for i, h := range s.held {
		if h == slot {
			s.held = append(s.held[:i], s.held[i+1:]...)
			return
		}
	}
}
