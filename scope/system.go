package scope

import (
	"io"
	"log/slog"

	"github.com/andrewchambers/cfront/ast"
	"github.com/andrewchambers/cfront/cpp"
	"github.com/andrewchambers/cfront/diag"
)

// System is the scope stack of one resolution run. Entered scopes stay
// reachable from the file scope after they are exited.
type System struct {
	log    *slog.Logger
	stack  []*Scope
	global *Scope
}

// NewSystem returns an empty system. A nil logger discards.
func NewSystem(log *slog.Logger) *System {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &System{log: log}
}

// Enter pushes a new scope nested in the current one. The first scope must
// be the file scope and there is only one.
func (sys *System) Enter(kind Kind, name string, owner ast.Node) (*Scope, error) {
	cur := sys.Current()
	switch {
	case cur == nil && kind != FileScope:
		return nil, diag.Errorf(diag.StructuralViolation, posOf(owner), "%s scope outside of a file scope", kind)
	case cur != nil && kind == FileScope:
		return nil, diag.Errorf(diag.StructuralViolation, posOf(owner), "nested file scope")
	}
	s := newScope(kind, name, owner, cur)
	if cur == nil {
		sys.global = s
	}
	sys.stack = append(sys.stack, s)
	sys.log.Debug("enter scope", "kind", kind, "name", name, "depth", len(sys.stack))
	return s, nil
}

// Exit pops the current scope.
func (sys *System) Exit() (*Scope, error) {
	s := sys.Current()
	if s == nil {
		return nil, diag.Errorf(diag.StructuralViolation, cpp.FilePos{}, "exit with no open scope")
	}
	sys.stack = sys.stack[:len(sys.stack)-1]
	sys.log.Debug("exit scope", "kind", s.Kind, "name", s.Name, "depth", len(sys.stack))
	return s, nil
}

// Current is the innermost open scope, nil when none is open.
func (sys *System) Current() *Scope {
	if len(sys.stack) == 0 {
		return nil
	}
	return sys.stack[len(sys.stack)-1]
}

// Global is the file scope, nil before it is entered.
func (sys *System) Global() *Scope {
	return sys.global
}

func (sys *System) Depth() int {
	return len(sys.stack)
}

func posOf(n ast.Node) cpp.FilePos {
	if n == nil {
		return cpp.FilePos{}
	}
	return n.Pos()
}
