package parse

// scope tracks which identifiers currently name types. C cannot be parsed
// without it: "T * x;" is a declaration when T is a typedef name and an
// expression otherwise.
type scope struct {
	parent *scope
	kv     map[string]bool
}

func (s *scope) isType(k string) bool {
	isType, ok := s.kv[k]
	if ok {
		return isType
	}
	if s.parent != nil {
		return s.parent.isType(k)
	}
	return false
}

// define records k in this scope, shadowing outer declarations.
func (s *scope) define(k string, isType bool) {
	s.kv[k] = isType
}

func newScope(parent *scope) *scope {
	ret := &scope{}
	ret.parent = parent
	ret.kv = make(map[string]bool)
	return ret
}
