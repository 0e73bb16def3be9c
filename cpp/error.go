package cpp

import "fmt"

// ErrorLoc is a lexical or syntax error tied to a source position.
type ErrorLoc struct {
	Err error
	Pos FilePos
}

func ErrWithLoc(e error, pos FilePos) error {
	return ErrorLoc{
		Err: e,
		Pos: pos,
	}
}

func (e ErrorLoc) Error() string {
	return fmt.Sprintf("%s at %s", e.Err, e.Pos)
}

func (e ErrorLoc) Unwrap() error {
	return e.Err
}

// Position is the location the report caret points at.
func (e ErrorLoc) Position() FilePos {
	return e.Pos
}
