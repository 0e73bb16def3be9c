// Package parse builds the concrete syntax tree of a C translation unit.
//
// The tree keeps every token and one Rule per grammar production. Each
// expression precedence level has its own rule kind, a level that only
// forwards to the next one is a rule with a single child. Left associative
// levels nest to the left, "a - b - c" is
//
//	additive(additive(additive(a) '-' b) '-' c)
//
// Glossary:
//
// Declarator
// ----------
//
// A declarator is the part of a declaration that specifies
// the name that is to be introduced into the program.
//
// e.g.
// unsigned int a, *b, **c, *const*d *volatile*e ;
//              ^  ^^  ^^^  ^^^^^^^^ ^^^^^^^^^^^
//
// Direct Declarator
// -----------------
//
// A direct declarator is missing the pointer prefix.
//
// e.g.
// unsigned int a[32], b[];
//              ^^^^^  ^^^
//
// Abstract Declarator
// -------------------
//
// A delcarator missing an identifier.
package parse
