package token

const (
	// ListDelimiter separates a field name from its enclosing list name.
	ListDelimiter = "@"

	// RefDelimiter separates an object identifier from its type name.
	RefDelimiter = "::"
)

// Shape is the structural kind of a token.
type Shape int

const (
	// Empty is the zero-length token, meaning "no field".
	Empty Shape = iota
	// Atom is a token without any delimiter.
	Atom
	// ListMember is a token containing the list delimiter.
	ListMember
	// IDReference is a token containing the reference delimiter but no list delimiter.
	IDReference
)

// String returns the string representation of Shape
func (s Shape) String() string {
	switch s {
	case Empty:
		return "empty"
	case Atom:
		return "atom"
	case ListMember:
		return "list_member"
	case IDReference:
		return "id_reference"
	default:
		return "unknown"
	}
}

// ShapeOf reports the structural shape of tok.
// The list delimiter wins when both delimiters are present, the same
// precedence BaseType applies.
func ShapeOf(tok string) Shape {
	switch {
	case tok == "":
		return Empty
	case hasList(tok):
		return ListMember
	case hasRef(tok):
		return IDReference
	default:
		return Atom
	}
}
