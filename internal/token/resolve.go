package token

// BaseType resolves tok to its innermost atomic field name.
//
// Resolution rules, in order:
//
//  1. "" resolves to "".
//  2. A token holding a list delimiter resolves its field part; the list
//     part is discarded without being inspected.
//  3. A token holding a reference delimiter resolves its type part; the
//     object id is discarded.
//  4. Anything else is an atom and resolves to itself.
//
// The result is always an atom, so BaseType is idempotent.
func BaseType(tok string) string {
	if tok == "" {
		return ""
	}
	if parts, ok := IsListMember(tok); ok {
		return BaseType(parts.Field)
	}
	if parts, ok := IsIDReference(tok); ok {
		return BaseType(parts.Type)
	}
	return tok
}
