package token

// FieldName returns the part of tok before the first list delimiter,
// verbatim. Nested reference delimiters are left in place.
func FieldName(tok string) (string, bool) {
	parts, ok := IsListMember(tok)
	return parts.Field, ok
}

// ListName returns the part of tok after the first list delimiter, verbatim.
func ListName(tok string) (string, bool) {
	parts, ok := IsListMember(tok)
	return parts.List, ok
}

// ObjectID returns the part of tok before the first reference delimiter.
func ObjectID(tok string) (string, bool) {
	parts, ok := IsIDReference(tok)
	return parts.ID, ok
}

// ObjectType returns the part of tok after the first reference delimiter.
func ObjectType(tok string) (string, bool) {
	parts, ok := IsIDReference(tok)
	return parts.Type, ok
}
