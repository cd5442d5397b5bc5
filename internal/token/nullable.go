package token

// The functions below accept a possibly absent token. A nil pointer is a
// negative result for every operation, including BaseTypeOf, and is never
// confused with the empty token.

// IsListMemberOf is IsListMember over a possibly absent token.
func IsListMemberOf(tok *string) (ListMemberParts, bool) {
	if tok == nil {
		return ListMemberParts{}, false
	}
	return IsListMember(*tok)
}

// IsIDReferenceOf is IsIDReference over a possibly absent token.
func IsIDReferenceOf(tok *string) (IDReferenceParts, bool) {
	if tok == nil {
		return IDReferenceParts{}, false
	}
	return IsIDReference(*tok)
}

// FieldNameOf is FieldName over a possibly absent token.
func FieldNameOf(tok *string) (string, bool) {
	if tok == nil {
		return "", false
	}
	return FieldName(*tok)
}

// ListNameOf is ListName over a possibly absent token.
func ListNameOf(tok *string) (string, bool) {
	if tok == nil {
		return "", false
	}
	return ListName(*tok)
}

// ObjectIDOf is ObjectID over a possibly absent token.
func ObjectIDOf(tok *string) (string, bool) {
	if tok == nil {
		return "", false
	}
	return ObjectID(*tok)
}

// ObjectTypeOf is ObjectType over a possibly absent token.
func ObjectTypeOf(tok *string) (string, bool) {
	if tok == nil {
		return "", false
	}
	return ObjectType(*tok)
}

// BaseTypeOf is BaseType over a possibly absent token.
// Only nil is negative; BaseTypeOf(&"") returns ("", true).
func BaseTypeOf(tok *string) (string, bool) {
	if tok == nil {
		return "", false
	}
	return BaseType(*tok), true
}
