package token

import "strings"

// ListMemberParts is the single-level decomposition of a list member token.
type ListMemberParts struct {
	Field string `json:"field"`
	List  string `json:"list"`
}

// IDReferenceParts is the single-level decomposition of an id reference token.
type IDReferenceParts struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

// IsListMember splits tok on the first list delimiter.
// It returns false when tok does not contain one.
func IsListMember(tok string) (ListMemberParts, bool) {
	field, list, ok := strings.Cut(tok, ListDelimiter)
	if !ok {
		return ListMemberParts{}, false
	}
	return ListMemberParts{Field: field, List: list}, true
}

// IsIDReference splits tok on the first reference delimiter.
// It returns false when tok does not contain one, whatever list delimiters
// it may hold.
func IsIDReference(tok string) (IDReferenceParts, bool) {
	id, typ, ok := strings.Cut(tok, RefDelimiter)
	if !ok {
		return IDReferenceParts{}, false
	}
	return IDReferenceParts{ID: id, Type: typ}, true
}

func hasList(tok string) bool {
	return strings.Contains(tok, ListDelimiter)
}

func hasRef(tok string) bool {
	return strings.Contains(tok, RefDelimiter)
}
