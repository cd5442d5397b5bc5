package token

// Decomposition gathers every single-level view of a token along with its
// resolved base type. Parts that do not apply are nil.
type Decomposition struct {
	Token       string            `json:"token"`
	Shape       string            `json:"shape"`
	BaseType    string            `json:"base_type"`
	ListMember  *ListMemberParts  `json:"list_member,omitempty"`
	IDReference *IDReferenceParts `json:"id_reference,omitempty"`
}

// Parse builds the Decomposition of tok.
func Parse(tok string) Decomposition {
	d := Decomposition{
		Token:    tok,
		Shape:    ShapeOf(tok).String(),
		BaseType: BaseType(tok),
	}
	if parts, ok := IsListMember(tok); ok {
		d.ListMember = &parts
	}
	if parts, ok := IsIDReference(tok); ok {
		d.IDReference = &parts
	}
	return d
}

// ParseOf is Parse over a possibly absent token.
func ParseOf(tok *string) (Decomposition, bool) {
	if tok == nil {
		return Decomposition{}, false
	}
	return Parse(*tok), true
}
