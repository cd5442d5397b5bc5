package token

// EncodeListMember composes a list member token "<field>@<list>".
// Neither part is validated, callers may pass already encoded tokens.
func EncodeListMember(field, list string) string {
	return field + ListDelimiter + list
}

// EncodeIDReference composes an object reference token "<id>::<type>".
func EncodeIDReference(id, typ string) string {
	return id + RefDelimiter + typ
}
