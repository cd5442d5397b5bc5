// Package token implements the composite identifier grammar used to address
// fields, list members and object references exchanged with the remote
// orchestration server.
//
// A token is a plain string. Its shape is decided structurally:
//
//	Name               atom (plain field name)
//	Name@List          list member: field "Name" inside list "List"
//	ID::Type           object reference: instance "ID" of type "Type"
//	ID::Type@List      reference field inside a list
//
// Two delimiters are reserved: ListDelimiter ("@") and RefDelimiter ("::").
// Every split uses the first occurrence of a delimiter. There is no escaping,
// so a name that contains a delimiter cannot be told apart from nesting.
//
// Extraction is single level: FieldName, ListName, ObjectID and ObjectType
// return the verbatim substring on one side of the first delimiter.
// BaseType is recursive and always returns the innermost atom:
//
//	BaseType("id::Object@list") == "Object"
//	BaseType("Object@list::id") == "Object"
//
// The list delimiter always takes precedence over the reference delimiter,
// regardless of where each appears in the string.
//
// Absent input (a nil *string, a JSON null, a SQL NULL) is not a token. The
// *Of variants accept *string and report it as a negative result, which is
// distinct from the empty token "".
//
// All functions are pure and safe for concurrent use.
package token
