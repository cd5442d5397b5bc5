// Package fields describes the fields a connector exposes for each object
// type, and indexes them by their composite identifier tokens.
package fields

import (
	"errors"

	"github.com/splashsync/connector/internal/token"
)

// Common registry errors
var (
	ErrFieldNotFound  = errors.New("field not found")
	ErrDuplicateField = errors.New("field already registered")
	ErrInvalidField   = errors.New("invalid field definition")
)

// Scalar field types understood by the remote server.
const (
	TypeBool     = "bool"
	TypeInt      = "int"
	TypeDouble   = "double"
	TypeVarchar  = "varchar"
	TypeText     = "text"
	TypeEmail    = "email"
	TypePhone    = "phone"
	TypeDate     = "date"
	TypeDatetime = "datetime"
	TypePrice    = "price"
	TypeURL      = "url"
	// TypeObjectID is the value type of fields referencing another object.
	TypeObjectID = "objectid"
)

// Field describes one addressable field of an object type.
//
// ID and Type are tokens: a field inside a list has ID "Name@list" and a
// field referencing another object has Type "objectid::Order".
type Field struct {
	ID          string            `json:"id"`
	Type        string            `json:"type"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Group       string            `json:"group,omitempty"`
	ItemType    string            `json:"itemtype,omitempty"`
	ItemProp    string            `json:"itemprop,omitempty"`
	Required    bool              `json:"required"`
	Read        bool              `json:"read"`
	Write       bool              `json:"write"`
	InList      bool              `json:"inlist"`
	Primary     bool              `json:"primary"`
	Options     map[string]string `json:"options,omitempty"`
}

// Base returns the innermost field name of the field ID.
func (f *Field) Base() string {
	return token.BaseType(f.ID)
}

// List returns the name of the list holding the field, if any.
func (f *Field) List() (string, bool) {
	return token.ListName(f.ID)
}

// ValueType returns the scalar type stored by the field, with list and
// reference wrapping removed: "objectid::Order@lines" gives "objectid".
func (f *Field) ValueType() string {
	typ := f.Type
	if field, ok := token.FieldName(typ); ok {
		typ = field
	}
	if id, ok := token.ObjectID(typ); ok {
		return id
	}
	return typ
}

// ReferencedType returns the object type a reference field points to.
func (f *Field) ReferencedType() (string, bool) {
	return token.ObjectType(fieldPart(f.Type))
}

// IsListField reports whether the field lives inside a list.
func (f *Field) IsListField() bool {
	_, ok := token.IsListMember(f.ID)
	return ok
}

// Clone returns a deep copy of the field.
func (f *Field) Clone() *Field {
	c := *f
	if f.Options != nil {
		c.Options = make(map[string]string, len(f.Options))
		for k, v := range f.Options {
			c.Options[k] = v
		}
	}
	return &c
}

func fieldPart(tok string) string {
	if field, ok := token.FieldName(tok); ok {
		return field
	}
	return tok
}
