package fields

import (
	"fmt"

	"github.com/splashsync/connector/internal/token"
)

// Builder assembles a Field. Errors are collected and reported by Build.
type Builder struct {
	field  Field
	list   string
	target string
	errors []error
}

// NewField starts a readable and writable field of the given scalar type.
func NewField(typ, id string) *Builder {
	b := &Builder{field: Field{ID: id, Type: typ, Name: id, Read: true, Write: true}}
	if id == "" {
		b.errors = append(b.errors, fmt.Errorf("%w: empty field id", ErrInvalidField))
	}
	if typ == "" {
		b.errors = append(b.errors, fmt.Errorf("%w: empty type for %s", ErrInvalidField, id))
	}
	return b
}

// Name sets the display name
func (b *Builder) Name(name string) *Builder {
	b.field.Name = name
	return b
}

// Description sets the field description
func (b *Builder) Description(desc string) *Builder {
	b.field.Description = desc
	return b
}

// Group sets the display group
func (b *Builder) Group(group string) *Builder {
	b.field.Group = group
	return b
}

// MicroData sets the schema.org item type and property
func (b *Builder) MicroData(itemType, itemProp string) *Builder {
	b.field.ItemType = itemType
	b.field.ItemProp = itemProp
	return b
}

// InList places the field inside the named list.
func (b *Builder) InList(list string) *Builder {
	if list == "" {
		b.errors = append(b.errors, fmt.Errorf("%w: empty list name for %s", ErrInvalidField, b.field.ID))
	}
	b.list = list
	return b
}

// Reference makes the field point to objects of the given type.
func (b *Builder) Reference(objectType string) *Builder {
	if objectType == "" {
		b.errors = append(b.errors, fmt.Errorf("%w: empty referenced type for %s", ErrInvalidField, b.field.ID))
	}
	b.target = objectType
	return b
}

func (b *Builder) Required() *Builder {
	b.field.Required = true
	return b
}

func (b *Builder) ReadOnly() *Builder {
	b.field.Read, b.field.Write = true, false
	return b
}

func (b *Builder) WriteOnly() *Builder {
	b.field.Read, b.field.Write = false, true
	return b
}

// Listed shows the field in object listings
func (b *Builder) Listed() *Builder {
	b.field.InList = true
	return b
}

func (b *Builder) Primary() *Builder {
	b.field.Primary = true
	return b
}

// Option sets a free-form option
func (b *Builder) Option(key, value string) *Builder {
	if b.field.Options == nil {
		b.field.Options = make(map[string]string)
	}
	b.field.Options[key] = value
	return b
}

// Build encodes list and reference wrapping into the ID and Type tokens.
func (b *Builder) Build() (*Field, error) {
	if len(b.errors) > 0 {
		return nil, b.errors[0]
	}

	f := b.field.Clone()
	if b.target != "" {
		f.Type = token.EncodeIDReference(f.Type, b.target)
	}
	if b.list != "" {
		f.ID = token.EncodeListMember(f.ID, b.list)
		f.Type = token.EncodeListMember(f.Type, b.list)
	}
	return f, nil
}

// MustBuild is Build that panics on error, for static field tables.
func (b *Builder) MustBuild() *Field {
	f, err := b.Build()
	if err != nil {
		panic(err)
	}
	return f
}
