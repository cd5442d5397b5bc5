package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractors(t *testing.T) {
	type result struct {
		value string
		ok    bool
	}
	wrap := func(v string, ok bool) result { return result{v, ok} }

	tests := []struct {
		input      string
		field      result
		list       result
		objectID   result
		objectType result
	}{
		{"", result{}, result{}, result{}, result{}},
		{"Name", result{}, result{}, result{}, result{}},
		{"Name@list", result{"Name", true}, result{"list", true}, result{}, result{}},
		{"42::Order", result{}, result{}, result{"42", true}, result{"Order", true}},
		{"42::Order@lines", result{"42::Order", true}, result{"lines", true}, result{"42", true}, result{"Order@lines", true}},
		{"Name@list@sub", result{"Name", true}, result{"list@sub", true}, result{}, result{}},
		{"a::b::c", result{}, result{}, result{"a", true}, result{"b::c", true}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.field, wrap(FieldName(tt.input)))
			assert.Equal(t, tt.list, wrap(ListName(tt.input)))
			assert.Equal(t, tt.objectID, wrap(ObjectID(tt.input)))
			assert.Equal(t, tt.objectType, wrap(ObjectType(tt.input)))
		})
	}
}

func TestExtractors_Nil(t *testing.T) {
	for name, fn := range map[string]func(*string) (string, bool){
		"FieldNameOf":  FieldNameOf,
		"ListNameOf":   ListNameOf,
		"ObjectIDOf":   ObjectIDOf,
		"ObjectTypeOf": ObjectTypeOf,
	} {
		v, ok := fn(nil)
		assert.False(t, ok, name)
		assert.Empty(t, v, name)

		empty := ""
		_, ok = fn(&empty)
		assert.False(t, ok, "%s on empty token", name)
	}

	tok := "42::Order@lines"
	v, ok := FieldNameOf(&tok)
	assert.True(t, ok)
	assert.Equal(t, "42::Order", v)
	v, _ = ListNameOf(&tok)
	assert.Equal(t, "lines", v)
	v, _ = ObjectIDOf(&tok)
	assert.Equal(t, "42", v)
	v, _ = ObjectTypeOf(&tok)
	assert.Equal(t, "Order@lines", v)
}

func TestEncodeRoundTrip(t *testing.T) {
	pairs := [][2]string{
		{"FieldName", "ListName"},
		{"", ""},
		{"Field", ""},
		{"", "List"},
		{"42", "Order"},
		{"Sku", "items"},
	}

	for _, p := range pairs {
		lm := EncodeListMember(p[0], p[1])
		field, ok := FieldName(lm)
		assert.True(t, ok)
		assert.Equal(t, p[0], field)
		list, ok := ListName(lm)
		assert.True(t, ok)
		assert.Equal(t, p[1], list)

		ref := EncodeIDReference(p[0], p[1])
		id, ok := ObjectID(ref)
		assert.True(t, ok)
		assert.Equal(t, p[0], id)
		typ, ok := ObjectType(ref)
		assert.True(t, ok)
		assert.Equal(t, p[1], typ)
	}
}

func TestEncodeNesting(t *testing.T) {
	assert.Equal(t, "Name@items", EncodeListMember("Name", "items"))
	assert.Equal(t, "42::Order", EncodeIDReference("42", "Order"))
	assert.Equal(t, "42::Order@lines", EncodeListMember(EncodeIDReference("42", "Order"), "lines"))

	// A list member used as a field part is not recoverable: the first @ splits it.
	nested := EncodeListMember(EncodeListMember("a", "b"), "c")
	field, _ := FieldName(nested)
	assert.Equal(t, "a", field)
}
