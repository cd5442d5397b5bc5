package token

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

const someID = "8c7c6d6f-27e1-4b0f-9b1e-2f6b3c7d9a10"

func TestBaseType(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"atom", "Whatever", "Whatever"},
		{"id reference keeps type", "object::id", "id"},
		{"list member keeps field", "object@list", "object"},
		{"list member reversed", "list@object", "list"},
		{"list wins over leading reference", "id::object@list", "object"},
		{"discarded list side is never inspected", "object@list::id", "object"},
		{"encoded list member", EncodeListMember("FieldName", "ListName"), "FieldName"},
		{"reference inside list", EncodeListMember(EncodeIDReference(someID, "Object"), "ListName"), "Object"},
		{"reference as list name", EncodeListMember("FieldName", EncodeIDReference(someID, "Object")), "FieldName"},
		{"chained references", "a::b::c", "c"},
		{"chained lists", "a@b@c", "a"},
		{"bare list delimiter", "@", ""},
		{"bare reference delimiter", "::", ""},
		{"empty field part", "@list", ""},
		{"single colon is not a delimiter", "a:b", "a:b"},
		{"triple colon splits on first pair", "a:::b", ":b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BaseType(tt.input))
		})
	}
}

func TestBaseType_Idempotent(t *testing.T) {
	inputs := []string{
		"", "Whatever", "object::id", "id::object@list", "object@list::id",
		"a::b@c::d@e", "::@::", "@@", "42::Order@lines", ":::::",
	}

	for _, in := range inputs {
		once := BaseType(in)
		assert.Equal(t, once, BaseType(once), "input %q", in)
		assert.Equal(t, Atom, nonEmptyShape(ShapeOf(once)), "input %q resolved to non atom %q", in, once)
	}
}

func nonEmptyShape(s Shape) Shape {
	if s == Empty {
		return Atom
	}
	return s
}

func TestBaseTypeOf(t *testing.T) {
	base, ok := BaseTypeOf(nil)
	assert.False(t, ok)
	assert.Equal(t, "", base)

	empty := ""
	base, ok = BaseTypeOf(&empty)
	assert.True(t, ok)
	assert.Equal(t, "", base)

	tok := "id::object@list"
	base, ok = BaseTypeOf(&tok)
	assert.True(t, ok)
	assert.Equal(t, "object", base)
}

func TestRoundTripScenario(t *testing.T) {
	tok := EncodeListMember(EncodeIDReference("42", "Order"), "lines")
	assert.Equal(t, "42::Order@lines", tok)

	parts, ok := IsListMember(tok)
	assert.True(t, ok)
	assert.Equal(t, ListMemberParts{Field: "42::Order", List: "lines"}, parts)

	assert.Equal(t, "Order", BaseType(tok))
}

func TestConcurrentUse(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				tok := EncodeListMember(EncodeIDReference("42", "Order"), "lines")
				if BaseType(tok) != "Order" {
					t.Errorf("unexpected base type for %q", tok)
					return
				}
			}
		}()
	}
	wg.Wait()
}
