package fields

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/splashsync/connector/internal/token"
)

// Registry holds the fields of one object type, indexed by token.
// It is safe for concurrent use.
type Registry struct {
	objectType string

	mu     sync.RWMutex
	byID   map[string]*Field
	byBase map[string][]*Field
	byList map[string][]*Field
}

// NewRegistry creates an empty registry for objectType
func NewRegistry(objectType string) *Registry {
	return &Registry{
		objectType: objectType,
		byID:       make(map[string]*Field),
		byBase:     make(map[string][]*Field),
		byList:     make(map[string][]*Field),
	}
}

// ObjectType returns the object type the registry describes
func (r *Registry) ObjectType() string {
	return r.objectType
}

// Register adds fields to the registry. Registration stops at the first
// invalid or duplicate field; fields registered before it are kept.
func (r *Registry) Register(fields ...*Field) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, f := range fields {
		if f == nil || f.ID == "" {
			return fmt.Errorf("%w: empty field id in %s", ErrInvalidField, r.objectType)
		}
		if _, exists := r.byID[f.ID]; exists {
			return fmt.Errorf("%w: %s in %s", ErrDuplicateField, f.ID, r.objectType)
		}

		f = f.Clone()
		r.byID[f.ID] = f
		base := f.Base()
		r.byBase[base] = append(r.byBase[base], f)
		if list, ok := f.List(); ok {
			r.byList[list] = append(r.byList[list], f)
		}
	}
	return nil
}

// Get returns the field registered under the exact id
func (r *Registry) Get(id string) (*Field, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.byID[id]
	if !ok {
		return nil, false
	}
	return f.Clone(), true
}

// Resolve finds the field an incoming token addresses. An exact ID match
// wins. A list member is then matched on its base type within the same
// list. Anything else falls back to a top-level field named by the base
// type.
func (r *Registry) Resolve(tok string) (*Field, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if f, ok := r.byID[tok]; ok {
		return f.Clone(), nil
	}

	if parts, ok := token.IsListMember(tok); ok {
		id := token.EncodeListMember(token.BaseType(parts.Field), parts.List)
		if f, ok := r.byID[id]; ok {
			return f.Clone(), nil
		}
	}

	base := token.BaseType(tok)
	if f, ok := r.byID[base]; ok {
		return f.Clone(), nil
	}
	return nil, fmt.Errorf("%w: %q in %s", ErrFieldNotFound, tok, r.objectType)
}

// All returns copies of all fields sorted by ID
func (r *Registry) All() []*Field {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Field, 0, len(r.byID))
	for _, f := range r.byID {
		out = append(out, f.Clone())
	}
	sortFields(out)
	return out
}

// Len returns the number of registered fields
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

// Lists returns the names of all lists, sorted
func (r *Registry) Lists() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.byList))
	for name := range r.byList {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ListFields returns the fields inside the named list, sorted by ID
func (r *Registry) ListFields(list string) []*Field {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneSorted(r.byList[list])
}

// ByBaseType returns every field whose ID resolves to base
func (r *Registry) ByBaseType(base string) []*Field {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneSorted(r.byBase[base])
}

// Validate checks cross-field consistency: list fields need a non-empty
// field and list part, and reference types need a target type.
func (r *Registry) Validate() error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var errs []error
	for _, f := range r.byID {
		if parts, ok := token.IsListMember(f.ID); ok {
			if parts.Field == "" || parts.List == "" {
				errs = append(errs, fmt.Errorf("%w: %s has an incomplete list token", ErrInvalidField, f.ID))
			}
		}
		if target, ok := f.ReferencedType(); ok && target == "" {
			errs = append(errs, fmt.Errorf("%w: %s references an empty object type", ErrInvalidField, f.ID))
		}
	}
	return errors.Join(errs...)
}

func cloneSorted(in []*Field) []*Field {
	out := make([]*Field, len(in))
	for i, f := range in {
		out[i] = f.Clone()
	}
	sortFields(out)
	return out
}

func sortFields(fs []*Field) {
	sort.Slice(fs, func(i, j int) bool { return fs[i].ID < fs[j].ID })
}
