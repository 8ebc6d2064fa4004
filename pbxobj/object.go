// Package pbxobj holds the in-memory representation of a parsed project
// descriptor: insertion-ordered objects whose entries keep the order they
// had in the file, so a rewrite does not shuffle unrelated lines.
package pbxobj

type IterateAction int8

const (
	IterateContinue IterateAction = iota
	IterateBreak
)

// Object is an ordered string-keyed mapping. The zero value is not usable;
// construct with New or NewWithItems.
type Object struct {
	*sliceMap
}

func New() Object {
	return Object{sliceMap: newSliceMap()}
}

func NewWithItems(items ...Item) Object {
	o := New()
	for _, item := range items {
		o.Set(item.Key, item.Value)
	}
	return o
}

func (o Object) IsEmpty() bool {
	return o.sliceMap == nil || o.Size() == 0
}

// GetObject returns the nested object under key, or a fresh detached object
// when the key is absent or holds a non-object.
func (o Object) GetObject(key string) Object {
	if v, ok := o.Get(key); ok {
		if obj, ok := v.(Object); ok {
			return obj
		}
	}
	return New()
}

// EnsureObject returns the nested object under key, creating and attaching
// an empty one when absent.
func (o Object) EnsureObject(key string) Object {
	if v, ok := o.Get(key); ok {
		if obj, ok := v.(Object); ok {
			return obj
		}
	}
	obj := New()
	o.Set(key, obj)
	return obj
}

func (o Object) GetString(key string) string {
	if v, ok := o.Get(key); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func (o Object) GetInt(key string) int {
	if v, ok := o.Get(key); ok {
		if n, ok := v.(int); ok {
			return n
		}
	}
	return 0
}

type ApplyFunc func(key string, val interface{}) IterateAction
type FilterFunc func(key string, val interface{}) bool

func (o Object) Foreach(apply ApplyFunc) {
	if o.IsEmpty() {
		return
	}
	for _, item := range o.Items() {
		if item.Value == nil {
			continue
		}
		if apply(item.Key, item.Value) == IterateBreak {
			break
		}
	}
}

func (o Object) ForeachWithFilter(apply ApplyFunc, filter FilterFunc) {
	o.Foreach(func(key string, val interface{}) IterateAction {
		if !filter(key, val) {
			return IterateContinue
		}
		return apply(key, val)
	})
}

// Filter returns a new object holding the entries the filter accepts.
func (o Object) Filter(filter FilterFunc) Object {
	out := New()
	o.ForeachWithFilter(func(key string, val interface{}) IterateAction {
		out.Set(key, val)
		return IterateContinue
	}, filter)
	return out
}
