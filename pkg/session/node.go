package session

import (
	"bytes"
	"encoding/json"
	"errors"
	"maps"
	"math"
	"slices"
)

// maxDepth bounds normalization of caller supplied values, catching cycles
// before they overflow the stack.
const maxDepth = 512

// Node is a live view over one object of the session graph. Every write
// through a Node reseals the whole session. Nested objects are returned as
// further Nodes over the same store, nested arrays as Lists.
type Node struct {
	store *Store
	obj   map[string]any
}

// Get returns the value stored under key. Objects come back as *Node and
// arrays as *List so that writes through them are tracked.
func (n *Node) Get(key string) (any, bool) {
	n.store.mu.Lock()
	defer n.store.mu.Unlock()

	v, ok := n.obj[key]
	if !ok {
		return nil, false
	}
	return n.wrap(key, v), true
}

// GetString returns the string under key.
func (n *Node) GetString(key string) (string, bool) {
	v, ok := n.raw(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// GetInt returns the integer under key. Floats without a fractional part
// and decoded JSON numbers are accepted.
func (n *Node) GetInt(key string) (int64, bool) {
	v, ok := n.raw(key)
	if !ok {
		return 0, false
	}
	return toInt(v)
}

// GetFloat returns the number under key as float64.
func (n *Node) GetFloat(key string) (float64, bool) {
	v, ok := n.raw(key)
	if !ok {
		return 0, false
	}
	return toFloat(v)
}

// GetBool returns the boolean under key.
func (n *Node) GetBool(key string) (bool, bool) {
	v, ok := n.raw(key)
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// Has reports whether key is present.
func (n *Node) Has(key string) bool {
	_, ok := n.raw(key)
	return ok
}

// Keys returns the object keys in sorted order.
func (n *Node) Keys() []string {
	n.store.mu.Lock()
	defer n.store.mu.Unlock()
	return slices.Sorted(maps.Keys(n.obj))
}

// Len returns the number of keys.
func (n *Node) Len() int {
	n.store.mu.Lock()
	defer n.store.mu.Unlock()
	return len(n.obj)
}

// Child returns the nested object under key without creating it.
func (n *Node) Child(key string) (*Node, bool) {
	n.store.mu.Lock()
	defer n.store.mu.Unlock()

	child, ok := n.obj[key].(map[string]any)
	if !ok {
		return nil, false
	}
	return &Node{store: n.store, obj: child}, true
}

// Object returns the nested object under key, creating it when key is
// missing or holds something else.
func (n *Node) Object(key string) *Node {
	n.store.mu.Lock()
	defer n.store.mu.Unlock()

	if child, ok := n.obj[key].(map[string]any); ok {
		return &Node{store: n.store, obj: child}
	}

	child := make(map[string]any)
	n.obj[key] = child
	n.store.resealLocked()
	return &Node{store: n.store, obj: child}
}

// List returns the array under key, creating an empty one when key is
// missing or holds something else.
func (n *Node) List(key string) *List {
	n.store.mu.Lock()
	defer n.store.mu.Unlock()

	if _, ok := n.obj[key].([]any); !ok {
		n.obj[key] = []any{}
		n.store.resealLocked()
	}
	return n.listAt(key)
}

// Set stores v under key and reseals the session. Structs, typed maps and
// typed slices are converted to their JSON shape first. A value that cannot
// be encoded is still stored; the failure surfaces from the next commit.
func (n *Node) Set(key string, v any) {
	v = normalize(v, 0)

	n.store.mutate(func() {
		n.obj[key] = v
	})
}

// Delete removes key and reseals the session.
func (n *Node) Delete(key string) {
	n.store.mutate(func() {
		delete(n.obj, key)
	})
}

// Decode unmarshals the object into dst.
func (n *Node) Decode(dst any) error {
	data, err := n.MarshalJSON()
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}

// MarshalJSON encodes the current state of the object.
func (n *Node) MarshalJSON() ([]byte, error) {
	n.store.mu.Lock()
	defer n.store.mu.Unlock()
	return json.Marshal(n.obj)
}

func (n *Node) raw(key string) (any, bool) {
	n.store.mu.Lock()
	defer n.store.mu.Unlock()

	v, ok := n.obj[key]
	if u, isRaw := v.(unserializable); isRaw {
		return u.value, ok
	}
	return v, ok
}

// wrap must be called with the store lock held.
func (n *Node) wrap(key string, v any) any {
	switch val := v.(type) {
	case map[string]any:
		return &Node{store: n.store, obj: val}
	case []any:
		return n.listAt(key)
	case unserializable:
		return val.value
	}
	return v
}

func (n *Node) listAt(key string) *List {
	obj := n.obj
	return &List{
		store: n.store,
		get: func() ([]any, bool) {
			items, ok := obj[key].([]any)
			return items, ok
		},
		set: func(items []any) {
			obj[key] = items
		},
	}
}

// List is a live view over one array of the session graph. It tracks the
// slot holding the array, so it stays valid across appends.
type List struct {
	store *Store
	get   func() ([]any, bool)
	set   func([]any)
}

// Len returns the number of elements, or zero if the slot no longer holds an array.
func (l *List) Len() int {
	l.store.mu.Lock()
	defer l.store.mu.Unlock()

	items, _ := l.get()
	return len(items)
}

// At returns the element at i, wrapped like Node.Get.
func (l *List) At(i int) (any, bool) {
	l.store.mu.Lock()
	defer l.store.mu.Unlock()

	items, ok := l.get()
	if !ok || i < 0 || i >= len(items) {
		return nil, false
	}

	switch val := items[i].(type) {
	case map[string]any:
		return &Node{store: l.store, obj: val}, true
	case []any:
		return l.listAt(i), true
	case unserializable:
		return val.value, true
	default:
		return val, true
	}
}

// Set replaces the element at i and reseals the session.
func (l *List) Set(i int, v any) error {
	v = normalize(v, 0)

	return l.update(func(items []any) ([]any, error) {
		if i < 0 || i >= len(items) {
			return nil, ErrIndexOutOfRange
		}
		items[i] = v
		return items, nil
	})
}

// Append adds values to the end of the array and reseals the session.
func (l *List) Append(values ...any) error {
	normalized := make([]any, len(values))
	for i, v := range values {
		normalized[i] = normalize(v, 0)
	}

	return l.update(func(items []any) ([]any, error) {
		return append(items, normalized...), nil
	})
}

// Remove deletes the element at i and reseals the session.
func (l *List) Remove(i int) error {
	return l.update(func(items []any) ([]any, error) {
		if i < 0 || i >= len(items) {
			return nil, ErrIndexOutOfRange
		}
		return slices.Delete(items, i, i+1), nil
	})
}

// MarshalJSON encodes the current state of the array.
func (l *List) MarshalJSON() ([]byte, error) {
	l.store.mu.Lock()
	defer l.store.mu.Unlock()

	items, ok := l.get()
	if !ok {
		return nil, ErrNotList
	}
	return json.Marshal(items)
}

func (l *List) update(fn func([]any) ([]any, error)) error {
	var err error
	l.store.mutateIf(func() bool {
		items, ok := l.get()
		if !ok {
			err = ErrNotList
			return false
		}
		var next []any
		if next, err = fn(items); err != nil {
			return false
		}
		l.set(next)
		return true
	})
	return err
}

func (l *List) listAt(i int) *List {
	return &List{
		store: l.store,
		get: func() ([]any, bool) {
			items, ok := l.get()
			if !ok || i >= len(items) {
				return nil, false
			}
			nested, ok := items[i].([]any)
			return nested, ok
		},
		set: func(nested []any) {
			if items, ok := l.get(); ok && i < len(items) {
				items[i] = nested
			}
		},
	}
}

// unserializable holds a value json could not encode. It stays readable in
// memory while every reseal of the graph fails with err.
type unserializable struct {
	value any
	err   error
}

func (u unserializable) MarshalJSON() ([]byte, error) {
	return nil, errors.Join(ErrSerialize, u.err)
}

// normalize converts v into the plain graph shape held by the store:
// map[string]any, []any and primitives. The result never aliases v.
func normalize(v any, depth int) any {
	if depth > maxDepth {
		return unserializable{value: v, err: ErrTooDeep}
	}

	switch val := v.(type) {
	case nil, bool, string, json.Number,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64, unserializable:
		return val
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = normalize(item, depth+1)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalize(item, depth+1)
		}
		return out
	}

	data, err := json.Marshal(v)
	if err != nil {
		return unserializable{value: v, err: err}
	}

	var out any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&out); err != nil {
		return unserializable{value: v, err: err}
	}
	return out
}

func toInt(v any) (int64, bool) {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return toInt(f)
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return int64(n), true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case float32:
		return toInt(float64(n))
	case float64:
		if n != math.Trunc(n) || n > math.MaxInt64 || n < math.MinInt64 {
			return 0, false
		}
		return int64(n), true
	}
	return 0, false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case float64:
		return n, true
	case float32:
		return float64(n), true
	}
	if i, ok := toInt(v); ok {
		return float64(i), true
	}
	return 0, false
}
