package jdelta

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
	"sync"

	"github.com/go-json-experiment/json/jsontext"
)

// nsSep separates a directive namespace from its short name ("std.time").
const nsSep = "."

type directive struct {
	name string // fully qualified
	fn   reflect.Value
	elem reflect.Type
}

// Registry maps directive names to decoders for sentinel objects of the form
// {"$<name>": <payload>}. A directive decodes its payload from the decoder
// into a Go value which is then converted with FromAny.
//
// Names are either bare ("binary") or namespaced with a single separator
// ("std.time"). Lookups accept the fully qualified name or, when it is
// unambiguous, the short name after the namespace.
//
// A Registry is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]directive
	short   map[string][]string // short name -> fully qualified names
}

func newRegistry() *Registry {
	return &Registry{
		entries: make(map[string]directive),
		short:   make(map[string][]string),
	}
}

var (
	decoderType = reflect.TypeFor[*jsontext.Decoder]()
	errorType   = reflect.TypeFor[error]()
)

func validateName(name string) error {
	if strings.Count(name, nsSep) > 1 || strings.HasPrefix(name, nsSep) || strings.HasSuffix(name, nsSep) {
		return fmt.Errorf("directive %q invalid namespace (expected name or ns.name)", name)
	}
	return nil
}

func validateFunc(name string, fn any) (reflect.Value, reflect.Type, error) {
	fnVal := reflect.ValueOf(fn)
	if fnVal.Kind() != reflect.Func {
		return fnVal, nil, fmt.Errorf("directive %q invalid function signature (got %T)", name, fn)
	}
	typ := fnVal.Type()
	if typ.NumIn() != 2 || typ.NumOut() != 1 {
		return fnVal, nil, fmt.Errorf("directive %q invalid function signature (expected 2 inputs, 1 output; got %d, %d)", name, typ.NumIn(), typ.NumOut())
	}
	if typ.In(0) != decoderType {
		return fnVal, nil, fmt.Errorf("directive %q invalid function signature (first param must be *jsontext.Decoder; got %s)", name, typ.In(0))
	}
	arg := typ.In(1)
	if arg.Kind() != reflect.Pointer {
		return fnVal, nil, fmt.Errorf("directive %q invalid function signature (second param must be a pointer; got %s)", name, arg)
	}
	if typ.Out(0) != errorType {
		return fnVal, nil, fmt.Errorf("directive %q invalid function signature (return type must be error; got %s)", name, typ.Out(0))
	}
	return fnVal, arg.Elem(), nil
}

// Register adds a directive. fn must have the signature
//
//	func(dec *jsontext.Decoder, v *T) error
//
// for some concrete T. Registering a name twice is an error.
func (r *Registry) Register(name string, fn any) error {
	if err := validateName(name); err != nil {
		return err
	}
	fnVal, elem, err := validateFunc(name, fn)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[name]; exists {
		return fmt.Errorf("directive %q already registered", name)
	}
	r.entries[name] = directive{name: name, fn: fnVal, elem: elem}
	if _, short, ok := strings.Cut(name, nsSep); ok {
		r.short[short] = append(r.short[short], name)
		slices.Sort(r.short[short])
	}
	return nil
}

func (r *Registry) lookup(name string) (directive, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if d, ok := r.entries[name]; ok {
		return d, nil
	}
	switch full := r.short[name]; len(full) {
	case 0:
		return directive{}, fmt.Errorf("directive %q not registered", name)
	case 1:
		return r.entries[full[0]], nil
	default:
		return directive{}, fmt.Errorf("directive %q ambiguous (candidates: %s)", name, strings.Join(full, ", "))
	}
}

// resolves reports whether name is registered, either fully qualified or as
// a short name. Ambiguous short names resolve so that Exec reports them.
func (r *Registry) resolves(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, ok := r.entries[name]; ok {
		return true
	}
	return len(r.short[name]) > 0
}

// Exec runs the directive registered under name against dec and returns the
// decoded Go value.
func (r *Registry) Exec(name string, dec *jsontext.Decoder) (any, error) {
	d, err := r.lookup(name)
	if err != nil {
		return nil, err
	}
	argv := reflect.New(d.elem)
	out := d.fn.Call([]reflect.Value{reflect.ValueOf(dec), argv})
	if errVal := out[0].Interface(); errVal != nil {
		return nil, fmt.Errorf("directive %q: %w", d.name, errVal.(error))
	}
	return argv.Elem().Interface(), nil
}

// Value runs the directive registered under name and converts its result into
// a Value.
func (r *Registry) Value(name string, dec *jsontext.Decoder) (Value, error) {
	got, err := r.Exec(name, dec)
	if err != nil {
		return Value{}, err
	}
	return FromAny(got), nil
}
