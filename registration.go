package jdelta

import "github.com/go-json-experiment/json/jsontext"

// Registration is a deferred directive registration. Packages that define
// directives expose values of this type so callers opt in explicitly instead
// of relying on import side-effects.
//
// For example, an SDK bridge decoding image assets could expose:
//
//	var PNG = jdelta.NewDirective("sdk.png", func(dec *jsontext.Decoder) ([]byte, error) { ... })
//
// and callers build their registry with:
//
//	r, _ := jdelta.NewRegistry(jdelta.Builtins(), sdk.PNG)
type Registration func(r *Registry) error

// NewDirective wraps a typed decode function into a Registration. The result
// of fn is converted with FromAny when the directive is used during decoding,
// so T should be one of the types FromAny understands.
func NewDirective[T any](name string, fn func(dec *jsontext.Decoder) (T, error)) Registration {
	return func(r *Registry) error {
		return r.Register(name, func(dec *jsontext.Decoder, v *T) error {
			out, err := fn(dec)
			if err != nil {
				return err
			}
			*v = out
			return nil
		})
	}
}

// Group groups multiple registrations into one:
//
//	jdelta.NewRegistry(jdelta.Group(jdelta.BinaryDirective, jdelta.TimeDirective), custom)
func Group(regs ...Registration) Registration {
	return func(r *Registry) error { return Apply(r, regs...) }
}

// Apply applies registrations to an existing registry, stopping at the first
// error.
func Apply(r *Registry, regs ...Registration) error {
	for _, reg := range regs {
		if err := reg(r); err != nil {
			return err
		}
	}
	return nil
}

// NewRegistry constructs a new registry and applies the provided registrations.
func NewRegistry(regs ...Registration) (*Registry, error) {
	r := newRegistry()
	if err := Apply(r, regs...); err != nil {
		return nil, err
	}
	return r, nil
}
