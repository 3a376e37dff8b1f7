package translate

import (
	"errors"
	"fmt"
	"reflect"
)

var ErrTypeMismatch = errors.New("translator type mismatch")

// Translator converts between a raw wire representation stored in a message field and a domain value callers would
// rather work with. Wrap(Unwrap(d)) must equal d for every valid d. Nil or zero inputs translate to zero outputs.
type Translator interface {
	// Raw is the declared field type the translator reads from and writes to.
	Raw() reflect.Type
	// Domain is the type Wrap returns and Unwrap accepts.
	Domain() reflect.Type
	Wrap(raw any) (any, error)
	Unwrap(domain any) (any, error)
}

// Func is a Translator built from two typed funcs. Either func may be nil, in which case that direction fails.
type Func[D, R any] struct {
	WrapFunc   func(raw R) (D, error)
	UnwrapFunc func(domain D) (R, error)
}

func (T Func[D, R]) Raw() reflect.Type {
	return reflect.TypeFor[R]()
}

func (T Func[D, R]) Domain() reflect.Type {
	return reflect.TypeFor[D]()
}

func (T Func[D, R]) WrapValue(raw R) (D, error) {
	if T.WrapFunc == nil {
		return *new(D), fmt.Errorf("wrap %s: no wrap func", T.Domain())
	}
	return T.WrapFunc(raw)
}

func (T Func[D, R]) UnwrapValue(domain D) (R, error) {
	if T.UnwrapFunc == nil {
		return *new(R), fmt.Errorf("unwrap %s: no unwrap func", T.Domain())
	}
	return T.UnwrapFunc(domain)
}

func (T Func[D, R]) Wrap(raw any) (any, error) {
	if raw == nil {
		return *new(D), nil
	}
	r, ok := raw.(R)
	if !ok {
		return nil, fmt.Errorf("%w: wrap expected %s but got %T", ErrTypeMismatch, T.Raw(), raw)
	}
	return T.WrapValue(r)
}

func (T Func[D, R]) Unwrap(domain any) (any, error) {
	if domain == nil {
		return *new(R), nil
	}
	d, ok := domain.(D)
	if !ok {
		return nil, fmt.Errorf("%w: unwrap expected %s but got %T", ErrTypeMismatch, T.Domain(), domain)
	}
	return T.UnwrapValue(d)
}

var _ Translator = Func[int, int]{}
