package translate

import (
	"fmt"
	"reflect"

	"github.com/bytedance/sonic"
)

// Convert translates between two named types sharing an underlying representation, such as an enum declared
// once for the wire and once for callers. It panics if the types are not convertible both ways.
func Convert[D, R any]() Func[D, R] {
	domain := reflect.TypeFor[D]()
	raw := reflect.TypeFor[R]()
	if !raw.ConvertibleTo(domain) || !domain.ConvertibleTo(raw) {
		panic(fmt.Sprintf("translate: %s and %s are not convertible", domain, raw))
	}

	return Func[D, R]{
		WrapFunc: func(r R) (D, error) {
			return reflect.ValueOf(&r).Elem().Convert(domain).Interface().(D), nil
		},
		UnwrapFunc: func(d D) (R, error) {
			return reflect.ValueOf(&d).Elem().Convert(raw).Interface().(R), nil
		},
	}
}

// Slice forwards every element of a slice through elem. Nil slices stay nil.
func Slice[D, R any](elem Func[D, R]) Func[[]D, []R] {
	return Func[[]D, []R]{
		WrapFunc: func(raw []R) ([]D, error) {
			if raw == nil {
				return nil, nil
			}
			res := make([]D, 0, len(raw))
			for i, r := range raw {
				d, err := elem.WrapValue(r)
				if err != nil {
					return nil, fmt.Errorf("element %d: %w", i, err)
				}
				res = append(res, d)
			}
			return res, nil
		},
		UnwrapFunc: func(domain []D) ([]R, error) {
			if domain == nil {
				return nil, nil
			}
			res := make([]R, 0, len(domain))
			for i, d := range domain {
				r, err := elem.UnwrapValue(d)
				if err != nil {
					return nil, fmt.Errorf("element %d: %w", i, err)
				}
				res = append(res, r)
			}
			return res, nil
		},
	}
}

// Map forwards every key and value of a map through key and value. Nil maps stay nil.
func Map[DK, RK comparable, DV, RV any](key Func[DK, RK], value Func[DV, RV]) Func[map[DK]DV, map[RK]RV] {
	return Func[map[DK]DV, map[RK]RV]{
		WrapFunc: func(raw map[RK]RV) (map[DK]DV, error) {
			if raw == nil {
				return nil, nil
			}
			res := make(map[DK]DV, len(raw))
			for rk, rv := range raw {
				dk, err := key.WrapValue(rk)
				if err != nil {
					return nil, fmt.Errorf("key %v: %w", rk, err)
				}
				dv, err := value.WrapValue(rv)
				if err != nil {
					return nil, fmt.Errorf("value of %v: %w", rk, err)
				}
				res[dk] = dv
			}
			return res, nil
		},
		UnwrapFunc: func(domain map[DK]DV) (map[RK]RV, error) {
			if domain == nil {
				return nil, nil
			}
			res := make(map[RK]RV, len(domain))
			for dk, dv := range domain {
				rk, err := key.UnwrapValue(dk)
				if err != nil {
					return nil, fmt.Errorf("key %v: %w", dk, err)
				}
				rv, err := value.UnwrapValue(dv)
				if err != nil {
					return nil, fmt.Errorf("value of %v: %w", dk, err)
				}
				res[rk] = rv
			}
			return res, nil
		},
	}
}

// JSON translates a raw JSON text field into a structured value. An empty string wraps to the zero value.
func JSON[D any]() Func[D, string] {
	return Func[D, string]{
		WrapFunc: func(raw string) (D, error) {
			var d D
			if raw == "" {
				return d, nil
			}
			if err := sonic.ConfigStd.UnmarshalFromString(raw, &d); err != nil {
				return d, err
			}
			return d, nil
		},
		UnwrapFunc: func(domain D) (string, error) {
			return sonic.ConfigStd.MarshalToString(domain)
		},
	}
}
