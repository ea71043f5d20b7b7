package v1

import (
	"reflect"

	"github.com/danielgtaylor/huma/v2"
)

// OptionalParam wraps a query parameter value so handlers can distinguish an
// absent parameter from its zero value. Huma does not allow pointer types for
// path/query/header parameters; this is the wrapper pattern its ParamWrapper
// and ParamReactor interfaces prescribe instead.
type OptionalParam[T any] struct {
	Value T
	IsSet bool
}

func (o OptionalParam[T]) Schema(r huma.Registry) *huma.Schema {
	return huma.SchemaFromType(r, reflect.TypeOf(o.Value))
}

func (o *OptionalParam[T]) Receiver() reflect.Value {
	return reflect.ValueOf(o).Elem().Field(0)
}

func (o *OptionalParam[T]) OnParamSet(isSet bool, parsed any) {
	o.IsSet = isSet
}
