package remote

import (
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// check validates a decoded payload against its `validate` struct tags.
// Slices and maps are checked element by element; other kinds pass.
func check(v any) error {
	return checkValue(reflect.ValueOf(v))
}

func checkValue(rv reflect.Value) error {
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Struct:
		if err := validate.Struct(rv.Interface()); err != nil {
			return err
		}
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			if err := checkValue(rv.Index(i)); err != nil {
				return fmt.Errorf("item %d: %w", i, err)
			}
		}
	case reflect.Map:
		iter := rv.MapRange()
		for iter.Next() {
			if err := checkValue(iter.Value()); err != nil {
				return fmt.Errorf("key %v: %w", iter.Key(), err)
			}
		}
	}
	return nil
}
