package check

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// Validatable is implemented by anything that has fields that should be validated.
type Validatable interface {
	Validate() []error
}

// ValidationError collects every failure found while walking a value.
type ValidationError struct {
	Errs []error
}

func (v ValidationError) Error() string {
	msgs := make([]string, 0, len(v.Errs))
	for _, err := range v.Errs {
		msgs = append(msgs, err.Error())
	}
	sort.Strings(msgs)
	return fmt.Sprintf("Check Failed! %d errors found:\n\t%s", len(v.Errs), strings.Join(msgs, "\n\t"))
}

// Validate walks v and every value reachable through its exported fields, slices and maps,
// calling Validate on each Validatable it finds. All failures are returned as a single
// ValidationError.
func Validate(v interface{}) error {
	errs := walk(reflect.ValueOf(v), "root")
	if len(errs) == 0 {
		return nil
	}
	return ValidationError{Errs: errs}
}

func walk(v reflect.Value, path string) []error {
	if !v.IsValid() {
		return nil
	}

	var errs []error
	switch v.Kind() {
	case reflect.Ptr:
		if v.IsNil() {
			return nil
		}
		return walk(v.Elem(), path)
	case reflect.Slice:
		for i := 0; i < v.Len(); i++ {
			errs = append(errs, walk(v.Index(i), fmt.Sprintf("%s[%d]", path, i))...)
		}
	case reflect.Map:
		for _, key := range v.MapKeys() {
			errs = append(errs, walk(v.MapIndex(key), fmt.Sprintf("%s[%v]", path, key.Interface()))...)
		}
	case reflect.Struct:
		for i := 0; i < v.NumField(); i++ {
			if !v.Field(i).CanInterface() {
				continue
			}
			errs = append(errs, walk(v.Field(i), path+"."+v.Type().Field(i).Name)...)
		}
	}

	// Take an addressable copy so both value and pointer receivers are found.
	ptr := reflect.New(v.Type())
	ptr.Elem().Set(v)
	if validatable, ok := ptr.Interface().(Validatable); ok {
		for _, err := range validatable.Validate() {
			if err != nil {
				errs = append(errs, errors.Wrapf(err, "error found at %s", path))
			}
		}
	}
	return errs
}
