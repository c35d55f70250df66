package testutil

import (
	"fmt"
	"math"
	"reflect"
	"time"
)

var timeType = reflect.TypeOf(time.Time{})

func notEqual(path string, v1, v2 reflect.Value) string {
	if path == "" {
		path = "value"
	}
	return fmt.Sprintf("%s: %#v != %#v", path, v1, v2)
}

// deepValueEqual returns whether v1 and v2 are equal and, if they are not, where the first
// difference is.
func deepValueEqual(path string, v1, v2 reflect.Value) (bool, string) {
	if !v1.IsValid() || !v2.IsValid() {
		if v1.IsValid() != v2.IsValid() {
			return false, fmt.Sprintf("%s: only one value is valid", path)
		}
		return true, ""
	}
	if v1.Type() != v2.Type() {
		return false, fmt.Sprintf("%s: %s != %s", path, v1.Type(), v2.Type())
	}

	if v1.Type() == timeType {
		// Times in different locations are equal if they are the same instant.
		if !v1.Interface().(time.Time).Equal(v2.Interface().(time.Time)) {
			return false, notEqual(path, v1, v2)
		}
		return true, ""
	}

	switch v1.Kind() {
	case reflect.Slice:
		if v1.IsNil() != v2.IsNil() {
			return false, fmt.Sprintf("%s: only one slice is nil", path)
		}
		fallthrough
	case reflect.Array:
		if v1.Len() != v2.Len() {
			return false, fmt.Sprintf("%s: length %d != %d", path, v1.Len(), v2.Len())
		}
		for i := 0; i < v1.Len(); i++ {
			ok, s := deepValueEqual(fmt.Sprintf("%s[%d]", path, i), v1.Index(i), v2.Index(i))
			if !ok {
				return false, s
			}
		}
		return true, ""
	case reflect.Interface:
		if v1.IsNil() || v2.IsNil() {
			if v1.IsNil() != v2.IsNil() {
				return false, notEqual(path, v1, v2)
			}
			return true, ""
		}
		return deepValueEqual(path, v1.Elem(), v2.Elem())
	case reflect.Ptr:
		if v1.Pointer() == v2.Pointer() {
			return true, ""
		}
		return deepValueEqual("(*"+path+")", v1.Elem(), v2.Elem())
	case reflect.Struct:
		for i, n := 0, v1.NumField(); i < n; i++ {
			ok, s := deepValueEqual(path+"."+v1.Type().Field(i).Name, v1.Field(i), v2.Field(i))
			if !ok {
				return false, s
			}
		}
		return true, ""
	case reflect.Map:
		if v1.IsNil() != v2.IsNil() {
			return false, fmt.Sprintf("%s: only one map is nil", path)
		}
		if v1.Len() != v2.Len() {
			return false, fmt.Sprintf("%s: length %d != %d", path, v1.Len(), v2.Len())
		}
		for _, k := range v1.MapKeys() {
			val2 := v2.MapIndex(k)
			if !val2.IsValid() {
				return false, fmt.Sprintf("%s: key %#v missing", path, k)
			}
			ok, s := deepValueEqual(fmt.Sprintf("%s[%#v]", path, k), v1.MapIndex(k), val2)
			if !ok {
				return false, s
			}
		}
		return true, ""
	case reflect.Func:
		if v1.IsNil() && v2.IsNil() {
			return true, ""
		}
		return false, fmt.Sprintf("%s: functions are not comparable", path)
	case reflect.Float32, reflect.Float64:
		f1, f2 := v1.Float(), v2.Float()
		if f1 != f2 && !(math.IsNaN(f1) && math.IsNaN(f2)) {
			return false, notEqual(path, v1, v2)
		}
		return true, ""
	}

	var eq bool
	switch v1.Kind() {
	case reflect.Bool:
		eq = v1.Bool() == v2.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		eq = v1.Int() == v2.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Uintptr:
		eq = v1.Uint() == v2.Uint()
	case reflect.String:
		eq = v1.String() == v2.String()
	case reflect.Complex64, reflect.Complex128:
		eq = v1.Complex() == v2.Complex()
	default:
		eq = v1.Pointer() == v2.Pointer()
	}
	if !eq {
		return false, notEqual(path, v1, v2)
	}
	return true, ""
}

// DeepEqual is like reflect.DeepEqual, except that NaNs are equal to each other, times
// are compared with time.Time.Equal, and, if trc is given, a description of the first
// difference is stored in it.
func DeepEqual(x, y interface{}, trc ...*string) bool {
	if len(trc) > 1 {
		panic("testutil.DeepEqual: more than one optional argument")
	}

	eq, s := deepValueEqual("", reflect.ValueOf(x), reflect.ValueOf(y))
	if len(trc) == 1 && trc[0] != nil {
		*trc[0] = s
	}
	return eq
}
