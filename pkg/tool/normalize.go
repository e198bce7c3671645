package tool

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// Normalize adapts an arbitrary handler return value into a Result.
// Strings become successful content; maps, slices, and structs are
// JSON-stringified into content with the original value kept as Data;
// anything else is stringified.
func Normalize(value interface{}) Result {
	switch v := value.(type) {
	case Result:
		return v
	case *Result:
		if v != nil {
			return *v
		}
		return Ok("")
	case string:
		return Ok(v)
	case nil:
		return Ok("")
	}

	switch reflect.ValueOf(value).Kind() {
	case reflect.Map, reflect.Slice, reflect.Struct, reflect.Ptr:
		if data, err := json.Marshal(value); err == nil {
			r := Ok(string(data))
			r.Data = value
			return r
		}
	}

	return Ok(fmt.Sprintf("%v", value))
}
