package router

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

var uuidType = reflect.TypeOf(uuid.UUID{})

// ValidateParam checks value against a segment type from a pattern such as
// /show/:id:uuid. Integer types honour their bit size, so :n:int8 rejects 300.
func ValidateParam(value, paramType string) error {
	switch paramType {
	case "", "string":
		return nil
	case "uuid":
		if err := uuid.Validate(value); err != nil {
			return fmt.Errorf("%q is not a UUID", value)
		}
		return nil
	}

	bits, signed, ok := intParamType(paramType)
	if !ok {
		return fmt.Errorf("unknown parameter type %q", paramType)
	}
	var err error
	if signed {
		_, err = strconv.ParseInt(value, 10, bits)
	} else {
		_, err = strconv.ParseUint(value, 10, bits)
	}
	if err != nil {
		return fmt.Errorf("%q is not a valid %s", value, paramType)
	}
	return nil
}

// intParamType parses int, int8..int64, uint and uint8..uint64.
// A bit size of 0 means the platform int size, as strconv expects.
func intParamType(paramType string) (bits int, signed, ok bool) {
	name, unsigned := strings.CutPrefix(paramType, "u")
	size, found := strings.CutPrefix(name, "int")
	if !found {
		return 0, false, false
	}
	switch size {
	case "":
		return 0, !unsigned, true
	case "8", "16", "32", "64":
		bits, _ = strconv.Atoi(size)
		return bits, !unsigned, true
	}
	return 0, false, false
}

func knownParamType(paramType string) bool {
	if paramType == "string" || paramType == "uuid" {
		return true
	}
	_, _, ok := intParamType(paramType)
	return ok
}

// Decode copies the event's params into the `param`-tagged fields of the
// struct pointed to by target.
//
//	var p struct {
//	    ID uuid.UUID `param:"uuid"`
//	}
//	err := nav.Event.Decode(&p)
func (e NavigationEvent) Decode(target any) error {
	return DecodeParams(e.Params, target)
}

// DecodeParams is Decode for a bare params map. Supported field types are
// string, the sized int and uint kinds, uuid.UUID and []string for
// catch-all values. Params absent from the map leave their field untouched.
func DecodeParams(params map[string]string, target any) error {
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("router: decode target must be a pointer to a struct, got %T", target)
	}
	v = v.Elem()

	for i := 0; i < v.NumField(); i++ {
		name := v.Type().Field(i).Tag.Get("param")
		if name == "" {
			continue
		}
		raw, ok := params[name]
		if !ok || !v.Field(i).CanSet() {
			continue
		}
		if err := decodeField(v.Field(i), raw); err != nil {
			return fmt.Errorf("%w: %q: %v", ErrInvalidParam, name, err)
		}
	}
	return nil
}

func decodeField(field reflect.Value, raw string) error {
	if field.Type() == uuidType {
		id, err := uuid.Parse(raw)
		if err != nil {
			return fmt.Errorf("%q is not a UUID", raw)
		}
		field.Set(reflect.ValueOf(id))
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(raw)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("%q does not fit %s", raw, field.Type())
		}
		field.SetInt(n)

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(raw, 10, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("%q does not fit %s", raw, field.Type())
		}
		field.SetUint(n)

	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("cannot decode into %s", field.Type())
		}
		var parts []string
		if raw != "" {
			parts = strings.Split(raw, "/")
		}
		field.Set(reflect.ValueOf(parts))

	default:
		return fmt.Errorf("cannot decode into %s", field.Type())
	}
	return nil
}
