// Package env contains a function to load configuration from environment.
package env

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
)

// Unmarshaler can be implemented to override the unmarshaling process.
type Unmarshaler interface {
	UnmarshalEnv(prefix string, v string) error
}

func envHasAtLeastAKeyWithPrefix(env map[string]string, prefix string) bool {
	for key := range env {
		if strings.HasPrefix(key, prefix) {
			return true
		}
	}
	return false
}

func parseBool(prefix string, ev string) (bool, error) {
	switch strings.ToLower(ev) {
	case "yes", "true":
		return true, nil

	case "no", "false":
		return false, nil
	}
	return false, fmt.Errorf("%s: invalid value '%s'", prefix, ev)
}

func loadEnvInternal(env map[string]string, prefix string, prv reflect.Value) error {
	if prv.Kind() != reflect.Pointer {
		return loadEnvInternal(env, prefix, prv.Addr())
	}

	rt := prv.Type().Elem()

	if i, ok := prv.Interface().(Unmarshaler); ok {
		if ev, ok := env[prefix]; ok {
			if prv.IsNil() {
				prv.Set(reflect.New(rt))
				i = prv.Interface().(Unmarshaler)
			}
			err := i.UnmarshalEnv(prefix, ev)
			if err != nil {
				return fmt.Errorf("%s: %w", prefix, err)
			}
		}
		return nil
	}

	ev, hasValue := env[prefix]

	switch rt.Kind() {
	case reflect.String:
		if hasValue {
			prv.Elem().SetString(ev)
		}
		return nil

	case reflect.Int, reflect.Int64:
		if hasValue {
			iv, err := strconv.ParseInt(ev, 10, 64)
			if err != nil {
				return fmt.Errorf("%s: %w", prefix, err)
			}
			prv.Elem().SetInt(iv)
		}
		return nil

	case reflect.Uint, reflect.Uint32, reflect.Uint64:
		if hasValue {
			iv, err := strconv.ParseUint(ev, 10, 64)
			if err != nil {
				return fmt.Errorf("%s: %w", prefix, err)
			}
			prv.Elem().SetUint(iv)
		}
		return nil

	case reflect.Bool:
		if hasValue {
			bv, err := parseBool(prefix, ev)
			if err != nil {
				return err
			}
			prv.Elem().SetBool(bv)
		}
		return nil

	case reflect.Struct:
		for i := 0; i < rt.NumField(); i++ {
			jsonTag := strings.Split(rt.Field(i).Tag.Get("json"), ",")[0]

			// load only public fields
			if jsonTag == "" || jsonTag == "-" {
				continue
			}

			err := loadEnvInternal(env, prefix+"_"+strings.ToUpper(jsonTag), prv.Elem().Field(i))
			if err != nil {
				return err
			}
		}
		return nil

	case reflect.Slice:
		switch {
		case rt.Elem().Kind() == reflect.String:
			if hasValue {
				if ev == "" {
					prv.Elem().Set(reflect.MakeSlice(rt, 0, 0))
				} else {
					parts := strings.Split(ev, ",")
					sl := reflect.MakeSlice(rt, len(parts), len(parts))
					for i, p := range parts {
						sl.Index(i).SetString(p)
					}
					prv.Elem().Set(sl)
				}
			}
			return nil

		case rt.Elem().Kind() == reflect.Struct:
			if hasValue && ev == "" { // empty list
				prv.Elem().Set(reflect.MakeSlice(rt, 0, 0))
				return nil
			}

			for i := 0; ; i++ {
				itemPrefix := prefix + "_" + strconv.FormatInt(int64(i), 10)
				if !envHasAtLeastAKeyWithPrefix(env, itemPrefix) {
					break
				}

				// the first item overrides the whole list
				if i == 0 {
					prv.Elem().Set(reflect.MakeSlice(rt, 0, 0))
				}

				elem := reflect.New(rt.Elem())
				err := loadEnvInternal(env, itemPrefix, elem.Elem())
				if err != nil {
					return err
				}

				prv.Elem().Set(reflect.Append(prv.Elem(), elem.Elem()))
			}
			return nil
		}
	}

	return fmt.Errorf("unsupported type: %v", rt)
}

func loadWithEnv(env map[string]string, prefix string, v any) error {
	return loadEnvInternal(env, prefix, reflect.ValueOf(v).Elem())
}

func envToMap() map[string]string {
	env := make(map[string]string)
	for _, kv := range os.Environ() {
		tmp := strings.SplitN(kv, "=", 2)
		env[tmp[0]] = tmp[1]
	}
	return env
}

// Load loads the configuration from the environment.
func Load(prefix string, v any) error {
	return loadWithEnv(envToMap(), prefix, v)
}
