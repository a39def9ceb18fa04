/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package convert turns driver values into Go field and result types.
package convert

import (
	"fmt"
	"reflect"
	"time"

	"github.com/go-viper/mapstructure/v2"
)

// Normalize replaces driver byte slices with strings so that weak decoding
// can parse them.
func Normalize(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}

func decoderConfig(result any) *mapstructure.DecoderConfig {
	return &mapstructure.DecoderConfig{
		Result:           result,
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToTimeHookFunc(time.RFC3339Nano),
	}
}

// Assign stores v into dst, which must be settable. nil yields the zero
// value; values of an assignable type are stored as is, the rest go
// through weak decoding.
func Assign(dst reflect.Value, v any) error {
	if v == nil {
		dst.Set(reflect.Zero(dst.Type()))
		return nil
	}
	v = Normalize(v)
	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(dst.Type()) {
		dst.Set(rv)
		return nil
	}
	if dst.Kind() == reflect.Ptr && rv.Type().AssignableTo(dst.Type().Elem()) {
		p := reflect.New(dst.Type().Elem())
		p.Elem().Set(rv)
		dst.Set(p)
		return nil
	}
	tmp := reflect.New(dst.Type())
	dec, err := mapstructure.NewDecoder(decoderConfig(tmp.Interface()))
	if err != nil {
		return err
	}
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("convert %T to %s: %w", v, dst.Type(), err)
	}
	dst.Set(tmp.Elem())
	return nil
}

// To converts v to T.
func To[T any](v any) (T, error) {
	var out T
	if t, ok := v.(T); ok {
		return t, nil
	}
	err := Assign(reflect.ValueOf(&out).Elem(), v)
	return out, err
}

// Decode fills the struct pointed to by out from named values.
func Decode(values map[string]any, out any) error {
	normalized := make(map[string]any, len(values))
	for k, v := range values {
		normalized[k] = Normalize(v)
	}
	dec, err := mapstructure.NewDecoder(decoderConfig(out))
	if err != nil {
		return err
	}
	return dec.Decode(normalized)
}
