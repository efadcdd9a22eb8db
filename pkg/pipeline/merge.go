package pipeline

import (
	"fmt"
	"reflect"
)

// mergeContexts reconciles the result contexts of a successful parallel
// group back into a single context, starting from a fresh clone of
// original. For each key in each ctx_i.Results, the first matching rule in
// the table below applies to new_v's type:
//
//   - slice/array: diff against orig_v by prefix length; items beyond
//     len(orig_v) are this step's contribution and are appended.
//   - integer/float (not bool), orig_v the same numeric category: the
//     positive increment (new_v - orig_v) is added; non-positive increments
//     are ignored.
//   - map: shallow-updated into the merged value (initialized from a deep
//     copy of orig_v, or empty); nested maps are overwritten, not recursed.
//   - anything else (bool, string, opaque): last writer wins, in
//     completion order.
//
// Errors: for each ctx_i, the suffix of Errors beyond len(original.Errors)
// is appended to the merged context's Errors, in completion order.
func mergeContexts[C any](original *Context[C], oks []*Context[C]) *Context[C] {
	merged := original.Clone()

	for _, ctxI := range oks {
		for key, newVal := range ctxI.Results {
			origVal, origExisted := original.Results[key]
			mergeResultValue(merged.Results, key, newVal, origVal, origExisted)
		}

		if len(ctxI.Errors) > len(original.Errors) {
			merged.Errors = append(merged.Errors, ctxI.Errors[len(original.Errors):]...)
		}
	}

	return merged
}

func mergeResultValue(mergedResults map[string]any, key string, newVal, origVal any, origExisted bool) {
	if newVal == nil {
		mergedResults[key] = nil
		return
	}

	newRV := reflect.ValueOf(newVal)

	switch newRV.Kind() {
	case reflect.Slice, reflect.Array:
		mergeSliceValue(mergedResults, key, newRV, origVal, origExisted)
		return
	case reflect.Bool:
		mergedResults[key] = newVal
		return
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		if mergeNumericValue(mergedResults, key, newRV, origVal, origExisted) {
			return
		}
		mergedResults[key] = newVal
		return
	case reflect.Map:
		mergeMapValue(mergedResults, key, newRV, origVal, origExisted)
		return
	default:
		mergedResults[key] = newVal
		return
	}
}

func mergeSliceValue(mergedResults map[string]any, key string, newRV reflect.Value, origVal any, origExisted bool) {
	origRV := reflect.Value{}
	origIsSlice := false
	if origExisted && origVal != nil {
		v := reflect.ValueOf(origVal)
		if v.Kind() == reflect.Slice || v.Kind() == reflect.Array {
			origRV = v
			origIsSlice = true
		}
	}

	if !origIsSlice {
		mergedResults[key] = newRV.Interface()
		return
	}

	origLen := origRV.Len()
	if newRV.Len() <= origLen {
		if _, already := mergedResults[key]; !already {
			mergedResults[key] = cloneSlice(origRV)
		}
		return
	}

	newItems := make([]reflect.Value, 0, newRV.Len()-origLen)
	for i := origLen; i < newRV.Len(); i++ {
		newItems = append(newItems, newRV.Index(i))
	}

	base, ok := mergedResults[key]
	var baseRV reflect.Value
	if ok {
		baseRV = reflect.ValueOf(base)
	} else {
		baseRV = cloneSlice(origRV)
	}

	out := reflect.MakeSlice(baseRV.Type(), baseRV.Len(), baseRV.Len()+len(newItems))
	reflect.Copy(out, baseRV)
	for _, item := range newItems {
		out = reflect.Append(out, item)
	}
	mergedResults[key] = out.Interface()
}

func cloneSlice(rv reflect.Value) reflect.Value {
	out := reflect.MakeSlice(reflect.SliceOf(rv.Type().Elem()), rv.Len(), rv.Len())
	reflect.Copy(out, rv)
	return out
}

func mergeNumericValue(mergedResults map[string]any, key string, newRV reflect.Value, origVal any, origExisted bool) bool {
	if !origExisted || origVal == nil {
		return false
	}
	origRV := reflect.ValueOf(origVal)
	if !sameNumericCategory(newRV.Kind(), origRV.Kind()) {
		return false
	}

	newFloat := toFloat64(newRV)
	origFloat := toFloat64(origRV)
	increment := newFloat - origFloat
	if increment <= 0 {
		return true
	}

	base, ok := mergedResults[key]
	var baseFloat float64
	if ok {
		baseFloat = toFloat64(reflect.ValueOf(base))
	} else {
		baseFloat = origFloat
	}

	mergedResults[key] = fromFloat64(baseFloat+increment, newRV.Type())
	return true
}

func sameNumericCategory(a, b reflect.Kind) bool {
	return isIntKind(a) && isIntKind(b) || isFloatKind(a) && isFloatKind(b)
}

func isIntKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	default:
		return false
	}
}

func isFloatKind(k reflect.Kind) bool {
	return k == reflect.Float32 || k == reflect.Float64
}

func toFloat64(rv reflect.Value) float64 {
	if isFloatKind(rv.Kind()) {
		return rv.Float()
	}
	if rv.CanInt() {
		return float64(rv.Int())
	}
	if rv.CanUint() {
		return float64(rv.Uint())
	}
	return 0
}

func fromFloat64(f float64, t reflect.Type) any {
	v := reflect.New(t).Elem()
	switch {
	case isFloatKind(t.Kind()):
		v.SetFloat(f)
	case isIntKind(t.Kind()):
		v.SetInt(int64(f))
	default:
		return f
	}
	return v.Interface()
}

func mergeMapValue(mergedResults map[string]any, key string, newRV reflect.Value, origVal any, origExisted bool) {
	var base map[string]any

	if existing, ok := mergedResults[key]; ok {
		if m, ok := existing.(map[string]any); ok {
			base = m
		}
	}
	if base == nil {
		base = make(map[string]any)
		if origExisted && origVal != nil {
			if origMap, ok := origVal.(map[string]any); ok {
				for k, v := range origMap {
					base[k] = v
				}
			}
		}
	}

	iter := newRV.MapRange()
	for iter.Next() {
		base[toStringKey(iter.Key())] = iter.Value().Interface()
	}

	mergedResults[key] = base
}

func toStringKey(rv reflect.Value) string {
	if rv.Kind() == reflect.String {
		return rv.String()
	}
	return fmt.Sprint(rv.Interface())
}
