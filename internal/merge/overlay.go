package merge

// Apply computes the differential merge of a partially-specified overlay
// onto a base value. Both sides are decoded JSON (map[string]any, []any,
// scalars, nil). The result is freshly allocated; neither input is mutated.
//
// Objects merge field by field: overlay fields replace or recurse into base
// fields, base fields absent from the overlay are retained. An empty
// overlay object leaves the base unchanged.
//
// Arrays merge positionally: an empty overlay array clears the field, a
// null overlay entry drops the base element at that position, an object
// entry merges into the base element at that position, entries past the end
// of the base are appended, and base elements past the end of the overlay
// are kept. Eliminating all but the last element of a long array takes one
// null per eliminated element; there is no shorthand.
func Apply(base, overlay any) any {
	switch ov := overlay.(type) {
	case map[string]any:
		bs, ok := base.(map[string]any)
		if !ok {
			return clone(overlay)
		}
		if len(ov) == 0 {
			return clone(base)
		}
		result := make(map[string]any, len(bs)+len(ov))
		for k, v := range bs {
			result[k] = clone(v)
		}
		for k, v := range ov {
			if cur, exists := result[k]; exists {
				result[k] = Apply(cur, v)
			} else {
				result[k] = clone(v)
			}
		}
		return result
	case []any:
		bs, ok := base.([]any)
		if !ok {
			return clone(overlay)
		}
		if len(ov) == 0 {
			return []any{}
		}
		result := make([]any, 0, len(ov)+len(bs))
		bsidx := 0
		for _, elem := range ov {
			if bsidx >= len(bs) {
				// Past the base: a pure append, merged against an
				// empty record, which is the element verbatim.
				result = append(result, clone(elem))
				continue
			}
			if elem == nil {
				bsidx++
				continue
			}
			if obj, isObject := elem.(map[string]any); isObject {
				if len(obj) == 0 {
					result = append(result, clone(bs[bsidx]))
				} else {
					result = append(result, Apply(bs[bsidx], elem))
				}
			} else {
				result = append(result, clone(elem))
			}
			bsidx++
		}
		for ; bsidx < len(bs); bsidx++ {
			result = append(result, clone(bs[bsidx]))
		}
		return result
	default:
		return clone(overlay)
	}
}

func clone(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = clone(e)
		}
		return out
	case []any:
		out := make([]any, 0, len(t))
		for _, e := range t {
			out = append(out, clone(e))
		}
		return out
	default:
		return v
	}
}
