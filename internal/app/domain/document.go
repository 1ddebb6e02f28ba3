// Package domain holds types shared by the astroquiz domain models.
package domain

// Document is a semi-structured JSON object whose shape the service does not
// constrain (quiz answers, quiz outcomes, matched characters).
type Document map[string]any

// Clone returns a deep copy. Nested maps and slices produced by JSON decoding
// are copied; scalar values are shared.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return map[string]any(Document(t).Clone())
	case Document:
		return t.Clone()
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}
