package form

// Values is the ordered result of Form.Fields: every declared field name with
// its current converted value, in declaration order.
type Values struct {
	names  []string
	values map[string]any
}

func newValues(capacity int) Values {
	return Values{
		names:  make([]string, 0, capacity),
		values: make(map[string]any, capacity),
	}
}

func (v *Values) add(name string, value any) {
	if _, exists := v.values[name]; !exists {
		v.names = append(v.names, name)
	}
	v.values[name] = value
}

// Names returns the field names in declaration order.
func (v Values) Names() []string {
	return append([]string(nil), v.names...)
}

// Get returns the value read for name.
func (v Values) Get(name string) (any, bool) {
	value, ok := v.values[name]
	return value, ok
}

func (v Values) Len() int { return len(v.names) }

// Map copies the values into a plain map. Iteration order of the result is
// not declaration order; use Names for that.
func (v Values) Map() map[string]any {
	out := make(map[string]any, len(v.values))
	for name, value := range v.values {
		out[name] = value
	}
	return out
}

// Each calls fn for every field in declaration order until fn returns false.
func (v Values) Each(fn func(name string, value any) bool) {
	for _, name := range v.names {
		if !fn(name, v.values[name]) {
			return
		}
	}
}
