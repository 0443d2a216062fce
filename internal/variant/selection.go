package variant

import "encoding/json"

// Selection maps option names to the values a shopper has chosen so far.
// It is immutable: every change produces a new Selection.
type Selection struct {
	values map[string]string
}

// NewSelection copies values, skipping empty entries.
func NewSelection(values map[string]string) Selection {
	s := Selection{values: make(map[string]string, len(values))}
	for option, value := range values {
		if option == "" || value == "" {
			continue
		}
		s.values[option] = value
	}
	return s
}

// Get returns the chosen value for option.
func (s Selection) Get(option string) (string, bool) {
	v, ok := s.values[option]
	return v, ok
}

// Has reports whether option has a chosen value.
func (s Selection) Has(option string) bool {
	_, ok := s.values[option]
	return ok
}

// Len is the number of chosen options.
func (s Selection) Len() int {
	return len(s.values)
}

// Map returns a copy of the chosen values.
func (s Selection) Map() map[string]string {
	out := make(map[string]string, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

func (s Selection) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Map())
}

func (s *Selection) UnmarshalJSON(data []byte) error {
	var values map[string]string
	if err := json.Unmarshal(data, &values); err != nil {
		return err
	}
	*s = NewSelection(values)
	return nil
}
