package user

import "encoding/json"

// OptionalString distinguishes a JSON key that was never sent from one sent
// as an explicit null. An absent key leaves the stored value untouched; an
// explicit null clears it.
type OptionalString struct {
	Present bool
	Value   *string // nil when the client sent an explicit null
}

// UnmarshalJSON runs only for keys present in the payload, so Present is
// never set for absent fields.
func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Present = true
	return json.Unmarshal(data, &o.Value)
}

// String returns an OptionalString carrying the given value.
func String(s string) OptionalString {
	return OptionalString{Present: true, Value: &s}
}

// Null returns an OptionalString carrying an explicit null.
func Null() OptionalString {
	return OptionalString{Present: true}
}
