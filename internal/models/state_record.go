package models

import "encoding/json"

// StateRecord is a one-time result a worker leaves in the state store.
// Payload is kept raw; the resolver decodes it into the endpoint's shape.
type StateRecord struct {
	Key     string
	Payload json.RawMessage
}

// Decode unmarshals the payload into v.
func (r *StateRecord) Decode(v any) error {
	return json.Unmarshal(r.Payload, v)
}
