package genetics

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// MarshalJSON encodes a Value as a bare JSON number or boolean, matching the
// external artifact contract ("params values are numbers or booleans").
func (v Value) MarshalJSON() ([]byte, error) {
	if v.IsBool {
		return json.Marshal(v.Bool)
	}
	return json.Marshal(v.Num)
}

// UnmarshalJSON decodes a bare JSON number or boolean into a Value,
// disambiguating by the raw token since a schema-less Params blob carries no
// type hint of its own.
func (v *Value) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("true")) {
		*v = Value{Bool: true, IsBool: true}
		return nil
	}
	if bytes.Equal(trimmed, []byte("false")) {
		*v = Value{Bool: false, IsBool: true}
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("genetics: param value %q is neither a number nor a boolean: %w", trimmed, err)
	}
	*v = Value{Num: f}
	return nil
}
