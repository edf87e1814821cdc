package handlers

import (
	"encoding/json"
	"fmt"
)

func bindPayload(raw []byte, target any) error {
	if len(raw) == 0 {
		return fmt.Errorf("empty body")
	}
	return json.Unmarshal(raw, target)
}

func errInvalidEnum(field, value string) error {
	return fmt.Errorf("invalid %s %q", field, value)
}
