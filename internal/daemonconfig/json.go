package daemonconfig

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"

	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

// TokenField is the config key holding the API token.
const TokenField = "api_token"

// ParseObject strictly parses raw as a JSON object. ok is false for invalid
// JSON and for valid JSON that is not an object.
func ParseObject(raw string) (obj map[string]any, ok bool) {
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()
	if err := dec.Decode(&obj); err != nil || obj == nil {
		return nil, false
	}
	// Trailing content after the object is not a valid config.
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, false
	}
	return obj, true
}

// WithToken returns raw with api_token set to token, re-indented with two
// spaces. Existing keys keep their order. ok is false when raw is not a
// strict JSON object, in which case the caller must not write anything.
func WithToken(raw, token string) (updated string, ok bool) {
	if _, ok := ParseObject(raw); !ok {
		return "", false
	}
	out, err := sjson.SetBytes([]byte(raw), TokenField, token)
	if err != nil {
		return "", false
	}
	return string(pretty.Pretty(out)), true
}
