package token

import (
	"regexp"
	"strings"

	"github.com/tidwall/jsonc"

	"github.com/xdg/rootbridge/internal/daemonconfig"
)

// fieldPattern is the last resort for configs that no JSON parser accepts.
var fieldPattern = regexp.MustCompile(`"api_token"\s*:\s*"([^"]+)"`)

// Extract returns the api_token value in raw, or "" if there is none.
//
// raw is tried as strict JSON first, then as JSON with comments and
// trailing commas, then scanned with a regular expression. The first
// non-empty trimmed value wins. Extract never modifies anything, so a
// config that only the lenient passes understand is read but never
// rewritten.
func Extract(raw string) string {
	if tok := fromObject(raw); tok != "" {
		return tok
	}
	if tok := fromObject(string(jsonc.ToJSON([]byte(raw)))); tok != "" {
		return tok
	}
	if m := fieldPattern.FindStringSubmatch(raw); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

func fromObject(raw string) string {
	obj, ok := daemonconfig.ParseObject(raw)
	if !ok {
		return ""
	}
	s, _ := obj[daemonconfig.TokenField].(string)
	return strings.TrimSpace(s)
}
