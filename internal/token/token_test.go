package token

import (
	"regexp"
	"testing"
)

var tokenPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{43}$`)

func TestGenerate_Format(t *testing.T) {
	for i := 0; i < 20; i++ {
		token := Generate()
		if !tokenPattern.MatchString(token) {
			t.Errorf("token %q does not match %s", token, tokenPattern)
		}
	}
}

func TestGenerate_Unique(t *testing.T) {
	const numTokens = 100
	tokens := make(map[string]struct{}, numTokens)

	for i := 0; i < numTokens; i++ {
		token := Generate()
		if _, exists := tokens[token]; exists {
			t.Errorf("duplicate token generated: %s", token)
		}
		tokens[token] = struct{}{}
	}
}

func TestTokenBytes_Constant(t *testing.T) {
	if TokenBytes != 32 {
		t.Errorf("expected TokenBytes to be 32, got %d", TokenBytes)
	}
}
