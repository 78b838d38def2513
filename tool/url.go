package tool

import (
	"encoding/base64"
	"fmt"
	"unicode/utf8"
)

// DecodeBase64URL decodes the base64 deep link carried by the create-room query.
// Both standard and URL-safe alphabets are accepted, clients have sent either.
func DecodeBase64URL(s string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		raw, err = base64.URLEncoding.DecodeString(s)
	}
	if err != nil {
		return "", fmt.Errorf("invalid base64 url: %v", err)
	}
	if !utf8.Valid(raw) {
		return "", fmt.Errorf("decoded url is not valid utf-8")
	}
	return string(raw), nil
}
