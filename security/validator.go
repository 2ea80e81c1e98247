// Package security verifies Twilio webhook request signatures.
package security

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"sort"
	"strings"
)

// RequestValidator checks the X-Twilio-Signature header of webhook requests
// against the account's auth token.
//
// See: https://www.twilio.com/docs/usage/security#validating-requests
type RequestValidator struct {
	authToken string
}

// NewRequestValidator creates a validator keyed by the auth token.
func NewRequestValidator(authToken string) *RequestValidator {
	return &RequestValidator{authToken: authToken}
}

// Validate reports whether signature matches the expected signature for the
// full request URL and decoded form parameters. A malformed or empty
// signature is a mismatch, never an error.
func (v *RequestValidator) Validate(signature, url string, params map[string]string) bool {
	expected := v.Compute(url, params)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// Compute returns the signature for a request: HMAC-SHA1 over the full URL
// followed by every form key and value in lexicographic key order, with no
// delimiters, base64 encoded.
func (v *RequestValidator) Compute(url string, params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(url)
	for _, k := range keys {
		b.WriteString(k)
		b.WriteString(params[k])
	}

	mac := hmac.New(sha1.New, []byte(v.authToken))
	mac.Write([]byte(b.String()))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
