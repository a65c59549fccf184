// Package signature computes and verifies the keyed digests that protect
// messages exchanged with the wallet gateway.
//
// A message is signed over its canonical string: the message's fields rendered
// as name=value pairs joined by '&', in the order fixed by the message's
// Layout. The order is part of the gateway's wire contract, so each message
// type carries its own explicit, versioned field list.
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyKey is returned when a Signer is built without a secret.
	ErrEmptyKey = errors.New("signature: secret key is empty")
	// ErrMissingField is returned when a value required by a layout is absent.
	ErrMissingField = errors.New("signature: missing field")
)

// Field is a single named value in a canonical string.
type Field struct {
	Name  string
	Value string
}

// Layout fixes the field order of one message type.
type Layout struct {
	Name    string
	Version int
	Fields  []string
}

// Layouts used by the wallet gateway's v2 API.
var (
	CreatePaymentV2 = Layout{
		Name:    "create-payment",
		Version: 2,
		Fields: []string{
			"accessKey", "amount", "extraData", "orderId", "orderInfo",
			"partnerCode", "requestId", "returnUrl", "notifyUrl",
		},
	}

	PaymentNotifyV2 = Layout{
		Name:    "payment-notify",
		Version: 2,
		Fields: []string{
			"accessKey", "amount", "extraData", "message", "orderId", "orderInfo",
			"orderType", "partnerCode", "payType", "requestId", "responseTime",
			"resultCode", "transId",
		},
	}
)

// String identifies the layout in logs.
func (l Layout) String() string {
	return fmt.Sprintf("%s/v%d", l.Name, l.Version)
}

// Order arranges values into the layout's field order. Every field of the
// layout must be present in values; an empty string is a valid value.
// Keys in values that the layout does not name are ignored.
func (l Layout) Order(values map[string]string) ([]Field, error) {
	fields := make([]Field, 0, len(l.Fields))
	for _, name := range l.Fields {
		v, ok := values[name]
		if !ok {
			return nil, fmt.Errorf("%w %q for layout %s", ErrMissingField, name, l)
		}
		fields = append(fields, Field{Name: name, Value: v})
	}
	return fields, nil
}

// Canonicalize renders values as the layout's canonical string.
func (l Layout) Canonicalize(values map[string]string) (string, error) {
	fields, err := l.Order(values)
	if err != nil {
		return "", err
	}
	return Canonicalize(fields), nil
}

// Canonicalize joins fields as name=value pairs separated by '&', in the
// order given. Values are written verbatim.
func Canonicalize(fields []Field) string {
	var b strings.Builder
	for i, f := range fields {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(f.Name)
		b.WriteByte('=')
		b.WriteString(f.Value)
	}
	return b.String()
}

// Sign returns the hex-encoded HMAC-SHA256 of canonical under key.
func Sign(key []byte, canonical string) string {
	return hex.EncodeToString(digest(key, canonical))
}

// Verify reports whether candidate is the hex-encoded HMAC-SHA256 of
// canonical under key. The comparison runs in constant time.
func Verify(key []byte, canonical, candidate string) bool {
	got, err := hex.DecodeString(candidate)
	if err != nil {
		return false
	}
	return hmac.Equal(digest(key, canonical), got)
}

func digest(key []byte, canonical string) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(canonical))
	return mac.Sum(nil)
}

// Signer holds the process-wide secret key. The key is never exposed.
type Signer struct {
	key []byte
}

// NewSigner creates a Signer for secret.
func NewSigner(secret string) (*Signer, error) {
	if secret == "" {
		return nil, ErrEmptyKey
	}
	return &Signer{key: []byte(secret)}, nil
}

// Sign signs a canonical string.
func (s *Signer) Sign(canonical string) string {
	return Sign(s.key, canonical)
}

// Verify checks candidate against canonical.
func (s *Signer) Verify(canonical, candidate string) bool {
	return Verify(s.key, canonical, candidate)
}

// SignValues canonicalizes values with layout and signs the result.
func (s *Signer) SignValues(layout Layout, values map[string]string) (string, error) {
	canonical, err := layout.Canonicalize(values)
	if err != nil {
		return "", err
	}
	return s.Sign(canonical), nil
}

// VerifyValues canonicalizes values with layout and checks candidate against it.
func (s *Signer) VerifyValues(layout Layout, values map[string]string, candidate string) (bool, error) {
	canonical, err := layout.Canonicalize(values)
	if err != nil {
		return false, err
	}
	return s.Verify(canonical, candidate), nil
}

// GoString keeps the key out of %#v output.
func (s *Signer) GoString() string {
	return "signature.Signer{key:<redacted>}"
}
