package validation_test

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/google/go-github/v84/github"
	"github.com/isometry/gh-autoflow-app/internal/validation"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

var signatureHeader = strings.ToLower(github.SHA256SignatureHeader)

func sign(secret, body string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(body))
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func TestWebhookSecret_ValidateSignature(t *testing.T) {
	const body = `{"key": "value"}`
	testCases := []struct {
		Name        string
		Headers     map[string]string
		Body        string
		ExpectError error
	}{
		{
			Name:        "missing_signature",
			Headers:     map[string]string{},
			Body:        body,
			ExpectError: validation.ErrMissingSignature,
		},
		{
			Name: "empty_signature",
			Headers: map[string]string{
				signatureHeader: "",
			},
			Body:        body,
			ExpectError: validation.ErrMissingSignature,
		},
		{
			Name: "malformed_signature",
			Headers: map[string]string{
				signatureHeader: "invalid",
			},
			Body:        body,
			ExpectError: validation.ErrInvalidSignature,
		},
		{
			Name: "wrong_secret",
			Headers: map[string]string{
				signatureHeader: sign("other", body),
			},
			Body:        body,
			ExpectError: validation.ErrInvalidSignature,
		},
		{
			Name: "tampered_body",
			Headers: map[string]string{
				signatureHeader: sign("key", body),
			},
			Body:        `{"key": "value2"}`,
			ExpectError: validation.ErrInvalidSignature,
		},
		{
			Name: "whitespace_is_significant",
			Headers: map[string]string{
				signatureHeader: sign("key", body),
			},
			Body:        `{"key":"value"}`,
			ExpectError: validation.ErrInvalidSignature,
		},
		{
			Name: "valid_signature_sha256",
			Headers: map[string]string{
				signatureHeader: sign("key", body),
			},
			Body: body,
		},
	}

	_inst := validation.WebhookSecret("key")
	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			err := _inst.ValidateSignature([]byte(tc.Body), tc.Headers)
			if tc.ExpectError == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tc.ExpectError), "expected %v, got %v", tc.ExpectError, err)
		})
	}
}

func TestWebhookSecret_Disabled(t *testing.T) {
	var nilSecret *validation.WebhookSecret
	assert.False(t, nilSecret.Enabled())
	assert.NoError(t, nilSecret.ValidateSignature([]byte("anything"), nil))

	empty := validation.NewWebhookSecret("")
	assert.False(t, empty.Enabled())
	assert.NoError(t, empty.ValidateSignature([]byte("anything"), map[string]string{}))

	assert.True(t, validation.NewWebhookSecret("key").Enabled())
}
