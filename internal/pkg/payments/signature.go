package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SignatureFreshnessWindow is the maximum accepted skew between the signed
// timestamp and now. Anything older is treated as a replay.
const SignatureFreshnessWindow = 300 * time.Second

var (
	ErrMissingSignature   = errors.New("signature header is missing")
	ErrMalformedSignature = errors.New("signature header is malformed")
	ErrMissingSecret      = errors.New("webhook secret is not configured")
	ErrSignatureExpired   = errors.New("signature timestamp outside freshness window")
	ErrSignatureMismatch  = errors.New("signature digest mismatch")
)

// VerifyWebhookSignature validates the provider's x-signature header for a
// payment notification. The header carries ts (seconds since epoch) and v1
// (hex HMAC-SHA256 digest) sub-fields; the signed manifest is
// "id=<paymentID>;type=payment;ts=<ts>". Comparison is constant time.
func VerifyWebhookSignature(signatureHeader, paymentID, secret string, now time.Time) error {
	if strings.TrimSpace(secret) == "" {
		return ErrMissingSecret
	}
	header := strings.TrimSpace(signatureHeader)
	if header == "" {
		return ErrMissingSignature
	}

	ts, digest, err := parseSignatureHeader(header)
	if err != nil {
		return err
	}

	signedAt := time.Unix(ts, 0)
	age := now.Sub(signedAt)
	if age < 0 {
		age = -age
	}
	if age > SignatureFreshnessWindow {
		return ErrSignatureExpired
	}

	manifest := fmt.Sprintf("id=%s;type=payment;ts=%d", paymentID, ts)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(manifest))
	expected := mac.Sum(nil)

	got, err := hex.DecodeString(strings.ToLower(digest))
	if err != nil {
		return ErrMalformedSignature
	}
	if !hmac.Equal(expected, got) {
		return ErrSignatureMismatch
	}
	return nil
}

// parseSignatureHeader splits "ts=...,v1=..." into its parts.
func parseSignatureHeader(header string) (int64, string, error) {
	var tsRaw, digest string
	for _, part := range strings.Split(header, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "ts":
			tsRaw = kv[1]
		case "v1":
			digest = kv[1]
		}
	}
	if tsRaw == "" || digest == "" {
		return 0, "", ErrMalformedSignature
	}

	ts, err := strconv.ParseInt(tsRaw, 10, 64)
	if err != nil {
		return 0, "", ErrMalformedSignature
	}
	return ts, digest, nil
}
