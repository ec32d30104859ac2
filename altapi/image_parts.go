package altapi

import (
	"encoding/base64"
	"io"
	"net/http"
	"regexp"
	"time"

	"github.com/Laisky/errors/v2"

	"github.com/vaultgate/gemini-gateway/internal/env"
	"github.com/vaultgate/gemini-gateway/nativeapi"
)

// dataURIPattern parses a data: URI per spec.md §4.5:
// ^data:(.*?)(;base64)?,(.*)$ — mime in group 1, base64 payload in group 3.
var dataURIPattern = regexp.MustCompile(`^data:(.*?)(;base64)?,(.*)$`)

var maxInlineImageBytes = int64(env.Int("MAX_INLINE_IMAGE_SIZE_MB", 30)) * 1024 * 1024

var userContentHTTPClient = &http.Client{Timeout: 30 * time.Second}

// inlineDataFromImageURL converts a user-supplied image_url (data URI or
// http(s) URL) into a native InlineData part per spec.md §4.5. Parse
// failures are degraded to a warning-logged placeholder by the caller
// (propagation policy, spec.md §7) rather than failing the whole request.
func inlineDataFromImageURL(url string) (*nativeapi.InlineData, error) {
	if m := dataURIPattern.FindStringSubmatch(url); m != nil {
		mime, payload := m[1], m[3]
		if mime == "" {
			mime = "application/octet-stream"
		}
		if err := validateBase64Payload(payload); err != nil {
			return nil, errors.Wrap(err, "decode inline data URI image")
		}
		return &nativeapi.InlineData{MimeType: mime, Data: payload}, nil
	}

	resp, err := userContentHTTPClient.Get(url)
	if err != nil {
		return nil, errors.Wrapf(err, "fetch image url: %s", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("fetch image url %s: status %d", url, resp.StatusCode)
	}
	if resp.ContentLength > maxInlineImageBytes {
		return nil, errors.Errorf("image at %s exceeds max inline size", url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxInlineImageBytes+1))
	if err != nil {
		return nil, errors.Wrap(err, "read image body")
	}
	if int64(len(body)) > maxInlineImageBytes {
		return nil, errors.Errorf("image at %s exceeds max inline size", url)
	}

	mimeType := resp.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	encoded := base64.StdEncoding.EncodeToString(body)
	return &nativeapi.InlineData{MimeType: mimeType, Data: encoded}, nil
}

// validateBase64Payload checks the payload is well-formed base64 without
// asserting anything about its decoded content. Gemini accepts image mime
// types Go has no decoder for (image/heic, image/heif), so content-type is
// passed through unchecked, matching the teacher's Content-Type-only check
// in common/image.IsImageUrl.
func validateBase64Payload(base64Payload string) error {
	_, err := base64.StdEncoding.DecodeString(base64Payload)
	if err != nil {
		return errors.Wrap(err, "invalid base64 payload")
	}
	return nil
}
