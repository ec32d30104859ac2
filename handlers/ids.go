package handlers

import (
	"crypto/rand"
	"encoding/base64"
)

// newResponseID mints a "chatcmpl-<random22>"-shaped id for chat
// completion responses, in the same random-suffix idiom as altapi's tool
// call ids.
func newResponseID(prefix string) string {
	buf := make([]byte, 16)
	_, _ = rand.Read(buf)
	return prefix + base64.RawURLEncoding.EncodeToString(buf)
}
