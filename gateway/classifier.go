// Package gateway implements the core request-handling pipeline:
// classification, authentication, credential selection, native routing,
// and dispatch, per spec.md §4.
package gateway

import (
	"regexp"
	"strings"
)

// Classification identifies which translation/routing path a request
// takes, per spec.md §4.1.
type Classification string

const (
	ClassNative   Classification = "native"
	ClassAltChat  Classification = "alt-chat"
	ClassAltEmbed Classification = "alt-embed"
	ClassAltImage Classification = "alt-image"
	ClassAltModel Classification = "alt-models"
	ClassUnknown  Classification = "unknown"
)

// nativeActionPattern matches the `...:action` suffix style paths
// (generateContent, streamGenerateContent, embedContent,
// batchEmbedContents, countTokens, generateImageWithGemini,
// generateImageWithImagen).
var nativeActionPattern = regexp.MustCompile(
	`:(generateContent|streamGenerateContent|embedContent|batchEmbedContents|countTokens|generateImageWithGemini|generateImageWithImagen)$`)

var nativeListingPattern = regexp.MustCompile(`^/v[0-9][a-zA-Z0-9]*/models(/|$)`)
var tunedModelsPattern = regexp.MustCompile(`^/tunedModels(/|$)`)
var modelSegmentPattern = regexp.MustCompile(`(?:models|tunedModels)/([^/:]+)`)

// Classify implements RequestClassifier (spec.md §4.1): it reads only
// the path, never the method or the body.
func Classify(path string) Classification {
	switch {
	case nativeActionPattern.MatchString(path), nativeListingPattern.MatchString(path), tunedModelsPattern.MatchString(path):
		return ClassNative
	case strings.HasSuffix(path, "/chat/completions"):
		return ClassAltChat
	case strings.HasSuffix(path, "/embeddings"):
		return ClassAltEmbed
	case strings.HasSuffix(path, "/images/generations"):
		return ClassAltImage
	case strings.HasSuffix(path, "/models"):
		return ClassAltModel
	default:
		return ClassUnknown
	}
}

// NativeModelFromPath extracts the model identifier from a native path:
// the segment following "models/" or "tunedModels/" up to an optional
// colon-delimited action suffix.
func NativeModelFromPath(path string) string {
	m := modelSegmentPattern.FindStringSubmatch(path)
	if m == nil {
		return ""
	}
	return m[1]
}

// NativeAction extracts the `:action` suffix from a native path, e.g.
// "generateContent", or "" for listing/get-model paths that carry none.
func NativeAction(path string) string {
	m := nativeActionPattern.FindStringSubmatch(path)
	if m == nil {
		return ""
	}
	return m[1]
}
