package gateway

import "testing"

func TestClassify(t *testing.T) {
	cases := []struct {
		path string
		want Classification
	}{
		{"/v1beta/models/gemini-2.5-flash:generateContent", ClassNative},
		{"/v1beta/models/gemini-2.5-flash:streamGenerateContent", ClassNative},
		{"/v1beta/models", ClassNative},
		{"/v1beta/models/gemini-2.5-flash", ClassNative},
		{"/tunedModels/my-model", ClassNative},
		{"/api/v1/chat/completions", ClassAltChat},
		{"/api/v1/embeddings", ClassAltEmbed},
		{"/api/v1/images/generations", ClassAltImage},
		{"/api/v1/models", ClassAltModel},
		{"/api/v1/unknown-thing", ClassUnknown},
	}
	for _, tc := range cases {
		if got := Classify(tc.path); got != tc.want {
			t.Errorf("Classify(%q) = %q, want %q", tc.path, got, tc.want)
		}
	}
}

func TestNativeModelFromPath(t *testing.T) {
	cases := []struct {
		path string
		want string
	}{
		{"/v1beta/models/gemini-2.5-flash:generateContent", "gemini-2.5-flash"},
		{"/v1beta/models/gemini-2.5-pro", "gemini-2.5-pro"},
		{"/tunedModels/my-tuned-model:generateContent", "my-tuned-model"},
		{"/v1beta/models", ""},
	}
	for _, tc := range cases {
		if got := NativeModelFromPath(tc.path); got != tc.want {
			t.Errorf("NativeModelFromPath(%q) = %q, want %q", tc.path, got, tc.want)
		}
	}
}

func TestNativeAction(t *testing.T) {
	cases := []struct {
		path string
		want string
	}{
		{"/v1beta/models/gemini-2.5-flash:generateContent", "generateContent"},
		{"/v1beta/models/gemini-2.5-flash:streamGenerateContent", "streamGenerateContent"},
		{"/v1beta/models/gemini-2.5-flash", ""},
		{"/v1beta/models/gemini-2.5-flash:countTokens", "countTokens"},
	}
	for _, tc := range cases {
		if got := NativeAction(tc.path); got != tc.want {
			t.Errorf("NativeAction(%q) = %q, want %q", tc.path, got, tc.want)
		}
	}
}
