package altapi

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/vaultgate/gemini-gateway/nativeapi"
)

// randomCallID mints a tool_call id in the "call_<random29>" shape
// spec.md §4.5 requires.
func randomCallID() string {
	buf := make([]byte, 22) // base64-url encodes to ~29-30 chars w/o padding
	_, _ = rand.Read(buf)
	return "call_" + base64.RawURLEncoding.EncodeToString(buf)[:29]
}

// MapFinishReason maps a native finish reason to the alt one, per the
// table in spec.md §4.5/§8 invariant 7. hasFunctionCall forces
// "tool_calls" regardless of the raw reason.
func MapFinishReason(reason string, hasFunctionCall bool) string {
	if hasFunctionCall {
		return "tool_calls"
	}
	switch reason {
	case nativeapi.FinishMaxTokens:
		return "length"
	case nativeapi.FinishSafety, nativeapi.FinishRecitation:
		return "content_filter"
	case nativeapi.FinishFunctionCall:
		return "tool_calls"
	default:
		// STOP | OTHER | UNKNOWN | *UNSPECIFIED* | "" all map to stop.
		return "stop"
	}
}

// ChatFromNative translates a native GenerateResponse into an alt-chat
// ChatResponse, per spec.md §4.5.
func ChatFromNative(resp *nativeapi.GenerateResponse, id string, created int64, model string, reasoningEffort string) *ChatResponse {
	out := &ChatResponse{
		ID:      id,
		Object:  "chat.completion",
		Created: created,
		Model:   model,
	}
	if reasoningEffort != "" {
		out.Reasoning = &ReasoningEcho{Effort: reasoningEffort, Summary: nil}
	}

	for _, cand := range resp.Candidates {
		out.Choices = append(out.Choices, choiceFromCandidate(cand))
	}

	if resp.UsageMetadata != nil {
		out.Usage = usageFromNative(resp.UsageMetadata)
	}
	return out
}

func choiceFromCandidate(cand nativeapi.Candidate) Choice {
	var textBuilder strings.Builder
	var toolCalls []ToolCall
	hasText := false
	for _, part := range cand.Content.Parts {
		if part.FunctionCall != nil {
			argsJSON, _ := json.Marshal(part.FunctionCall.Args)
			toolCalls = append(toolCalls, ToolCall{
				ID:   randomCallID(),
				Type: "function",
				Function: ToolCallFunction{
					Name:      part.FunctionCall.Name,
					Arguments: string(argsJSON),
				},
			})
			continue
		}
		if part.Text != "" || (part.InlineData == nil && part.FunctionResponse == nil) {
			textBuilder.WriteString(part.Text)
			hasText = true
		}
	}

	msg := &Message{Role: "assistant"}
	if hasText {
		msg.Content = MessageContent{Text: textBuilder.String(), IsSet: true}
	}
	if len(toolCalls) > 0 {
		msg.ToolCalls = toolCalls
	}

	finish := MapFinishReason(cand.FinishReason, len(toolCalls) > 0)
	return Choice{
		Index:        cand.Index,
		Message:      msg,
		FinishReason: &finish,
		LogProbs:     nil,
	}
}

func usageFromNative(u *nativeapi.UsageMetadata) *Usage {
	thoughts := u.ThoughtsTokenCount
	completion := u.CandidatesTokenCount - thoughts
	if completion < 0 {
		completion = 0
	}
	usage := &Usage{
		PromptTokens:     u.PromptTokenCount,
		CompletionTokens: completion,
		TotalTokens:      u.TotalTokenCount,
	}
	if thoughts > 0 {
		usage.OutputTokensDetails = &OutputTokensDetails{ReasoningTokens: thoughts}
	}
	return usage
}

// EmbedFromNative assembles the alt-embed response from per-item native
// results (or errors), per spec.md §4.5.
func EmbedFromNative(model string, items []EmbedItemResult) *EmbedResponse {
	out := &EmbedResponse{Object: "list", Model: model}
	for i, item := range items {
		datum := EmbeddingDatum{Object: "embedding", Index: i}
		if item.Err != nil {
			datum.Embedding = []float64{}
			datum.Error = item.Err.Error()
		} else {
			datum.Embedding = item.Values
		}
		out.Data = append(out.Data, datum)
	}
	out.Usage = Usage{PromptTokens: 0, CompletionTokens: 0, TotalTokens: 0}
	return out
}

// EmbedItemResult is one per-input embedding outcome fed to EmbedFromNative.
type EmbedItemResult struct {
	Values []float64
	Err    error
}

// ImageFromNativeGenerate builds the alt-image response from a native
// generation response (the non-Imagen path), per spec.md §4.5.
func ImageFromNativeGenerate(resp *nativeapi.GenerateResponse, created int64) *ImageResponse {
	out := &ImageResponse{Created: created}
	if len(resp.Candidates) == 0 {
		return out
	}
	var revisedPrompt strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		switch {
		case part.InlineData != nil:
			out.Data = append(out.Data, ImageDatum{B64JSON: part.InlineData.Data})
		case part.Text != "":
			revisedPrompt.WriteString(part.Text)
		}
	}
	if revisedPrompt.Len() > 0 {
		for i := range out.Data {
			out.Data[i].RevisedPrompt = revisedPrompt.String()
		}
	}
	if resp.UsageMetadata != nil {
		out.Usage = usageFromNative(resp.UsageMetadata)
	}
	return out
}

// ImageFromNativeImagen builds the alt-image response from a native Imagen
// response.
func ImageFromNativeImagen(resp *nativeapi.ImageGenResponse, created int64) *ImageResponse {
	out := &ImageResponse{Created: created}
	for _, img := range resp.GeneratedImages {
		out.Data = append(out.Data, ImageDatum{B64JSON: img.ImageBytes})
	}
	return out
}

// FormatSSE frames a JSON payload as `data: <json>\n\n`, per spec.md §4.6/§6.
func FormatSSE(payload any) ([]byte, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return fmt.Appendf(nil, "data: %s\n\n", b), nil
}

// DoneEvent is the literal SSE terminator alt-chat streams must emit
// exactly once, per spec.md §6/§8 invariant 6.
var DoneEvent = []byte("data: [DONE]\n\n")
