// Package altapi implements the alternate chat-completions / embeddings /
// image-generation wire format and its bidirectional translation to and
// from the native format in package nativeapi, per spec.md §4.5/§4.6.
package altapi

import "encoding/json"

// ContentPart is one element of an AltMessage's array-form content.
type ContentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

// ImageURL wraps the url field of an image_url content part.
type ImageURL struct {
	URL string `json:"url"`
}

// ToolCall is an assistant-issued function-call reference.
type ToolCall struct {
	ID       string           `json:"id"`
	Type     string           `json:"type"`
	Function ToolCallFunction `json:"function"`
}

// ToolCallFunction is the name/arguments pair inside a ToolCall.
type ToolCallFunction struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Message is one chat turn. Content may be a plain string or an array of
// ContentPart; MessageContent below models that duality.
type Message struct {
	Role       string         `json:"role"`
	Content    MessageContent `json:"content,omitempty"`
	ToolCalls  []ToolCall     `json:"tool_calls,omitempty"`
	ToolCallID string         `json:"tool_call_id,omitempty"`
	Name       string         `json:"name,omitempty"`
}

// MessageContent holds either a string or a []ContentPart, decoded from
// whichever shape the client actually sent.
type MessageContent struct {
	Text  string
	Parts []ContentPart
	IsSet bool
}

func (m MessageContent) MarshalJSON() ([]byte, error) {
	if !m.IsSet {
		return []byte("null"), nil
	}
	if m.Parts != nil {
		return json.Marshal(m.Parts)
	}
	return json.Marshal(m.Text)
}

func (m *MessageContent) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*m = MessageContent{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*m = MessageContent{Text: s, IsSet: true}
		return nil
	}
	var parts []ContentPart
	if err := json.Unmarshal(b, &parts); err != nil {
		return err
	}
	*m = MessageContent{Parts: parts, IsSet: true}
	return nil
}

// ToolDef is an alt-format tool declaration.
type ToolDef struct {
	Type     string          `json:"type"`
	Function ToolDefFunction `json:"function"`
}

// ToolDefFunction is the body of a function-type ToolDef.
type ToolDefFunction struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

// ToolChoice is either a bare string ("auto"|"any"|"none") or an object
// pinning a specific function.
type ToolChoice struct {
	Mode     string
	Function string
	IsSet    bool
}

func (t *ToolChoice) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*t = ToolChoice{Mode: s, IsSet: true}
		return nil
	}
	var obj struct {
		Type     string `json:"type"`
		Function struct {
			Name string `json:"name"`
		} `json:"function"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	*t = ToolChoice{Mode: obj.Type, Function: obj.Function.Name, IsSet: true}
	return nil
}

// ResponseFormat mirrors the alt response_format request field.
type ResponseFormat struct {
	Type string `json:"type"`
}

// Reasoning carries the alt reasoning.effort hint.
type Reasoning struct {
	Effort string `json:"effort,omitempty"`
}

// StreamOptions mirrors the alt stream_options request field.
type StreamOptions struct {
	IncludeUsage bool `json:"include_usage,omitempty"`
}

// StopSequences decodes either a bare string or a []string for the alt
// `stop` field.
type StopSequences struct {
	Values []string
	IsSet  bool
}

func (s *StopSequences) UnmarshalJSON(b []byte) error {
	var one string
	if err := json.Unmarshal(b, &one); err == nil {
		*s = StopSequences{Values: []string{one}, IsSet: true}
		return nil
	}
	var many []string
	if err := json.Unmarshal(b, &many); err != nil {
		return err
	}
	*s = StopSequences{Values: many, IsSet: true}
	return nil
}

// ChatRequest is the alt-chat request body.
type ChatRequest struct {
	Model         string          `json:"model" validate:"required"`
	Messages      []Message       `json:"messages" validate:"required"`
	Temperature   *float64        `json:"temperature,omitempty"`
	TopP          *float64        `json:"top_p,omitempty"`
	TopK          *float64        `json:"top_k,omitempty"`
	N             *int            `json:"n,omitempty"`
	MaxTokens     *int            `json:"max_tokens,omitempty"`
	Stop          *StopSequences  `json:"stop,omitempty"`
	ResponseFmt   *ResponseFormat `json:"response_format,omitempty"`
	Reasoning     *Reasoning      `json:"reasoning,omitempty"`
	Tools         []ToolDef       `json:"tools,omitempty"`
	ToolChoice    *ToolChoice     `json:"tool_choice,omitempty"`
	Stream        bool            `json:"stream,omitempty"`
	StreamOptions *StreamOptions  `json:"stream_options,omitempty"`
}

// Usage is the alt usage accounting shape.
type Usage struct {
	PromptTokens            int                      `json:"prompt_tokens"`
	CompletionTokens        int                      `json:"completion_tokens"`
	TotalTokens              int                     `json:"total_tokens"`
	OutputTokensDetails      *OutputTokensDetails    `json:"output_tokens_details,omitempty"`
}

// OutputTokensDetails carries the reasoning-token breakdown when present.
type OutputTokensDetails struct {
	ReasoningTokens int `json:"reasoning_tokens"`
}

// Choice is one non-streaming chat completion choice.
type Choice struct {
	Index        int      `json:"index"`
	Message      *Message `json:"message,omitempty"`
	FinishReason *string  `json:"finish_reason"`
	LogProbs     any      `json:"logprobs"`
}

// ChatResponse is the alt-chat non-streaming response body.
type ChatResponse struct {
	ID        string          `json:"id"`
	Object    string          `json:"object"`
	Created   int64           `json:"created"`
	Model     string          `json:"model"`
	Choices   []Choice        `json:"choices"`
	Usage     *Usage          `json:"usage,omitempty"`
	Reasoning *ReasoningEcho  `json:"reasoning,omitempty"`
}

// ReasoningEcho echoes the requested reasoning effort in the response.
type ReasoningEcho struct {
	Effort  string `json:"effort,omitempty"`
	Summary any    `json:"summary"`
}

// Delta is the incremental content of one streaming choice.
type Delta struct {
	Role      string     `json:"role,omitempty"`
	Content   *string    `json:"content,omitempty"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
}

// StreamChoice is one choice within an alt streaming chunk.
type StreamChoice struct {
	Index        int     `json:"index"`
	Delta        Delta   `json:"delta"`
	FinishReason *string `json:"finish_reason"`
}

// Chunk is one alt-chat SSE event payload.
type Chunk struct {
	ID      string         `json:"id"`
	Object  string         `json:"object"`
	Created int64          `json:"created"`
	Model   string         `json:"model"`
	Choices []StreamChoice `json:"choices"`
	Usage   *Usage         `json:"usage,omitempty"`
}

// EmbedRequest is the alt-embed request body.
type EmbedRequest struct {
	Model      string `json:"model" validate:"required"`
	Input      any    `json:"input" validate:"required"`
	Dimensions *int   `json:"dimensions,omitempty"`
}

// ParseInputs normalizes Input (string or []string) into a string slice.
func (r EmbedRequest) ParseInputs() []string {
	switch v := r.Input.(type) {
	case string:
		return []string{v}
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return v
	default:
		return nil
	}
}

// EmbeddingDatum is one embedding result, possibly carrying an error.
type EmbeddingDatum struct {
	Object    string    `json:"object"`
	Index     int       `json:"index"`
	Embedding []float64 `json:"embedding"`
	Error     string    `json:"error,omitempty"`
}

// EmbedResponse is the alt-embed response body.
type EmbedResponse struct {
	Object string           `json:"object"`
	Data   []EmbeddingDatum `json:"data"`
	Model  string           `json:"model"`
	Usage  Usage            `json:"usage"`
}

// ImageRequest is the alt-image request body.
type ImageRequest struct {
	Model          string `json:"model" validate:"required"`
	Prompt         string `json:"prompt" validate:"required"`
	N              *int   `json:"n,omitempty"`
	ResponseFormat string `json:"response_format,omitempty"`
}

// ImageDatum is one generated image result.
type ImageDatum struct {
	B64JSON       string `json:"b64_json"`
	RevisedPrompt string `json:"revised_prompt,omitempty"`
}

// ImageResponse is the alt-image response body.
type ImageResponse struct {
	Created int64        `json:"created"`
	Data    []ImageDatum `json:"data"`
	Usage   *Usage       `json:"usage,omitempty"`
}

// ModelsResponse is the alt-models list response body.
type ModelsResponse struct {
	Object string      `json:"object"`
	Data   []ModelInfo `json:"data"`
}

// ModelInfo is one entry in ModelsResponse.
type ModelInfo struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Created int64  `json:"created"`
	OwnedBy string `json:"owned_by"`
}
