// Package nativeapi models the provider's native wire format: Content,
// Part (a tagged sum type), and the streaming chunk/usage shapes from
// spec.md §3.
package nativeapi

import "encoding/json"

// Role values for a Content.
const (
	RoleUser     = "user"
	RoleModel    = "model"
	RoleSystem   = "system"
	RoleFunction = "function"
)

// Part is a discriminated union over {text, inlineData, functionCall,
// functionResponse}. Exactly one of the typed fields is populated;
// MarshalJSON/UnmarshalJSON implement the tagged-union wire shape so
// callers never see inheritance-style embedding.
type Part struct {
	Text             string            `json:"-"`
	InlineData       *InlineData       `json:"-"`
	FunctionCall     *FunctionCall     `json:"-"`
	FunctionResponse *FunctionResponse `json:"-"`
}

// InlineData holds a base64-encoded blob and its mime type.
type InlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

// FunctionCall is a model-emitted tool invocation.
type FunctionCall struct {
	Name string         `json:"name"`
	Args map[string]any `json:"args,omitempty"`
}

// FunctionResponse is the caller's reply to a FunctionCall.
type FunctionResponse struct {
	Name     string         `json:"name"`
	Response map[string]any `json:"response,omitempty"`
}

// TextPart builds a plain-text Part.
func TextPart(text string) Part { return Part{Text: text} }

// IsEmpty reports whether no variant is populated.
func (p Part) IsEmpty() bool {
	return p.Text == "" && p.InlineData == nil && p.FunctionCall == nil && p.FunctionResponse == nil
}

type wirePart struct {
	Text             *string           `json:"text,omitempty"`
	InlineData       *InlineData       `json:"inlineData,omitempty"`
	FunctionCall     *FunctionCall     `json:"functionCall,omitempty"`
	FunctionResponse *FunctionResponse `json:"functionResponse,omitempty"`
}

func (p Part) MarshalJSON() ([]byte, error) {
	w := wirePart{
		InlineData:       p.InlineData,
		FunctionCall:     p.FunctionCall,
		FunctionResponse: p.FunctionResponse,
	}
	if p.InlineData == nil && p.FunctionCall == nil && p.FunctionResponse == nil {
		text := p.Text
		w.Text = &text
	}
	return json.Marshal(w)
}

func (p *Part) UnmarshalJSON(b []byte) error {
	var w wirePart
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	if w.Text != nil {
		p.Text = *w.Text
	}
	p.InlineData = w.InlineData
	p.FunctionCall = w.FunctionCall
	p.FunctionResponse = w.FunctionResponse
	return nil
}

// Content wraps a sequence of Parts under a role.
type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

// SafetySetting forces a category off. NativeRouter always overwrites the
// outgoing safetySettings with the all-OFF policy per spec.md §4.4.
type SafetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

// AllCategoriesOff is the fixed safety policy the gateway always applies.
var AllCategoriesOff = []SafetySetting{
	{Category: "HARM_CATEGORY_HARASSMENT", Threshold: "OFF"},
	{Category: "HARM_CATEGORY_HATE_SPEECH", Threshold: "OFF"},
	{Category: "HARM_CATEGORY_SEXUALLY_EXPLICIT", Threshold: "OFF"},
	{Category: "HARM_CATEGORY_DANGEROUS_CONTENT", Threshold: "OFF"},
	{Category: "HARM_CATEGORY_CIVIC_INTEGRITY", Threshold: "OFF"},
}

// ThinkingConfig carries the reasoning-effort-derived token budget.
type ThinkingConfig struct {
	ThinkingBudget int `json:"thinkingBudget"`
}

// GenerationConfig is the merged effective config spec.md §4.4 describes.
type GenerationConfig struct {
	Temperature        *float64        `json:"temperature,omitempty"`
	TopP               *float64        `json:"topP,omitempty"`
	TopK               *float64        `json:"topK,omitempty"`
	CandidateCount     *int            `json:"candidateCount,omitempty"`
	MaxOutputTokens    *int            `json:"maxOutputTokens,omitempty"`
	StopSequences      []string        `json:"stopSequences,omitempty"`
	ResponseMimeType   string          `json:"responseMimeType,omitempty"`
	ResponseSchema     any             `json:"responseSchema,omitempty"`
	ResponseModalities []string        `json:"responseModalities,omitempty"`
	SystemInstruction  *Content        `json:"systemInstruction,omitempty"`
	ThinkingConfig     *ThinkingConfig `json:"thinkingConfig,omitempty"`
	OutputDimensionality *int          `json:"outputDimensionality,omitempty"`
}

// FunctionDeclaration describes one callable tool.
type FunctionDeclaration struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

// Tool is either a set of function declarations or the built-in Google
// Search tool (mutually exclusive per spec.md §4.5).
type Tool struct {
	FunctionDeclarations []FunctionDeclaration `json:"functionDeclarations,omitempty"`
	GoogleSearch         map[string]any        `json:"googleSearch,omitempty"`
}

// Function-calling mode enum values for ToolConfig.
const (
	FuncCallModeAuto = "AUTO"
	FuncCallModeAny  = "ANY"
	FuncCallModeNone = "NONE"
)

// FunctionCallingConfig selects the tool-choice behavior.
type FunctionCallingConfig struct {
	Mode                 string   `json:"mode"`
	AllowedFunctionNames []string `json:"allowedFunctionNames,omitempty"`
}

// ToolConfig wraps FunctionCallingConfig the way the native wire format does.
type ToolConfig struct {
	FunctionCallingConfig *FunctionCallingConfig `json:"functionCallingConfig,omitempty"`
}

// GenerateRequest is the native request body for generateContent /
// streamGenerateContent.
type GenerateRequest struct {
	Contents          []Content         `json:"contents"`
	SystemInstruction *Content          `json:"systemInstruction,omitempty"`
	GenerationConfig  *GenerationConfig `json:"generationConfig,omitempty"`
	SafetySettings    []SafetySetting   `json:"safetySettings,omitempty"`
	Tools             []Tool            `json:"tools,omitempty"`
	ToolConfig        *ToolConfig       `json:"toolConfig,omitempty"`
}

// Finish reasons reported by the provider.
const (
	FinishStop         = "STOP"
	FinishMaxTokens    = "MAX_TOKENS"
	FinishSafety       = "SAFETY"
	FinishRecitation   = "RECITATION"
	FinishFunctionCall = "FUNCTION_CALL"
	FinishOther        = "OTHER"
	FinishUnspecified  = "FINISH_REASON_UNSPECIFIED"
	FinishUnknown      = "UNKNOWN"
)

// Candidate is one generated completion.
type Candidate struct {
	Content      Content `json:"content"`
	FinishReason string  `json:"finishReason,omitempty"`
	Index        int     `json:"index"`
}

// UsageMetadata reports token accounting split the way spec.md §3 describes.
type UsageMetadata struct {
	PromptTokenCount     int `json:"promptTokenCount,omitempty"`
	CandidatesTokenCount int `json:"candidatesTokenCount,omitempty"`
	ThoughtsTokenCount   int `json:"thoughtsTokenCount,omitempty"`
	TotalTokenCount      int `json:"totalTokenCount,omitempty"`
}

// PromptFeedback carries a block reason when the prompt itself was rejected.
type PromptFeedback struct {
	BlockReason string `json:"blockReason,omitempty"`
}

// GenerateResponse is the native non-streaming response body.
type GenerateResponse struct {
	Candidates     []Candidate     `json:"candidates,omitempty"`
	PromptFeedback *PromptFeedback `json:"promptFeedback,omitempty"`
	UsageMetadata  *UsageMetadata  `json:"usageMetadata,omitempty"`
	ModelVersion   string          `json:"modelVersion,omitempty"`
}

// StreamChunk is one native streaming chunk, matching GenerateResponse's
// shape (spec.md §3 NativeStreamChunk).
type StreamChunk = GenerateResponse

// EmbedRequest is the native request body for embedContent.
type EmbedRequest struct {
	Content Content                  `json:"content"`
	Config  *EmbedRequestConfig      `json:"config,omitempty"`
}

// EmbedRequestConfig carries embedding-specific knobs.
type EmbedRequestConfig struct {
	OutputDimensionality *int `json:"outputDimensionality,omitempty"`
}

// Embedding is a single embedding vector result.
type Embedding struct {
	Values []float64 `json:"values"`
}

// EmbedResponse is the native embedContent response.
type EmbedResponse struct {
	Embedding Embedding `json:"embedding"`
}

// ImageGenRequest is the native generateImageWithImagen request body.
type ImageGenRequest struct {
	Prompt string                 `json:"prompt"`
	Config *ImageGenRequestConfig `json:"config,omitempty"`
}

// ImageGenRequestConfig carries Imagen-specific knobs.
type ImageGenRequestConfig struct {
	NumberOfImages   int    `json:"numberOfImages,omitempty"`
	AspectRatio      string `json:"aspectRatio,omitempty"`
	PersonGeneration string `json:"personGeneration,omitempty"`
}

// GeneratedImage is one Imagen-produced image.
type GeneratedImage struct {
	ImageBytes string `json:"imageBytes"`
	MimeType   string `json:"mimeType,omitempty"`
}

// ImageGenResponse is the native generateImageWithImagen response body.
type ImageGenResponse struct {
	GeneratedImages []GeneratedImage `json:"generatedImages"`
}
