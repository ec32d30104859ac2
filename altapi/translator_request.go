package altapi

import (
	"encoding/json"
	"strings"

	"github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"

	"github.com/vaultgate/gemini-gateway/internal/logging"
	"github.com/vaultgate/gemini-gateway/nativeapi"
)

// reasoningEffortBudgets maps the three literal reasoning.effort strings
// to fixed thinking budgets per spec.md §4.5. Any other value (including
// absent) leaves ThinkingConfig unset — this is a deliberate Open
// Question decision preserved from spec.md §9, not a default-synthesis
// bug.
var reasoningEffortBudgets = map[string]int{
	"low":    1024,
	"medium": 4096,
	"high":   16384,
}

// imagenModelMarker is the case-insensitive substring identifying the
// Imagen model family for alt-image routing (spec.md §4.5).
const imagenModelMarker = "imagen"

// ChatToNative translates an alt-chat request into a native GenerateRequest,
// per spec.md §4.5. Image-URL parse failures on a sub-part are degraded to
// an inline placeholder text part rather than failing the whole request
// (spec.md §7 propagation policy).
func ChatToNative(req *ChatRequest) (*nativeapi.GenerateRequest, error) {
	var systemParts []nativeapi.Part
	var contents []nativeapi.Content

	for _, msg := range req.Messages {
		switch msg.Role {
		case "system":
			systemParts = append(systemParts, textPartsFromContent(msg.Content)...)
		case "assistant":
			contents = append(contents, assistantContent(msg))
		case "tool":
			contents = append(contents, toolContent(msg))
		case "user":
			contents = append(contents, userContent(msg))
		default:
			contents = append(contents, userContent(msg))
		}
	}

	out := &nativeapi.GenerateRequest{Contents: contents}
	if len(systemParts) > 0 {
		out.SystemInstruction = &nativeapi.Content{Parts: systemParts}
	}

	out.GenerationConfig = chatGenerationConfig(req)
	out.SafetySettings = nativeapi.AllCategoriesOff

	if tools, err := chatTools(req.Tools); err != nil {
		return nil, err
	} else if len(tools) > 0 {
		out.Tools = tools
	}

	if req.ToolChoice != nil && req.ToolChoice.IsSet {
		out.ToolConfig = chatToolConfig(req.ToolChoice)
	}

	return out, nil
}

func textPartsFromContent(c MessageContent) []nativeapi.Part {
	if c.Parts != nil {
		var parts []nativeapi.Part
		for _, p := range c.Parts {
			if p.Type == "text" {
				parts = append(parts, nativeapi.TextPart(p.Text))
			}
		}
		return parts
	}
	return []nativeapi.Part{nativeapi.TextPart(c.Text)}
}

func assistantContent(msg Message) nativeapi.Content {
	content := nativeapi.Content{Role: nativeapi.RoleModel}
	for _, tc := range msg.ToolCalls {
		var args map[string]any
		// parse failures degrade to an empty args map rather than
		// failing translation of the whole message.
		_ = json.Unmarshal([]byte(tc.Function.Arguments), &args)
		content.Parts = append(content.Parts, nativeapi.Part{
			FunctionCall: &nativeapi.FunctionCall{Name: tc.Function.Name, Args: args},
		})
	}
	if len(msg.ToolCalls) == 0 {
		if msg.Content.IsSet {
			content.Parts = textPartsFromContent(msg.Content)
		}
		if len(content.Parts) == 0 {
			content.Parts = []nativeapi.Part{nativeapi.TextPart("")}
		}
	}
	return content
}

func toolContent(msg Message) nativeapi.Content {
	name := msg.Name
	if name == "" {
		name = msg.ToolCallID
	}
	var responseContent any = msg.Content.Text
	if msg.Content.Parts != nil {
		responseContent = msg.Content.Parts
	}
	return nativeapi.Content{
		Role: nativeapi.RoleFunction,
		Parts: []nativeapi.Part{{
			FunctionResponse: &nativeapi.FunctionResponse{
				Name:     name,
				Response: map[string]any{"content": responseContent},
			},
		}},
	}
}

func userContent(msg Message) nativeapi.Content {
	content := nativeapi.Content{Role: nativeapi.RoleUser}
	if msg.Content.Parts == nil {
		content.Parts = []nativeapi.Part{nativeapi.TextPart(msg.Content.Text)}
		return content
	}
	for _, part := range msg.Content.Parts {
		switch part.Type {
		case "text":
			content.Parts = append(content.Parts, nativeapi.TextPart(part.Text))
		case "image_url":
			if part.ImageURL == nil {
				continue
			}
			inline, err := inlineDataFromImageURL(part.ImageURL.URL)
			if err != nil {
				logging.Logger.Warn("image url could not be processed",
					zap.String("url", part.ImageURL.URL), zap.Error(err))
				content.Parts = append(content.Parts, nativeapi.TextPart(
					"[Image URL could not be processed: "+err.Error()+"]"))
				continue
			}
			content.Parts = append(content.Parts, nativeapi.Part{InlineData: inline})
		}
	}
	return content
}

// chatGenerationConfig maps the alt generation-config fields to native
// ones per the table in spec.md §4.5.
func chatGenerationConfig(req *ChatRequest) *nativeapi.GenerationConfig {
	cfg := &nativeapi.GenerationConfig{
		Temperature:     req.Temperature,
		TopP:            req.TopP,
		TopK:            req.TopK,
		CandidateCount:  req.N,
		MaxOutputTokens: req.MaxTokens,
	}
	if req.Stop != nil && req.Stop.IsSet {
		cfg.StopSequences = req.Stop.Values
	}
	if req.ResponseFmt != nil && req.ResponseFmt.Type == "json_object" {
		cfg.ResponseMimeType = "application/json"
	}
	if req.Reasoning != nil {
		if budget, ok := reasoningEffortBudgets[req.Reasoning.Effort]; ok {
			cfg.ThinkingConfig = &nativeapi.ThinkingConfig{ThinkingBudget: budget}
		}
	}
	return cfg
}

// chatTools translates alt tool declarations. A googleSearch-named tool
// takes over the entire tools list, honoring the provider's one-tool-type
// restriction (spec.md §4.5).
func chatTools(tools []ToolDef) ([]nativeapi.Tool, error) {
	for _, t := range tools {
		if t.Type == "function" && t.Function.Name == "googleSearch" {
			return []nativeapi.Tool{{GoogleSearch: map[string]any{}}}, nil
		}
	}
	var decls []nativeapi.FunctionDeclaration
	for _, t := range tools {
		if t.Type != "function" {
			continue
		}
		decls = append(decls, nativeapi.FunctionDeclaration{
			Name:        t.Function.Name,
			Description: t.Function.Description,
			Parameters:  t.Function.Parameters,
		})
	}
	if len(decls) == 0 {
		return nil, nil
	}
	return []nativeapi.Tool{{FunctionDeclarations: decls}}, nil
}

func chatToolConfig(choice *ToolChoice) *nativeapi.ToolConfig {
	switch choice.Mode {
	case "auto":
		return &nativeapi.ToolConfig{FunctionCallingConfig: &nativeapi.FunctionCallingConfig{Mode: nativeapi.FuncCallModeAuto}}
	case "any":
		return &nativeapi.ToolConfig{FunctionCallingConfig: &nativeapi.FunctionCallingConfig{Mode: nativeapi.FuncCallModeAny}}
	case "none":
		return &nativeapi.ToolConfig{FunctionCallingConfig: &nativeapi.FunctionCallingConfig{Mode: nativeapi.FuncCallModeNone}}
	case "function":
		return &nativeapi.ToolConfig{FunctionCallingConfig: &nativeapi.FunctionCallingConfig{
			Mode:                 nativeapi.FuncCallModeAny,
			AllowedFunctionNames: []string{choice.Function},
		}}
	default:
		return nil
	}
}

// EmbedItemToNative builds one native EmbedRequest for a single alt-embed
// input string, per spec.md §4.5.
func EmbedItemToNative(input string, dimensions *int) *nativeapi.EmbedRequest {
	req := &nativeapi.EmbedRequest{Content: nativeapi.Content{Parts: []nativeapi.Part{nativeapi.TextPart(input)}}}
	if dimensions != nil {
		req.Config = &nativeapi.EmbedRequestConfig{OutputDimensionality: dimensions}
	}
	return req
}

// ImageRequestIsImagen reports whether the model name addresses the
// Imagen family (case-insensitive substring match, spec.md §4.5).
func ImageRequestIsImagen(modelName string) bool {
	return strings.Contains(strings.ToLower(modelName), imagenModelMarker)
}

// ImageToNativeImagen builds the native Imagen request for an alt-image
// call routed to the Imagen family.
func ImageToNativeImagen(req *ImageRequest) *nativeapi.ImageGenRequest {
	n := 1
	if req.N != nil {
		n = *req.N
	}
	return &nativeapi.ImageGenRequest{
		Prompt: req.Prompt,
		Config: &nativeapi.ImageGenRequestConfig{NumberOfImages: n},
	}
}

// ImageToNativeGenerate builds the native generateContent request for an
// alt-image call routed through the generation model (non-Imagen).
func ImageToNativeGenerate(req *ImageRequest) (*nativeapi.GenerateRequest, error) {
	if req.ResponseFormat == "url" {
		return nil, errors.New("response_format \"url\" is not supported")
	}
	n := 1
	if req.N != nil {
		n = *req.N
	}
	return &nativeapi.GenerateRequest{
		Contents: []nativeapi.Content{{
			Role:  nativeapi.RoleUser,
			Parts: []nativeapi.Part{nativeapi.TextPart(req.Prompt)},
		}},
		GenerationConfig: &nativeapi.GenerationConfig{
			ResponseModalities: []string{"IMAGE", "TEXT"},
			CandidateCount:     &n,
		},
		SafetySettings: nativeapi.AllCategoriesOff,
	}, nil
}
