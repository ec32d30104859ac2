package gateway

import (
	"context"
	"encoding/json"

	"github.com/vaultgate/gemini-gateway/internal/gwerr"
	"github.com/vaultgate/gemini-gateway/nativeapi"
	"github.com/vaultgate/gemini-gateway/upstream"
)

// NativeRequestEnvelope is the raw native request body, decoded just
// enough to extract the merge-precedence layers NativeRouter needs
// before forwarding, per spec.md §4.4.
type NativeRequestEnvelope struct {
	Contents          []nativeapi.Content        `json:"contents"`
	SystemInstruction *nativeapi.Content         `json:"systemInstruction,omitempty"`
	Config            *nativeapi.GenerationConfig `json:"config,omitempty"`
	GenerationConfig  *nativeapi.GenerationConfig `json:"generationConfig,omitempty"`
	Tools             []nativeapi.Tool           `json:"tools,omitempty"`
	ToolConfig        *nativeapi.ToolConfig      `json:"toolConfig,omitempty"`

	Temperature        *float64           `json:"temperature,omitempty"`
	MaxOutputTokens    *int               `json:"maxOutputTokens,omitempty"`
	TopP               *float64           `json:"topP,omitempty"`
	TopK               *float64           `json:"topK,omitempty"`
	CandidateCount     *int               `json:"candidateCount,omitempty"`
	StopSequences      []string           `json:"stopSequences,omitempty"`
	ResponseMimeType   string             `json:"responseMimeType,omitempty"`
	ResponseSchema     any                `json:"responseSchema,omitempty"`
	ResponseModalities []string           `json:"responseModalities,omitempty"`
}

// BuildGenerateRequest decodes a raw native-action request body and
// assembles the effective GenerateRequest per spec.md §4.4's merge and
// safety-override rules.
func BuildGenerateRequest(body []byte) (*nativeapi.GenerateRequest, error) {
	var env NativeRequestEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, gwerr.ClientMalformed(400, "invalid JSON body")
	}

	cfg, err := MergeGenerationConfig(env.Config, env.GenerationConfig, TopLevelAliases{
		Temperature:        env.Temperature,
		MaxOutputTokens:    env.MaxOutputTokens,
		TopP:               env.TopP,
		TopK:               env.TopK,
		CandidateCount:     env.CandidateCount,
		StopSequences:      env.StopSequences,
		ResponseMimeType:   env.ResponseMimeType,
		ResponseSchema:     env.ResponseSchema,
		ResponseModalities: env.ResponseModalities,
		SystemInstruction:  env.SystemInstruction,
	})
	if err != nil {
		return nil, err
	}

	return &nativeapi.GenerateRequest{
		Contents:          env.Contents,
		SystemInstruction: env.SystemInstruction,
		GenerationConfig:  cfg,
		SafetySettings:    nativeapi.AllCategoriesOff,
		Tools:             env.Tools,
		ToolConfig:        env.ToolConfig,
	}, nil
}

// ValidateGenerateImageWithGemini enforces spec.md §4.4's requirement
// that a generateImageWithGemini request explicitly ask for the IMAGE
// modality.
func ValidateGenerateImageWithGemini(req *nativeapi.GenerateRequest) error {
	if req.GenerationConfig == nil {
		return gwerr.ClientMalformed(400, "responseModalities must include IMAGE")
	}
	for _, m := range req.GenerationConfig.ResponseModalities {
		if m == "IMAGE" {
			return nil
		}
	}
	return gwerr.ClientMalformed(400, "responseModalities must include IMAGE")
}

// ImagenRequestBody is the restricted shape NativeRouter accepts for
// generateImageWithImagen, per spec.md §4.4 ("drop unspecified config
// fields").
type ImagenRequestBody struct {
	Prompt string `json:"prompt"`
	Config struct {
		NumberOfImages   *int   `json:"numberOfImages,omitempty"`
		AspectRatio      string `json:"aspectRatio,omitempty"`
		PersonGeneration string `json:"personGeneration,omitempty"`
	} `json:"config,omitempty"`
}

// BuildImagenRequest decodes and narrows a native Imagen request body
// to the accepted shape.
func BuildImagenRequest(body []byte) (*nativeapi.ImageGenRequest, error) {
	var in ImagenRequestBody
	if err := json.Unmarshal(body, &in); err != nil {
		return nil, gwerr.ClientMalformed(400, "invalid JSON body")
	}
	out := &nativeapi.ImageGenRequest{Prompt: in.Prompt}
	if in.Config.NumberOfImages != nil || in.Config.AspectRatio != "" || in.Config.PersonGeneration != "" {
		out.Config = &nativeapi.ImageGenRequestConfig{
			AspectRatio:      in.Config.AspectRatio,
			PersonGeneration: in.Config.PersonGeneration,
		}
		if in.Config.NumberOfImages != nil {
			out.Config.NumberOfImages = *in.Config.NumberOfImages
		} else {
			out.Config.NumberOfImages = 1
		}
	}
	return out, nil
}

// ForwardListModels and ForwardGetModel pass native listing/metadata
// calls straight through to the upstream client and return the body
// verbatim, per spec.md §4.4.
func ForwardListModels(ctx context.Context, client upstream.Client, credential string) (*upstream.Response, error) {
	return client.ListModels(ctx, credential)
}

func ForwardGetModel(ctx context.Context, client upstream.Client, credential, model string) (*upstream.Response, error) {
	return client.GetModel(ctx, credential, model)
}
