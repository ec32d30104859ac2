package gateway

import (
	"github.com/Laisky/errors/v2"
	"github.com/jinzhu/copier"

	"github.com/vaultgate/gemini-gateway/nativeapi"
)

// TopLevelAliases carries the native-request top-level alias fields
// NativeRouter merges on top of body.config/body.generationConfig, per
// spec.md §4.4.
type TopLevelAliases struct {
	Temperature        *float64
	MaxOutputTokens    *int
	TopP               *float64
	TopK               *float64
	CandidateCount     *int
	StopSequences      []string
	ResponseMimeType   string
	ResponseSchema     any
	ResponseModalities []string
	SystemInstruction  *nativeapi.Content
}

// MergeGenerationConfig builds the single effective GenerationConfig by
// merging, in increasing precedence, bodyConfig < bodyGenerationConfig <
// aliases. It does not touch safetySettings: BuildGenerateRequest sets the
// fixed all-off policy on the request itself. This is the EffectiveConfig struct spec.md §9's Design Notes call for in
// place of the source's dynamic property-copying.
func MergeGenerationConfig(bodyConfig, bodyGenerationConfig *nativeapi.GenerationConfig, aliases TopLevelAliases) (*nativeapi.GenerationConfig, error) {
	out := &nativeapi.GenerationConfig{}

	for _, layer := range []*nativeapi.GenerationConfig{bodyConfig, bodyGenerationConfig} {
		if layer == nil {
			continue
		}
		if err := copier.CopyWithOption(out, layer, copier.Option{IgnoreEmpty: true}); err != nil {
			return nil, errors.Wrap(err, "merge generation config layer")
		}
	}

	if aliases.Temperature != nil {
		out.Temperature = aliases.Temperature
	}
	if aliases.MaxOutputTokens != nil {
		out.MaxOutputTokens = aliases.MaxOutputTokens
	}
	if aliases.TopP != nil {
		out.TopP = aliases.TopP
	}
	if aliases.TopK != nil {
		out.TopK = aliases.TopK
	}
	if aliases.CandidateCount != nil {
		out.CandidateCount = aliases.CandidateCount
	}
	if len(aliases.StopSequences) > 0 {
		out.StopSequences = aliases.StopSequences
	}
	if aliases.ResponseMimeType != "" {
		out.ResponseMimeType = aliases.ResponseMimeType
	}
	if aliases.ResponseSchema != nil {
		out.ResponseSchema = aliases.ResponseSchema
	}
	if len(aliases.ResponseModalities) > 0 {
		out.ResponseModalities = aliases.ResponseModalities
	}
	if aliases.SystemInstruction != nil {
		out.SystemInstruction = aliases.SystemInstruction
	}

	return out, nil
}
