package gateway

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vaultgate/gemini-gateway/nativeapi"
)

func ptrFloat(f float64) *float64 { return &f }
func ptrInt(n int) *int           { return &n }

func TestMergeGenerationConfigLayering(t *testing.T) {
	bodyConfig := &nativeapi.GenerationConfig{Temperature: ptrFloat(0.5), TopP: ptrFloat(0.9)}
	bodyGenerationConfig := &nativeapi.GenerationConfig{Temperature: ptrFloat(0.7)}

	out, err := MergeGenerationConfig(bodyConfig, bodyGenerationConfig, TopLevelAliases{})
	require.NoError(t, err)

	require.Equal(t, 0.7, *out.Temperature, "generationConfig layer should win over config layer")
	require.Equal(t, 0.9, *out.TopP, "fields untouched by the higher layer survive from the lower layer")
}

func TestMergeGenerationConfigAliasesWinOverBody(t *testing.T) {
	bodyConfig := &nativeapi.GenerationConfig{Temperature: ptrFloat(0.5)}

	out, err := MergeGenerationConfig(bodyConfig, nil, TopLevelAliases{
		Temperature:     ptrFloat(1.2),
		MaxOutputTokens: ptrInt(256),
	})
	require.NoError(t, err)

	require.Equal(t, 1.2, *out.Temperature, "top-level alias has the highest precedence")
	require.Equal(t, 256, *out.MaxOutputTokens)
}

func TestMergeGenerationConfigAllNil(t *testing.T) {
	out, err := MergeGenerationConfig(nil, nil, TopLevelAliases{})
	require.NoError(t, err)
	require.Nil(t, out.Temperature)
}

func TestMergeGenerationConfigResponseModalitiesAlias(t *testing.T) {
	out, err := MergeGenerationConfig(nil, nil, TopLevelAliases{
		ResponseModalities: []string{"IMAGE", "TEXT"},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"IMAGE", "TEXT"}, out.ResponseModalities)
}
