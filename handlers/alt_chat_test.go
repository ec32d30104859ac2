package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vaultgate/gemini-gateway/altapi"
	"github.com/vaultgate/gemini-gateway/gateway"
	"github.com/vaultgate/gemini-gateway/nativeapi"
)

func TestAltChatCompletionsNonStreaming(t *testing.T) {
	client := &fakeClient{
		generateResp: &nativeapi.GenerateResponse{
			Candidates: []nativeapi.Candidate{{
				Content:      nativeapi.Content{Role: nativeapi.RoleModel, Parts: []nativeapi.Part{nativeapi.TextPart("hi there")}},
				FinishReason: nativeapi.FinishStop,
			}},
		},
	}
	h := New(gateway.Deps{Store: &fakeStore{}, Client: client})

	body := `{"model":"gemini-2.5-flash","messages":[{"role":"user","content":"hello"}]}`
	c, w := newTestContext(http.MethodPost, "/api/v1/chat/completions", body)
	h.AltChatCompletions(c)

	require.Equal(t, http.StatusOK, w.Code)
	var out altapi.ChatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.Len(t, out.Choices, 1)
	require.Equal(t, "hi there", out.Choices[0].Message.Content.Text)
}

func TestAltChatCompletionsMissingRequiredFieldIsRejected(t *testing.T) {
	client := &fakeClient{}
	h := New(gateway.Deps{Store: &fakeStore{}, Client: client})

	c, w := newTestContext(http.MethodPost, "/api/v1/chat/completions", `{"messages":[]}`)
	h.AltChatCompletions(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

// stubStreamHandle replays a fixed sequence of chunks then io.EOF.
type stubStreamHandle struct {
	chunks []*nativeapi.StreamChunk
	idx    int
	closed bool
}

func (s *stubStreamHandle) Next(ctx context.Context) (*nativeapi.StreamChunk, error) {
	if s.idx >= len(s.chunks) {
		return nil, io.EOF
	}
	chunk := s.chunks[s.idx]
	s.idx++
	return chunk, nil
}

func (s *stubStreamHandle) Close() error {
	s.closed = true
	return nil
}

func TestAltChatCompletionsStreaming(t *testing.T) {
	handle := &stubStreamHandle{chunks: []*nativeapi.StreamChunk{
		{Candidates: []nativeapi.Candidate{{
			Index:   0,
			Content: nativeapi.Content{Parts: []nativeapi.Part{nativeapi.TextPart("partial")}},
		}}},
		{Candidates: []nativeapi.Candidate{{Index: 0, FinishReason: nativeapi.FinishStop}}},
	}}
	client := &fakeClient{streamHandle: handle}
	h := New(gateway.Deps{Store: &fakeStore{}, Client: client})

	body := `{"model":"gemini-2.5-flash","messages":[{"role":"user","content":"hello"}],"stream":true}`
	c, w := newTestContext(http.MethodPost, "/api/v1/chat/completions", body)
	h.AltChatCompletions(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, handle.closed, "stream handle must be closed on completion")
	require.Contains(t, w.Body.String(), "data: ")
	require.True(t, strings.HasSuffix(w.Body.String(), "data: [DONE]\n\n"))
}
