package upstream

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type nopCloser struct {
	io.Reader
}

func (nopCloser) Close() error { return nil }

func newTestHandle(body string) StreamHandle {
	return newSSEStreamHandle(nopCloser{strings.NewReader(body)})
}

func TestSSEStreamHandleDecodesChunks(t *testing.T) {
	body := "data: {\"candidates\":[{\"index\":0}]}\n\n" +
		"data: {\"candidates\":[{\"index\":0,\"finishReason\":\"STOP\"}]}\n\n" +
		"data: [DONE]\n\n"

	h := newTestHandle(body)
	ctx := context.Background()

	chunk, err := h.Next(ctx)
	require.NoError(t, err)
	require.Len(t, chunk.Candidates, 1)
	require.Equal(t, 0, chunk.Candidates[0].Index)

	chunk, err = h.Next(ctx)
	require.NoError(t, err)
	require.Equal(t, "STOP", chunk.Candidates[0].FinishReason)

	_, err = h.Next(ctx)
	require.ErrorIs(t, err, io.EOF)

	require.NoError(t, h.Close())
}

func TestSSEStreamHandleEOFWithoutDoneMarker(t *testing.T) {
	h := newTestHandle("data: {\"candidates\":[{\"index\":0}]}\n\n")
	ctx := context.Background()

	_, err := h.Next(ctx)
	require.NoError(t, err)

	_, err = h.Next(ctx)
	require.ErrorIs(t, err, io.EOF)
}

func TestSSEStreamHandleNormalizesColonNoSpace(t *testing.T) {
	h := newTestHandle("data:{\"candidates\":[{\"index\":2}]}\n\n")
	chunk, err := h.Next(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, chunk.Candidates[0].Index)
}

func TestSSEStreamHandleSkipsBlankLines(t *testing.T) {
	body := "\n\ndata: {\"candidates\":[{\"index\":1}]}\n\n"
	h := newTestHandle(body)
	chunk, err := h.Next(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, chunk.Candidates[0].Index)
}
