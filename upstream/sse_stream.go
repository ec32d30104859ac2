package upstream

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"strings"

	"github.com/Laisky/errors/v2"

	"github.com/vaultgate/gemini-gateway/nativeapi"
)

const (
	ssePrefix       = "data: "
	ssePrefixLength = len(ssePrefix)
	sseDone         = "[DONE]"
)

// sseStreamHandle scans an upstream text/event-stream body line by line and
// decodes each "data: {...}" line into a native StreamChunk, grounded on
// the teacher's scanner-based StreamHandler.
type sseStreamHandle struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
}

func newSSEStreamHandle(body io.ReadCloser) StreamHandle {
	scanner := bufio.NewScanner(body)
	buf := make([]byte, 1024*1024)
	scanner.Buffer(buf, len(buf))
	scanner.Split(bufio.ScanLines)
	return &sseStreamHandle{body: body, scanner: scanner}
}

func normalizeDataLine(line string) string {
	if strings.HasPrefix(line, "data:") {
		return "data: " + strings.TrimLeft(line[len("data:"):], " ")
	}
	return line
}

func (h *sseStreamHandle) Next(ctx context.Context) (*nativeapi.StreamChunk, error) {
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if !h.scanner.Scan() {
			if err := h.scanner.Err(); err != nil {
				return nil, errors.Wrap(err, "scan upstream sse stream")
			}
			return nil, io.EOF
		}

		line := normalizeDataLine(h.scanner.Text())
		if len(line) < ssePrefixLength {
			continue
		}
		payload := line[ssePrefixLength:]
		if payload == sseDone {
			return nil, io.EOF
		}

		var chunk nativeapi.StreamChunk
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			return nil, errors.Wrap(err, "decode upstream sse chunk")
		}
		return &chunk, nil
	}
}

func (h *sseStreamHandle) Close() error {
	return h.body.Close()
}
