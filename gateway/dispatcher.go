package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"io"

	gmw "github.com/Laisky/gin-middlewares/v6"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"

	"github.com/vaultgate/gemini-gateway/altapi"
	"github.com/vaultgate/gemini-gateway/configstore"
	"github.com/vaultgate/gemini-gateway/internal/gwerr"
	"github.com/vaultgate/gemini-gateway/monitor"
	"github.com/vaultgate/gemini-gateway/upstream"
)

// Deps bundles the collaborators Dispatcher needs per request.
type Deps struct {
	Store  configstore.Store
	Client upstream.Client
}

// PreparedRequest is the result of Dispatcher's body-read and
// classification steps, common to every handler, per spec.md §4.7
// steps 2-3.
type PreparedRequest struct {
	Body           []byte
	Classification Classification
	Presented      string
	Model          string
}

// Prepare reads the body once, keeps it available for downstream
// re-reads, extracts the presented credential, and classifies the
// request, per spec.md §4.7 steps 2-3. AuthGate itself (step 3's mode
// decision) is run separately once a Store is available, via
// Authenticate.
func Prepare(c *gin.Context) (*PreparedRequest, error) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return nil, gwerr.ClientMalformed(400, "failed to read request body")
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(body))

	presented := PresentedKey(c.GetHeader("Authorization"), c.GetHeader("x-goog-api-key"))
	path := c.Request.URL.Path
	class := Classify(path)

	var model string
	if class == ClassNative {
		model = NativeModelFromPath(path)
	} else {
		model = modelFromBody(body)
	}

	return &PreparedRequest{Body: body, Classification: class, Presented: presented, Model: model}, nil
}

func modelFromBody(body []byte) string {
	var probe struct {
		Model string `json:"model"`
	}
	_ = json.Unmarshal(body, &probe)
	return probe.Model
}

// WriteError packages any error into the `{error:{message,type,code}}`
// envelope and writes it to the response, per spec.md §4.7 step 5.
func WriteError(c *gin.Context, err error) {
	status, envelope := gwerr.ToEnvelope(err)
	if lg := gmw.GetLogger(c); lg != nil {
		rc := GetRequestContext(c)
		lg.Warn("request failed",
			zap.Int("status", status),
			zap.Error(err),
			zap.String("classification", string(rc.Classification)),
			zap.String("auth_mode", string(rc.AuthMode)),
			zap.String("model", rc.Model),
		)
	}
	c.AbortWithStatusJSON(status, envelope)
}

// RunPoolOrPassthrough executes the retrying call pipeline (KeySelector)
// in pool mode, or a single direct invocation in passthrough mode whose
// failure is returned as an UpstreamTransient error carrying the
// upstream status and body, per spec.md §4.2/§4.3/§4.7 step 4.
func RunPoolOrPassthrough(ctx context.Context, deps Deps, mode AuthMode, presented, model string, invoke Invoke) (Attempt, error) {
	if mode == ModePassthrough {
		attempt := invoke(ctx, presented)
		if !attempt.succeeded() {
			status := attempt.StatusCode
			if status < 400 {
				status = 502
			}
			return attempt, gwerr.UpstreamTransient(status, string(attempt.Body), poolExhaustedCause(&attempt))
		}
		return attempt, nil
	}
	return Dispatch(ctx, deps.Store, model, invoke)
}

// SetEventStreamHeaders sets the SSE transport headers spec.md §4.4/§4.6
// require for both native and alt-chat streaming responses.
func SetEventStreamHeaders(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream; charset=utf-8")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Writer.Flush()
}

// StreamAltChat drains a StreamHandle through altapi's StreamTransformer
// and writes each framed SSE event as it's produced, per spec.md §4.6.
func StreamAltChat(ctx context.Context, c *gin.Context, handle upstream.StreamHandle, transformer *altapi.StreamTransformer) error {
	defer handle.Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		chunk, err := handle.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		for _, altChunk := range transformer.Next(chunk) {
			if werr := writeSSE(c, altChunk); werr != nil {
				return werr
			}
			monitor.StreamChunks.WithLabelValues("alt-chat").Inc()
		}
	}

	for _, altChunk := range transformer.Flush() {
		if werr := writeSSE(c, altChunk); werr != nil {
			return werr
		}
		monitor.StreamChunks.WithLabelValues("alt-chat").Inc()
	}
	if _, werr := c.Writer.Write(altapi.DoneEvent); werr != nil {
		return werr
	}
	c.Writer.Flush()
	return nil
}

func writeSSE(c *gin.Context, payload any) error {
	framed, err := altapi.FormatSSE(payload)
	if err != nil {
		return err
	}
	if _, err := c.Writer.Write(framed); err != nil {
		return err
	}
	c.Writer.Flush()
	return nil
}

// StreamNative drains a StreamHandle and re-emits each native chunk
// verbatim as `data: <json>\n\n`, with no terminator (spec.md §4.4/§6).
func StreamNative(ctx context.Context, c *gin.Context, handle upstream.StreamHandle) error {
	defer handle.Close()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		chunk, err := handle.Next(ctx)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if werr := writeSSE(c, chunk); werr != nil {
			return werr
		}
		monitor.StreamChunks.WithLabelValues("native").Inc()
	}
}
