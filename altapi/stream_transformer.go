package altapi

import (
	"encoding/json"
	"sort"
	"strings"
	"sync"

	"github.com/vaultgate/gemini-gateway/nativeapi"
)

// choiceState is one of the three states a streamed choice index moves
// through, per spec.md §4.6.
type choiceState int

const (
	stateAwaitingFirst choiceState = iota
	stateOpen
	stateClosed
)

type choiceTracker struct {
	state            choiceState
	everEmitted      bool
	recordedFinish   string
}

// StreamTransformer re-shapes a sequence of native streaming chunks into
// alt-format SSE chunks, per spec.md §4.6. One instance serves exactly
// one streaming response and is never shared across requests
// (StreamTransformerState, spec.md §3).
type StreamTransformer struct {
	mu           sync.Mutex
	id           string
	created      int64
	model        string
	includeUsage bool

	choices      map[int]*choiceTracker
	order        []int
	pendingUsage *Usage
	usageDone    bool
}

// NewStreamTransformer constructs a transformer for one streaming
// response. includeUsage is forced to true by the caller for alt-chat
// per the Open Question decision in spec.md §9 (the gateway always
// requests a trailing usage frame regardless of caller input).
func NewStreamTransformer(id string, created int64, model string, includeUsage bool) *StreamTransformer {
	return &StreamTransformer{
		id:           id,
		created:      created,
		model:        model,
		includeUsage: includeUsage,
		choices:      make(map[int]*choiceTracker),
	}
}

func (t *StreamTransformer) trackerFor(i int) *choiceTracker {
	tr, ok := t.choices[i]
	if !ok {
		tr = &choiceTracker{state: stateAwaitingFirst}
		t.choices[i] = tr
		t.order = append(t.order, i)
	}
	return tr
}

func (t *StreamTransformer) newChunk() *Chunk {
	return &Chunk{ID: t.id, Object: "chat.completion.chunk", Created: t.created, Model: t.model}
}

// Next consumes one native chunk and returns zero or more alt chunks to
// emit, in order.
func (t *StreamTransformer) Next(native *nativeapi.StreamChunk) []*Chunk {
	t.mu.Lock()
	defer t.mu.Unlock()

	var emitted []*Chunk

	if len(native.Candidates) == 0 {
		if native.PromptFeedback != nil && native.PromptFeedback.BlockReason != "" {
			tr := t.trackerFor(0)
			if tr.state != stateClosed {
				finish := "content_filter"
				c := t.newChunk()
				c.Choices = []StreamChoice{{Index: 0, Delta: Delta{}, FinishReason: &finish}}
				emitted = append(emitted, c)
				tr.state = stateClosed
				tr.everEmitted = true
			}
		}
		if native.UsageMetadata != nil {
			t.pendingUsage = usageFromNative(native.UsageMetadata)
		}
		return emitted
	}

	for _, cand := range native.Candidates {
		tr := t.trackerFor(cand.Index)
		if tr.state == stateClosed {
			continue
		}

		text, toolCalls := deltaFromContent(cand.Content)
		hasContent := text != "" || len(toolCalls) > 0
		hasFinish := cand.FinishReason != ""

		if tr.state == stateAwaitingFirst {
			if !hasContent {
				if hasFinish {
					tr.recordedFinish = MapFinishReason(cand.FinishReason, false)
					tr.state = stateClosed
					if native.UsageMetadata != nil {
						t.pendingUsage = usageFromNative(native.UsageMetadata)
					}
				}
				continue
			}
			preamble := t.newChunk()
			preamble.Choices = []StreamChoice{{Index: cand.Index, Delta: Delta{Role: "assistant"}, FinishReason: nil}}
			emitted = append(emitted, preamble)
			tr.state = stateOpen
			tr.everEmitted = true
		}

		chunk := t.newChunk()
		delta := Delta{}
		if text != "" {
			delta.Content = &text
		}
		if len(toolCalls) > 0 {
			delta.ToolCalls = toolCalls
		}
		sc := StreamChoice{Index: cand.Index, Delta: delta}
		if hasFinish {
			mapped := MapFinishReason(cand.FinishReason, hasToolCall(cand.Content))
			sc.FinishReason = &mapped
			tr.state = stateClosed
			if native.UsageMetadata != nil {
				chunk.Usage = usageFromNative(native.UsageMetadata)
				t.usageDone = true
			}
		}
		tr.everEmitted = true
		chunk.Choices = []StreamChoice{sc}
		emitted = append(emitted, chunk)
	}

	if native.UsageMetadata != nil && !t.usageDone {
		t.pendingUsage = usageFromNative(native.UsageMetadata)
	}

	return emitted
}

func hasToolCall(c nativeapi.Content) bool {
	for _, p := range c.Parts {
		if p.FunctionCall != nil {
			return true
		}
	}
	return false
}

func deltaFromContent(c nativeapi.Content) (string, []ToolCall) {
	var textBuilder strings.Builder
	var toolCalls []ToolCall
	for _, part := range c.Parts {
		if part.FunctionCall != nil {
			argsJSON, _ := json.Marshal(part.FunctionCall.Args)
			toolCalls = append(toolCalls, ToolCall{
				ID:   randomCallID(),
				Type: "function",
				Function: ToolCallFunction{
					Name:      part.FunctionCall.Name,
					Arguments: string(argsJSON),
				},
			})
			continue
		}
		textBuilder.WriteString(part.Text)
	}
	return textBuilder.String(), toolCalls
}

// Flush emits the trailing chunks once the native stream is exhausted:
// synthetic closes for any choice that reached CLOSED without ever
// emitting content, then the trailing usage-only chunk if requested and
// still pending, per spec.md §4.6.
func (t *StreamTransformer) Flush() []*Chunk {
	t.mu.Lock()
	defer t.mu.Unlock()

	var emitted []*Chunk

	order := append([]int(nil), t.order...)
	sort.Ints(order)
	for _, i := range order {
		tr := t.choices[i]
		if tr.state == stateClosed && !tr.everEmitted {
			c := t.newChunk()
			finish := tr.recordedFinish
			c.Choices = []StreamChoice{{Index: i, Delta: Delta{Role: "assistant"}, FinishReason: &finish}}
			emitted = append(emitted, c)
			tr.everEmitted = true
		}
	}

	if t.includeUsage && t.pendingUsage != nil && !t.usageDone {
		c := t.newChunk()
		c.Choices = []StreamChoice{}
		c.Usage = t.pendingUsage
		emitted = append(emitted, c)
		t.usageDone = true
	}

	return emitted
}
