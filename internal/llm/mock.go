package llm

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
)

// MockResponse is a canned response for the MockProvider.
type MockResponse struct {
	Content json.RawMessage
	Usage   Usage
	Err     error

	// Chunks are the fragments Stream delivers. When empty, Stream
	// delivers Content as a single fragment. Err, if set, is returned
	// after the chunks so partial streams can be simulated.
	Chunks []string
}

// MockProvider is a deterministic Provider for testing.
// It returns canned responses in FIFO order and records all requests.
type MockProvider struct {
	mu        sync.Mutex
	responses []MockResponse
	Calls     []Request

	// Fallback answers when the queue is empty. Nil means
	// ErrProviderUnavailable.
	Fallback func(Request) MockResponse
}

// NewMockProvider creates a MockProvider with the given canned responses.
func NewMockProvider(responses ...MockResponse) *MockProvider {
	return &MockProvider{responses: responses}
}

// NewOfflineProvider returns a MockProvider that answers every chat with a
// short canned reply. Structured requests fail so callers exercise their
// fallbacks.
func NewOfflineProvider() *MockProvider {
	return &MockProvider{
		Fallback: func(req Request) MockResponse {
			if req.Schema != nil {
				return MockResponse{Err: &ErrProviderUnavailable{}}
			}
			last := ""
			if n := len(req.Messages); n > 0 {
				last = req.Messages[n-1].Content
			}
			reply := "I'm in offline mode right now, but I heard you say: " + last
			return MockResponse{Chunks: strings.SplitAfter(reply, " ")}
		},
	}
}

func (m *MockProvider) next(req Request) (MockResponse, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, req)

	if len(m.responses) == 0 {
		if m.Fallback != nil {
			return m.Fallback(req), true
		}
		return MockResponse{}, false
	}

	resp := m.responses[0]
	m.responses = m.responses[1:]
	return resp, true
}

// Generate returns the next canned response or ErrProviderUnavailable if
// the queue is empty.
func (m *MockProvider) Generate(_ context.Context, req Request) (*Response, error) {
	resp, ok := m.next(req)
	if !ok {
		return nil, &ErrProviderUnavailable{Err: nil}
	}
	if resp.Err != nil {
		return nil, resp.Err
	}

	content := resp.Content
	if content == nil && len(resp.Chunks) > 0 {
		content = json.RawMessage(strings.Join(resp.Chunks, ""))
	}
	if req.Schema != nil {
		clean, err := validateResponse(req.Schema, content)
		if err != nil {
			return nil, err
		}
		content = clean
	}

	return &Response{
		Content:    content,
		Usage:      resp.Usage,
		Model:      m.modelFor(req),
		StopReason: "end",
	}, nil
}

// Stream delivers the next canned response fragment by fragment.
func (m *MockProvider) Stream(ctx context.Context, req Request, onDelta DeltaFunc) (*Response, error) {
	resp, ok := m.next(req)
	if !ok {
		return nil, &ErrProviderUnavailable{Err: nil}
	}

	chunks := resp.Chunks
	if len(chunks) == 0 && len(resp.Content) > 0 {
		chunks = []string{string(resp.Content)}
	}
	if len(chunks) == 0 && resp.Err != nil {
		return nil, resp.Err
	}

	var text strings.Builder
	for _, c := range chunks {
		if err := ctx.Err(); err != nil {
			return partialResponse(text.String(), m.modelFor(req)), err
		}
		text.WriteString(c)
		if err := onDelta(c); err != nil {
			return partialResponse(text.String(), m.modelFor(req)), err
		}
	}
	if resp.Err != nil {
		return partialResponse(text.String(), m.modelFor(req)), resp.Err
	}

	return &Response{
		Content:    json.RawMessage(text.String()),
		Usage:      resp.Usage,
		Model:      m.modelFor(req),
		StopReason: "end",
	}, nil
}

// ModelID returns "mock".
func (m *MockProvider) ModelID() string {
	return "mock"
}

func (m *MockProvider) modelFor(req Request) string {
	if req.Model != "" {
		return req.Model
	}
	return "mock"
}

// AddResponse appends a canned response to the queue.
func (m *MockProvider) AddResponse(resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, resp)
}

// CallCount returns the number of Generate and Stream calls made.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// LastCall returns the most recent request, if any.
func (m *MockProvider) LastCall() (Request, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Calls) == 0 {
		return Request{}, false
	}
	return m.Calls[len(m.Calls)-1], true
}
