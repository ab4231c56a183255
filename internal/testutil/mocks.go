package testutil

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
)

// MockClient simulates a connected websocket client
type MockClient struct {
	IDVal    string
	Open     bool
	Messages []string // raw payloads, JSON-encoded
	Mu       sync.Mutex
}

func NewMockClient(id string) *MockClient {
	return &MockClient{IDVal: id, Open: true}
}

func (m *MockClient) ID() string { return m.IDVal }

func (m *MockClient) IsOpen() bool {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	return m.Open
}

func (m *MockClient) Close() {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	m.Open = false
}

func (m *MockClient) SendJSON(v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	m.SendBytes(b)
}

func (m *MockClient) SendBytes(b []byte) {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	m.Messages = append(m.Messages, string(b))
}

func (m *MockClient) Received() []string {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	out := make([]string, len(m.Messages))
	copy(out, m.Messages)
	return out
}

// MockFetcher simulates the upstream quote source
type MockFetcher struct {
	Prices map[string]float64 // keyed by suffixed ticker
	Fails  map[string]error
	Calls  map[string]int
	Mu     sync.Mutex
}

func NewMockFetcher() *MockFetcher {
	return &MockFetcher{
		Prices: make(map[string]float64),
		Fails:  make(map[string]error),
		Calls:  make(map[string]int),
	}
}

func (m *MockFetcher) Suffix(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if strings.HasSuffix(s, ".NS") {
		return s
	}
	return s + ".NS"
}

func (m *MockFetcher) Quote(ctx context.Context, ticker string) (float64, error) {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	m.Calls[ticker]++
	if err, ok := m.Fails[ticker]; ok {
		return 0, err
	}
	return m.Prices[ticker], nil
}

func (m *MockFetcher) CallCount(ticker string) int {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	return m.Calls[ticker]
}

// MockWarmer records which symbols the hub asked to warm
type MockWarmer struct {
	Warmed map[string]int
	Mu     sync.Mutex
}

func NewMockWarmer() *MockWarmer {
	return &MockWarmer{Warmed: make(map[string]int)}
}

func (m *MockWarmer) EnsureSymbols(ctx context.Context, symbols []string) {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	for _, s := range symbols {
		m.Warmed[s]++
	}
}

func (m *MockWarmer) WarmCount(symbol string) int {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	return m.Warmed[symbol]
}
