package testsupport

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// RecordedRequest is a request observed by a FakeService.
type RecordedRequest struct {
	Method string
	Path   string
	Body   []byte
}

// Decode unmarshals the recorded body into out.
func (r RecordedRequest) Decode(t *testing.T, out any) {
	t.Helper()
	if err := json.Unmarshal(r.Body, out); err != nil {
		t.Fatalf("decode recorded body %q: %v", r.Body, err)
	}
}

// FakeService stands in for a prediction service: GET / answers the health
// probe, POST /predict answers with the configured status and body.
type FakeService struct {
	server *httptest.Server

	mu        sync.Mutex
	healthy   bool
	status    int
	body      any
	gate      chan struct{}
	requests  []RecordedRequest
	cancelled int
}

// FakeOption configures a FakeService.
type FakeOption func(*FakeService)

// WithPrediction sets the status and JSON body returned by POST /predict.
func WithPrediction(status int, body any) FakeOption {
	return func(f *FakeService) {
		f.status = status
		f.body = body
	}
}

// Unhealthy makes GET / answer 503.
func Unhealthy() FakeOption {
	return func(f *FakeService) {
		f.healthy = false
	}
}

// Gated holds every prediction until Release is called or the caller gives
// up on the request.
func Gated() FakeOption {
	return func(f *FakeService) {
		f.gate = make(chan struct{})
	}
}

// NewFakeService starts a fake prediction service that is closed when the
// test ends.
func NewFakeService(t *testing.T, options ...FakeOption) *FakeService {
	t.Helper()

	f := &FakeService{healthy: true, status: http.StatusOK, body: map[string]any{}}
	for _, opt := range options {
		if opt != nil {
			opt(f)
		}
	}
	f.server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(func() {
		f.Release()
		f.server.Close()
	})
	return f
}

// URL returns the base URL of the fake.
func (f *FakeService) URL() string {
	return f.server.URL
}

// Respond replaces the prediction response for subsequent requests.
func (f *FakeService) Respond(status int, body any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status = status
	f.body = body
}

// Release unblocks gated predictions. Calling it twice is harmless.
func (f *FakeService) Release() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.gate == nil {
		return
	}
	select {
	case <-f.gate:
	default:
		close(f.gate)
	}
}

// Requests returns the prediction requests received so far.
func (f *FakeService) Requests() []RecordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]RecordedRequest(nil), f.requests...)
}

// PredictCalls counts prediction requests received so far.
func (f *FakeService) PredictCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

// Cancelled counts gated predictions abandoned by the caller.
func (f *FakeService) Cancelled() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cancelled
}

func (f *FakeService) serve(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/":
		f.mu.Lock()
		healthy := f.healthy
		f.mu.Unlock()
		if !healthy {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	case r.Method == http.MethodPost && r.URL.Path == "/predict":
		f.predict(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (f *FakeService) predict(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	f.mu.Lock()
	f.requests = append(f.requests, RecordedRequest{Method: r.Method, Path: r.URL.Path, Body: body})
	gate := f.gate
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-r.Context().Done():
			f.mu.Lock()
			f.cancelled++
			f.mu.Unlock()
			return
		}
	}

	f.mu.Lock()
	status, payload := f.status, f.body
	f.mu.Unlock()
	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if raw, ok := payload.(string); ok {
		_, _ = io.WriteString(w, raw)
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}
