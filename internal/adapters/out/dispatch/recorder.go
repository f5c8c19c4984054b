// internal/adapters/out/dispatch/recorder.go
package dispatch

import (
	"context"
	"strings"
	"sync"
)

// Target says which browsing context a dispatch is aimed at.
type Target string

const (
	TargetNew     Target = "new"
	TargetCurrent Target = "current"
)

// Dispatch is one recorded browsing-context instruction.
type Dispatch struct {
	URL    string `json:"url"`
	Target Target `json:"target"`
}

// Recorder implements CheckoutUsecase's LinkOpener port for the HTTP
// transport. The server cannot open browser contexts itself; it records the
// instruction per session and the handler relays it to the front-end, which
// performs the actual open/navigate.
//
// OpenNewContext always reports success here; a genuinely blocked popup is
// detected client-side and exercised through the engine's fallback in tests.
type Recorder struct {
	mu   sync.Mutex
	last map[string]Dispatch
}

func NewRecorder() *Recorder {
	return &Recorder{last: map[string]Dispatch{}}
}

func (r *Recorder) OpenNewContext(ctx context.Context, sessionID, url string) (bool, error) {
	r.record(sessionID, Dispatch{URL: url, Target: TargetNew})
	return true, nil
}

func (r *Recorder) NavigateCurrent(ctx context.Context, sessionID, url string) error {
	r.record(sessionID, Dispatch{URL: url, Target: TargetCurrent})
	return nil
}

// Take returns and clears the pending dispatch for the session.
func (r *Recorder) Take(sessionID string) (Dispatch, bool) {
	sid := strings.TrimSpace(sessionID)

	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.last[sid]
	if ok {
		delete(r.last, sid)
	}
	return d, ok
}

func (r *Recorder) record(sessionID string, d Dispatch) {
	sid := strings.TrimSpace(sessionID)
	if sid == "" || strings.TrimSpace(d.URL) == "" {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.last[sid] = d
}
