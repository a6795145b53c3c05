package mock

import (
	"context"
	"fmt"
	"sync"

	"github.com/fwojciec/relay"
)

// Replies returns a Provider that answers each Complete call with the next
// text in order and records every request it receives. Calls past the end
// of texts fail.
func Replies(texts ...string) (*Provider, *Recorder) {
	rec := &Recorder{}
	p := &Provider{
		CompleteFn: func(_ context.Context, req relay.Request) (relay.Reply, error) {
			n := rec.record(req)
			if n >= len(texts) {
				return relay.Reply{}, fmt.Errorf("mock: unexpected request %d", n+1)
			}
			return relay.Reply{Text: texts[n]}, nil
		},
	}
	return p, rec
}

// Recorder keeps copies of the requests a Provider received.
type Recorder struct {
	mu       sync.Mutex
	requests []relay.Request
}

func (r *Recorder) record(req relay.Request) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	req.Messages = append([]relay.Message(nil), req.Messages...)
	r.requests = append(r.requests, req)
	return len(r.requests) - 1
}

// Requests returns the recorded requests in call order.
func (r *Recorder) Requests() []relay.Request {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]relay.Request(nil), r.requests...)
}
