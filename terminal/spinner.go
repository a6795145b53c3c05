package terminal

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/fwojciec/relay"
	"github.com/mattn/go-runewidth"
)

// ThinkingLabel is shown next to the spinner while a chat request is
// outstanding.
const ThinkingLabel = "assistant is thinking"

// Spinner animates a single status line until stopped. Stop erases the line,
// so output printed afterwards starts on a clean row.
type Spinner struct {
	out    io.Writer
	style  Styles
	frames spinner.Spinner
	label  string

	mu    sync.Mutex
	stop  chan struct{}
	done  chan struct{}
	width int
}

// NewSpinner creates a Spinner writing to out.
func NewSpinner(out io.Writer, styles Styles) *Spinner {
	return &Spinner{out: out, style: styles, frames: spinner.Line, label: ThinkingLabel}
}

// Start begins the animation. The first frame is drawn before Start
// returns. Starting a running Spinner does nothing.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop != nil {
		return
	}
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	s.draw(0)
	go s.animate(s.stop, s.done)
}

func (s *Spinner) animate(stop, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(s.frames.FPS)
	defer ticker.Stop()
	for i := 1; ; i++ {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.mu.Lock()
			s.draw(i)
			s.mu.Unlock()
		}
	}
}

// draw writes frame i over the current line. The caller holds mu.
func (s *Spinner) draw(i int) {
	text := s.frames.Frames[i%len(s.frames.Frames)] + " " + s.label
	s.width = runewidth.StringWidth(text)
	fmt.Fprint(s.out, "\r"+s.style.Muted.Render(text))
}

// Stop ends the animation and clears its line. It waits for the animation
// goroutine to exit. Stopping an idle Spinner does nothing.
func (s *Spinner) Stop() {
	s.mu.Lock()
	stop, done := s.stop, s.done
	s.stop, s.done = nil, nil
	s.mu.Unlock()
	if stop == nil {
		return
	}
	close(stop)
	<-done

	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprint(s.out, "\r"+strings.Repeat(" ", s.width)+"\r")
}

// Spinning wraps p so that s runs exactly while a completion is outstanding.
func Spinning(p relay.Provider, s *Spinner) relay.Provider {
	return spinningProvider{provider: p, spinner: s}
}

type spinningProvider struct {
	provider relay.Provider
	spinner  *Spinner
}

func (p spinningProvider) Complete(ctx context.Context, req relay.Request) (relay.Reply, error) {
	p.spinner.Start()
	defer p.spinner.Stop()
	return p.provider.Complete(ctx, req)
}
