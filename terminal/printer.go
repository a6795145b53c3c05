package terminal

import (
	"fmt"
	"io"

	"github.com/fwojciec/relay"
)

// Printer writes loop events to a terminal.
type Printer struct {
	out      io.Writer
	styles   Styles
	renderer *Renderer
}

// NewPrinter creates a Printer. A nil renderer prints final answers as
// plain text.
func NewPrinter(out io.Writer, styles Styles, renderer *Renderer) *Printer {
	return &Printer{out: out, styles: styles, renderer: renderer}
}

// Handle prints one event. It has the signature of an agent event handler.
func (p *Printer) Handle(e relay.Event) {
	switch e := e.(type) {
	case relay.EventAssistantText:
		p.Assistant(e.Text)
	case relay.EventToolResult:
		fmt.Fprintf(p.out, "%s %s\n", p.styles.Tool.Render("[tool:"+e.Tool+"]"), e.Display)
	case relay.EventFinal:
		if p.renderer == nil {
			p.Assistant(e.Summary)
			return
		}
		fmt.Fprintf(p.out, "%s\n%s\n", p.styles.Assistant.Render("assistant>"), p.renderer.Render(e.Summary))
	case relay.EventNotice:
		p.Notice(e.Text)
	}
}

// Assistant prints text from the model.
func (p *Printer) Assistant(text string) {
	fmt.Fprintf(p.out, "%s %s\n", p.styles.Assistant.Render("assistant>"), text)
}

// Notice prints a status line such as a declined call.
func (p *Printer) Notice(text string) {
	fmt.Fprintln(p.out, p.styles.Error.Render(text))
}

// Line prints an unstyled line.
func (p *Printer) Line(text string) {
	fmt.Fprintln(p.out, text)
}

// Header prints a banner line in the success style.
func (p *Printer) Header(text string) {
	fmt.Fprintln(p.out, p.styles.Success.Render(text))
}
