package terminal

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fwojciec/relay"
)

var _ relay.Confirmer = (*Console)(nil)

type line struct {
	text string
	err  error
}

// Console reads answers line by line from an input stream. Reads honor
// context cancellation: a pending read is abandoned, and the line it
// eventually yields goes to the next reader.
type Console struct {
	in     io.Reader
	out    io.Writer
	styles Styles

	once  sync.Once
	lines chan line
}

// NewConsole creates a Console reading from in and writing prompts to out.
func NewConsole(in io.Reader, out io.Writer, styles Styles) *Console {
	return &Console{in: in, out: out, styles: styles}
}

func (c *Console) start() {
	c.lines = make(chan line, 1)
	go func() {
		defer close(c.lines)
		sc := bufio.NewScanner(c.in)
		for sc.Scan() {
			c.lines <- line{text: sc.Text()}
		}
		err := sc.Err()
		if err == nil {
			err = io.EOF
		}
		c.lines <- line{err: err}
	}()
}

// ReadLine prints prompt and returns the next input line without its
// trailing newline or surrounding blanks. It returns io.EOF once the input is
// exhausted and ctx.Err() if ctx is done first.
func (c *Console) ReadLine(ctx context.Context, prompt string) (string, error) {
	c.once.Do(c.start)
	fmt.Fprint(c.out, prompt)
	select {
	case <-ctx.Done():
		fmt.Fprintln(c.out)
		return "", ctx.Err()
	case l, ok := <-c.lines:
		if !ok {
			return "", io.EOF
		}
		if l.err != nil {
			return "", l.err
		}
		return strings.TrimSpace(l.text), nil
	}
}

// Prompt reads a chat line after the styled "you> " prompt.
func (c *Console) Prompt(ctx context.Context) (string, error) {
	return c.ReadLine(ctx, c.styles.Prompt.Render("you>")+" ")
}

// Confirm asks prompt until it gets a yes or no. "y" and "yes" approve; "n",
// "no" and an empty line decline. Exhausted input declines. A cancelled ctx
// or a failing input stream returns an error: no decision was made.
func (c *Console) Confirm(ctx context.Context, prompt string) (bool, error) {
	for {
		answer, err := c.ReadLine(ctx, c.styles.ToolCall.Render(prompt))
		if err == io.EOF {
			fmt.Fprintln(c.out)
			return false, nil
		}
		if err != nil {
			return false, err
		}
		switch strings.ToLower(answer) {
		case "y", "yes":
			return true, nil
		case "", "n", "no":
			return false, nil
		}
		fmt.Fprintln(c.out, "Please answer 'y' or 'n'.")
	}
}
