// Package mock provides test doubles for relay interfaces using function fields.
package mock

import (
	"context"

	"github.com/fwojciec/relay"
)

// Interface compliance checks.
var (
	_ relay.Provider  = (*Provider)(nil)
	_ relay.Invoker   = (*Invoker)(nil)
	_ relay.Confirmer = (*Confirmer)(nil)
)

// Provider is a test double for relay.Provider.
// Set CompleteFn before calling Complete.
type Provider struct {
	CompleteFn func(ctx context.Context, req relay.Request) (relay.Reply, error)
}

// Complete delegates to CompleteFn.
func (p *Provider) Complete(ctx context.Context, req relay.Request) (relay.Reply, error) {
	return p.CompleteFn(ctx, req)
}

// Invoker is a test double for relay.Invoker.
// Set InvokeFn before calling Invoke.
type Invoker struct {
	InvokeFn func(ctx context.Context, name string, args map[string]any) (any, error)
}

// Invoke delegates to InvokeFn.
func (i *Invoker) Invoke(ctx context.Context, name string, args map[string]any) (any, error) {
	return i.InvokeFn(ctx, name, args)
}

// Confirmer is a test double for relay.Confirmer.
// Set ConfirmFn before calling Confirm.
type Confirmer struct {
	ConfirmFn func(ctx context.Context, prompt string) (bool, error)
}

// Confirm delegates to ConfirmFn.
func (c *Confirmer) Confirm(ctx context.Context, prompt string) (bool, error) {
	return c.ConfirmFn(ctx, prompt)
}
