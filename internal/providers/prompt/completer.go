package prompt

import (
	"context"
	"errors"
	"fmt"
)

// Completer turns a prompt into model text.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// NamedCompleter is a Completer that can label itself in logs.
type NamedCompleter interface {
	Completer
	Name() string
}

// ChainCompleter asks each completer in order and returns the first answer.
type ChainCompleter struct {
	completers []NamedCompleter
	onFallback func(name string, err error)
}

func NewChainCompleter(onFallback func(name string, err error), completers ...NamedCompleter) *ChainCompleter {
	var usable []NamedCompleter
	for _, c := range completers {
		if c != nil {
			usable = append(usable, c)
		}
	}
	return &ChainCompleter{completers: usable, onFallback: onFallback}
}

// Len reports how many completers are configured.
func (c *ChainCompleter) Len() int {
	return len(c.completers)
}

func (c *ChainCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	if len(c.completers) == 0 {
		return "", errors.New("no completion provider configured")
	}
	var errs []error
	for _, completer := range c.completers {
		text, err := completer.Complete(ctx, prompt)
		if err == nil {
			return text, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		if c.onFallback != nil {
			c.onFallback(completer.Name(), err)
		}
		errs = append(errs, fmt.Errorf("%s: %w", completer.Name(), err))
	}
	return "", errors.Join(errs...)
}

var _ Completer = (*ChainCompleter)(nil)
