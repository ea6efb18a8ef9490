package alert

import (
	"context"
	"errors"

	"github.com/jwalitptl/carewatch-api/internal/model"
	"github.com/jwalitptl/carewatch-api/pkg/circuitbreaker"
)

// rejection is implemented by sender errors where the provider answered but
// refused this one request, e.g. an invalid destination number.
type rejection interface {
	Rejected() bool
}

func isRejection(err error) bool {
	var r rejection
	return errors.As(err, &r) && r.Rejected()
}

type breakerSender struct {
	next Sender
	cb   *circuitbreaker.CircuitBreaker
}

// WithBreaker fails sends fast while the provider behind next keeps failing.
// Per-recipient rejections are returned to the caller but do not count as
// provider failures.
func WithBreaker(next Sender, cb *circuitbreaker.CircuitBreaker) Sender {
	return &breakerSender{next: next, cb: cb}
}

func (b *breakerSender) Send(ctx context.Context, destination string, msg model.RenderedAlert) error {
	var rejected error
	err := b.cb.Execute(func() error {
		err := b.next.Send(ctx, destination, msg)
		if isRejection(err) {
			rejected = err
			return nil
		}
		return err
	})
	if err != nil {
		return err
	}
	return rejected
}
