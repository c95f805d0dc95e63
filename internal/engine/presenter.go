package engine

import (
	"context"
	"errors"

	"github.com/Veraticus/paycapture/internal/model"
	"github.com/Veraticus/paycapture/internal/service"
)

// MultiPresenter hands each prefill request to every presenter in order.
// All presenters are called even when one fails; failures are joined.
type MultiPresenter []service.Presenter

// Present implements service.Presenter.
func (m MultiPresenter) Present(ctx context.Context, req model.PrefillRequest) error {
	var errs []error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.Present(ctx, req); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
