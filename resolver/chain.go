package resolver

import (
	"context"
	stderrors "errors"
	"io/fs"

	"github.com/wippyai/modload"
	"github.com/wippyai/modload/errors"
)

// Chain tries resolvers in order. A resolver that reports not-found or an
// unsupported identifier passes the identifier on; any other error stops
// the chain.
type Chain []modload.Resolver

// Resolve implements modload.Resolver.
func (c Chain) Resolve(ctx context.Context, id any) (*modload.Source, error) {
	var tried []string
	for _, r := range c {
		src, err := r.Resolve(ctx, id)
		if err == nil {
			return src, nil
		}
		if !errors.Is(err, fs.ErrNotExist) && !errors.Is(err, stderrors.ErrUnsupported) {
			return nil, err
		}
		var e *errors.Error
		if errors.As(err, &e) {
			tried = append(tried, e.Path...)
		}
	}
	return nil, errors.NotFound(id, tried)
}
