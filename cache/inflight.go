package cache

import (
	"context"

	"golang.org/x/sync/singleflight"
)

// InFlight collapses concurrent lookups for the same key into one call.
//
// A label repeated in fifty list rows produces fifty lookups for one key;
// only the first starts the factory, the rest wait for its result. The key
// is released as soon as the call settles, successful or not, so a failure
// is retried by the next caller rather than remembered.
type InFlight struct {
	group singleflight.Group
}

// NewInFlight creates an empty in-flight table.
func NewInFlight() *InFlight {
	return &InFlight{}
}

// Do returns the result of the in-flight call for key, starting factory if
// there is none. The factory runs with a context detached from ctx's
// cancellation because other callers may be sharing it; a caller whose ctx
// ends stops waiting and gets ctx.Err(). shared reports whether the result
// was delivered to more than one caller.
func (f *InFlight) Do(ctx context.Context, key string, factory func(context.Context) (string, error)) (value string, shared bool, err error) {
	detached := context.WithoutCancel(ctx)
	ch := f.group.DoChan(key, func() (interface{}, error) {
		return factory(detached)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Shared, res.Err
		}
		return res.Val.(string), res.Shared, nil
	case <-ctx.Done():
		return "", false, ctx.Err()
	}
}
