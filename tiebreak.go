package id3

import (
	"context"
	"math/rand"
	"sync"

	"github.com/z-h-i/iterative-dichotomiser-three/feature"
)

/*
TieBreaker is an interface wrapping the Break method, used to choose the
feature to split on when several of them achieve the same minimum
conditional entropy.

The Break method takes a context and the tied features, in the order the
dataset lists them, and returns the one to split on.
*/
type TieBreaker interface {
	Break(ctx context.Context, tied []feature.Feature) (feature.Feature, error)
}

/*
TieBreakerFunc wraps a function with the Break method signature to implement
the TieBreaker interface
*/
type TieBreakerFunc func(ctx context.Context, tied []feature.Feature) (feature.Feature, error)

/*
Break takes a context.Context and a slice of tied features and invokes the
TieBreakerFunc with those parameters to return its result.
*/
func (tbf TieBreakerFunc) Break(ctx context.Context, tied []feature.Feature) (feature.Feature, error) {
	return tbf(ctx, tied)
}

/*
FirstTieBreaker returns a TieBreaker that always picks the first of the tied
features, that is, the one with the lowest column index. Trees grown with it
are fully determined by their training data.
*/
func FirstTieBreaker() TieBreaker {
	return TieBreakerFunc(func(ctx context.Context, tied []feature.Feature) (feature.Feature, error) {
		if len(tied) == 0 {
			return nil, ErrNoFeatures
		}
		return tied[0], nil
	})
}

/*
RandomTieBreaker takes a rand.Source and returns a TieBreaker that picks one
of the tied features uniformly at random using numbers from the source.
Giving it a source with a fixed seed makes its choices reproducible.

The returned TieBreaker is safe for concurrent use, as long as the source
is not used elsewhere.
*/
func RandomTieBreaker(src rand.Source) TieBreaker {
	rnd := rand.New(&lockedRandSource{src: src})
	return TieBreakerFunc(func(ctx context.Context, tied []feature.Feature) (feature.Feature, error) {
		if len(tied) == 0 {
			return nil, ErrNoFeatures
		}
		if len(tied) == 1 {
			return tied[0], nil
		}
		return tied[rnd.Intn(len(tied))], nil
	})
}

// Code below is an adaptation of https://github.com/nishanths/go-xkcd/blob/b5a58daa228c66d55ead5da14125567329173ca6/random.go

type lockedRandSource struct {
	lock sync.Mutex
	src  rand.Source
}

// to satisfy rand.Source interface
func (r *lockedRandSource) Int63() int64 {
	r.lock.Lock()
	ret := r.src.Int63()
	r.lock.Unlock()
	return ret
}

// to satisfy rand.Source interface
func (r *lockedRandSource) Seed(seed int64) {
	r.lock.Lock()
	r.src.Seed(seed)
	r.lock.Unlock()
}
