package dataset

import (
	"context"
	"fmt"

	"github.com/z-h-i/iterative-dichotomiser-three/feature"
)

/*
Sample represents a row of a dataset: an item from which to learn or on
which to test a tree.

Its ValueFor method returns the value of the sample corresponding to the
feature passed as parameter, looked up by the feature's name.
*/
type Sample interface {
	feature.Sample
}

type sample struct {
	featureValues map[string]feature.Value
}

/*
NewSample takes a map of feature names to values and returns a sample.
*/
func NewSample(featureValues map[string]feature.Value) Sample {
	return &sample{featureValues}
}

func (s *sample) ValueFor(_ context.Context, f feature.Feature) (feature.Value, error) {
	v, ok := s.featureValues[f.Name()]
	if !ok {
		return feature.False, fmt.Errorf("%w: %s", feature.ErrUndefinedFeature, f.Name())
	}
	return v, nil
}

func (s *sample) String() string {
	return fmt.Sprintf("[%v]", s.featureValues)
}
