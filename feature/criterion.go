package feature

import (
	"context"
	"fmt"
)

/*
Error represents an error related with features
*/
type Error string

/*
ErrUndefinedFeature is the error returned when a sample is asked for the
value of a feature it does not carry.
*/
const ErrUndefinedFeature = Error("feature not defined for sample")

func (e Error) Error() string {
	return string(e)
}

/*
Sample is an interface for something that can satisfy a Criterion.

Its ValueFor method returns the value corresponding to the feature
passed as parameter, or an error wrapping ErrUndefinedFeature if the
sample has no value for it.
*/
type Sample interface {
	ValueFor(context.Context, Feature) (Value, error)
}

/*
Criterion represents a constraint on a binary feature: the value it must take.

Its SatisfiedBy method takes a sample and returns a boolean indicating if
the sample's value for the feature is the one required by the criterion.
*/
type Criterion interface {
	Feature() Feature
	Value() Value
	SatisfiedBy(ctx context.Context, sample Sample) (bool, error)
}

type criterion struct {
	feature Feature
	value   Value
}

/*
NewCriterion takes a feature and a value and returns a Criterion satisfied
by samples that take that value for the feature.
*/
func NewCriterion(f Feature, v Value) Criterion {
	return &criterion{f, v}
}

/*
Feature returns the feature to which the constraint applies.
*/
func (c *criterion) Feature() Feature {
	return c.feature
}

func (c *criterion) Value() Value {
	return c.value
}

/*
SatisfiedBy receives a sample and returns whether its value for the criterion's
feature equals the criterion's value. Errors obtaining the value are returned
as they are.
*/
func (c *criterion) SatisfiedBy(ctx context.Context, sample Sample) (bool, error) {
	v, err := sample.ValueFor(ctx, c.feature)
	if err != nil {
		return false, err
	}
	return v == c.value, nil
}

func (c *criterion) String() string {
	return fmt.Sprintf("%s = %d", c.feature.Name(), int8(c.value))
}
