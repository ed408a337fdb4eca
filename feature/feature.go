/*
Package feature defines the binary properties observed on samples
and the criteria used to constrain them.
*/
package feature

import "fmt"

/*
Value is the value a binary feature takes on a sample: False (0) or True (1).
*/
type Value int8

const (
	// False is the 0 value of a binary feature
	False Value = 0
	// True is the 1 value of a binary feature
	True Value = 1
)

/*
Values returns the values a binary feature can take, in branch order.
*/
func Values() []Value {
	return []Value{False, True}
}

func (v Value) String() string {
	return fmt.Sprintf("%d", int8(v))
}

/*
ParseValue takes a string and returns the Value it represents. Only "0" and
"1" are accepted.
*/
func ParseValue(s string) (Value, error) {
	switch s {
	case "0":
		return False, nil
	case "1":
		return True, nil
	}
	return False, fmt.Errorf("invalid binary value %q", s)
}

/*
Feature represents a binary property that can be observed on a sample,
identified by its name.
*/
type Feature interface {
	Name() string
	Valid(Value) (bool, error)
}

type binaryFeature struct {
	name string
}

/*
New takes a name string and returns a binary feature with that name.
*/
func New(name string) Feature {
	return &binaryFeature{name}
}

/*
Name returns a string with the name of the feature
*/
func (bf *binaryFeature) Name() string {
	return bf.name
}

/*
Valid receives a value and returns true and nil if it is one of the two
values available for a binary feature. Otherwise it returns false and an
error describing the reason.
*/
func (bf *binaryFeature) Valid(v Value) (bool, error) {
	if v == False || v == True {
		return true, nil
	}
	return false, fmt.Errorf("binary feature %s got unknown value %d", bf.name, int8(v))
}

func (bf *binaryFeature) String() string {
	return bf.name
}

/*
Names takes a slice of features and returns a slice with their names in
the same order.
*/
func Names(features []Feature) []string {
	names := make([]string, len(features))
	for i, f := range features {
		names[i] = f.Name()
	}
	return names
}
