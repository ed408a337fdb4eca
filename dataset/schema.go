package dataset

import (
	"fmt"

	"github.com/emirpasic/gods/sets/hashset"

	"github.com/z-h-i/iterative-dichotomiser-three/feature"
)

/*
Schema describes the columns of a dataset: the attribute features in column
order and the label feature, which comes from the last column of the source
table. Columns are identified by name, so a schema keeps naming the same
columns after others have been dropped.
*/
type Schema struct {
	label    feature.Feature
	features []feature.Feature
}

/*
NewSchema takes the column names of a table and returns a Schema with the
last column as label and the rest as attribute features. An error is returned
if there are no columns or if any name is empty or repeated.
*/
func NewSchema(columns []string) (*Schema, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("no columns to build a schema from")
	}
	seen := hashset.New()
	features := make([]feature.Feature, 0, len(columns)-1)
	for i, name := range columns {
		if name == "" {
			return nil, fmt.Errorf("column %d has no name", i+1)
		}
		if seen.Contains(name) {
			return nil, fmt.Errorf("column name %s is repeated", name)
		}
		seen.Add(name)
		if i < len(columns)-1 {
			features = append(features, feature.New(name))
		}
	}
	return &Schema{label: feature.New(columns[len(columns)-1]), features: features}, nil
}

/*
Label returns the feature the dataset's samples are labeled with
*/
func (sc *Schema) Label() feature.Feature {
	return sc.label
}

/*
Features returns the attribute features in column order
*/
func (sc *Schema) Features() []feature.Feature {
	return sc.features
}

/*
Columns returns the names of all columns, attributes first and label last.
*/
func (sc *Schema) Columns() []string {
	return append(feature.Names(sc.features), sc.label.Name())
}

/*
Feature takes a name and returns the attribute feature with that name or
nil if the schema has no such attribute.
*/
func (sc *Schema) Feature(name string) feature.Feature {
	for _, f := range sc.features {
		if f.Name() == name {
			return f
		}
	}
	return nil
}

/*
Without takes a feature and returns a new schema without that attribute
feature, or an error wrapping ErrUnknownFeature if the schema has no
attribute with its name.
*/
func (sc *Schema) Without(f feature.Feature) (*Schema, error) {
	features := make([]feature.Feature, 0, len(sc.features))
	found := false
	for _, sf := range sc.features {
		if sf.Name() == f.Name() {
			found = true
			continue
		}
		features = append(features, sf)
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFeature, f.Name())
	}
	return &Schema{label: sc.label, features: features}, nil
}
