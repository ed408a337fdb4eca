package dataset

import (
	"context"
	"fmt"
	"sync"

	"github.com/z-h-i/iterative-dichotomiser-three/feature"
)

const (
	sampleCountThresholdForDatasetImplementation = 1000
)

/*
Error represents an error related with datasets
*/
type Error string

const (
	// ErrEmptyDataset is returned by operations that are not defined for
	// datasets without samples
	ErrEmptyDataset = Error("dataset has no samples")
	// ErrUnknownFeature is returned when dropping or querying a column the
	// dataset does not have
	ErrUnknownFeature = Error("unknown feature")
)

func (e Error) Error() string {
	return string(e)
}

/*
Dataset represents a table of samples with binary values for a fixed set
of named columns.

Its Label method returns the feature samples are labeled with, and its
Features method the attribute features that can still be used to split it.

Its Entropy method returns the entropy of the label on the dataset: a
measure of the disinformation we have on the labels of samples that belong
to it.

Its SubsetWith method takes a feature.Criterion and returns a subset that only
contains samples that satisfy it, and its Drop method returns the dataset
without the given attribute column.

Its Samples method returns the samples it contains.

The implementations in this module are safe for concurrent use.
*/
type Dataset interface {
	Label() feature.Feature
	Features() []feature.Feature
	Entropy(context.Context) (float64, error)
	SubsetWith(context.Context, feature.Criterion) (Dataset, error)
	Drop(context.Context, feature.Feature) (Dataset, error)
	CountFeatureValues(context.Context, feature.Feature) (map[feature.Value]int, error)
	Samples(context.Context) ([]Sample, error)
	Count(context.Context) (int, error)
	Criteria(context.Context) ([]feature.Criterion, error)
}

/*
Generator is a function that takes a schema and a slice of samples and
builds a dataset with them. New, NewMemoryIntensive and NewCPUIntensive
are Generators.
*/
type Generator func(*Schema, []Sample) Dataset

type memoryIntensiveSubsettingDataset struct {
	*Schema
	lock     sync.Mutex
	entropy  *float64
	samples  []Sample
	criteria []feature.Criterion
}

type cpuIntensiveSubsettingDataset struct {
	*Schema
	lock     sync.Mutex
	entropy  *float64
	count    *int
	samples  []Sample
	criteria []feature.Criterion
}

/*
New takes a schema and a slice of samples and returns a dataset built with
them. The dataset will be a CPU intensive one when the number of samples is
over sampleCountThresholdForDatasetImplementation
*/
func New(sc *Schema, samples []Sample) Dataset {
	if len(samples) > sampleCountThresholdForDatasetImplementation {
		return NewCPUIntensive(sc, samples)
	}
	return NewMemoryIntensive(sc, samples)
}

/*
NewMemoryIntensive takes a schema and a slice of samples and returns a
Dataset built with them. A memory-intensive dataset replicates the slice of
samples when subsetting to reduce calculations at the cost of increased memory.
*/
func NewMemoryIntensive(sc *Schema, samples []Sample) Dataset {
	return &memoryIntensiveSubsettingDataset{Schema: sc, samples: samples}
}

/*
NewCPUIntensive takes a schema and a slice of samples and returns a Dataset
built with them. A cpu-intensive dataset, instead of replicating the samples
when subsetting, stores the criteria defining the subset and keeps the same
sample slice. Every calculation that goes over the samples of the dataset
applies the criteria on all original samples.
*/
func NewCPUIntensive(sc *Schema, samples []Sample) Dataset {
	return &cpuIntensiveSubsettingDataset{Schema: sc, samples: samples}
}

func (s *memoryIntensiveSubsettingDataset) Count(ctx context.Context) (int, error) {
	return len(s.samples), nil
}

func (s *cpuIntensiveSubsettingDataset) Count(ctx context.Context) (int, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.count != nil {
		return *s.count, nil
	}
	var length int
	err := s.iterateOnDataset(ctx, func(_ Sample) (bool, error) {
		length++
		return true, nil
	})
	if err != nil {
		return 0, err
	}
	s.count = &length
	return length, nil
}

func (s *memoryIntensiveSubsettingDataset) Entropy(ctx context.Context) (float64, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.entropy != nil {
		return *s.entropy, nil
	}
	counts, err := s.CountFeatureValues(ctx, s.Label())
	if err != nil {
		return 0, err
	}
	result, err := labelEntropy(counts)
	if err != nil {
		return 0, err
	}
	s.entropy = &result
	return result, nil
}

func (s *cpuIntensiveSubsettingDataset) Entropy(ctx context.Context) (float64, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.entropy != nil {
		return *s.entropy, nil
	}
	counts, err := s.CountFeatureValues(ctx, s.Label())
	if err != nil {
		return 0, err
	}
	result, err := labelEntropy(counts)
	if err != nil {
		return 0, err
	}
	s.entropy = &result
	return result, nil
}

func (s *memoryIntensiveSubsettingDataset) SubsetWith(ctx context.Context, fc feature.Criterion) (Dataset, error) {
	var samples []Sample
	for _, sample := range s.samples {
		ok, err := fc.SatisfiedBy(ctx, sample)
		if err != nil {
			return nil, err
		}
		if ok {
			samples = append(samples, sample)
		}
	}
	return &memoryIntensiveSubsettingDataset{
		Schema:   s.Schema,
		samples:  samples,
		criteria: append([]feature.Criterion{fc}, s.criteria...),
	}, nil
}

func (s *cpuIntensiveSubsettingDataset) SubsetWith(ctx context.Context, fc feature.Criterion) (Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	criteria := append([]feature.Criterion{fc}, s.criteria...)
	return &cpuIntensiveSubsettingDataset{Schema: s.Schema, samples: s.samples, criteria: criteria}, nil
}

func (s *memoryIntensiveSubsettingDataset) Drop(ctx context.Context, f feature.Feature) (Dataset, error) {
	sc, err := s.Without(f)
	if err != nil {
		return nil, err
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	return &memoryIntensiveSubsettingDataset{Schema: sc, entropy: s.entropy, samples: s.samples, criteria: s.criteria}, nil
}

func (s *cpuIntensiveSubsettingDataset) Drop(ctx context.Context, f feature.Feature) (Dataset, error) {
	sc, err := s.Without(f)
	if err != nil {
		return nil, err
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	return &cpuIntensiveSubsettingDataset{Schema: sc, entropy: s.entropy, count: s.count, samples: s.samples, criteria: s.criteria}, nil
}

func (s *memoryIntensiveSubsettingDataset) Samples(ctx context.Context) ([]Sample, error) {
	return s.samples, nil
}

func (s *cpuIntensiveSubsettingDataset) Samples(ctx context.Context) ([]Sample, error) {
	var samples []Sample
	err := s.iterateOnDataset(ctx, func(sample Sample) (bool, error) {
		samples = append(samples, sample)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return samples, nil
}

func (s *memoryIntensiveSubsettingDataset) CountFeatureValues(ctx context.Context, f feature.Feature) (map[feature.Value]int, error) {
	result := make(map[feature.Value]int)
	for _, sample := range s.samples {
		v, err := sample.ValueFor(ctx, f)
		if err != nil {
			return nil, err
		}
		result[v]++
	}
	return result, nil
}

func (s *cpuIntensiveSubsettingDataset) CountFeatureValues(ctx context.Context, f feature.Feature) (map[feature.Value]int, error) {
	result := make(map[feature.Value]int)
	err := s.iterateOnDataset(ctx, func(sample Sample) (bool, error) {
		v, err := sample.ValueFor(ctx, f)
		if err != nil {
			return false, err
		}
		result[v]++
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *memoryIntensiveSubsettingDataset) Criteria(ctx context.Context) ([]feature.Criterion, error) {
	return s.criteria, nil
}

func (s *cpuIntensiveSubsettingDataset) Criteria(ctx context.Context) ([]feature.Criterion, error) {
	return s.criteria, nil
}

func (s *memoryIntensiveSubsettingDataset) String() string {
	return fmt.Sprintf("{Dataset columns: %v samples: %d}", s.Columns(), len(s.samples))
}

func (s *cpuIntensiveSubsettingDataset) iterateOnDataset(ctx context.Context, lambda func(Sample) (bool, error)) error {
	for _, sample := range s.samples {
		if err := ctx.Err(); err != nil {
			return err
		}
		skip := false
		for _, criterion := range s.criteria {
			ok, err := criterion.SatisfiedBy(ctx, sample)
			if err != nil {
				return err
			}
			if !ok {
				skip = true
				break
			}
		}
		if !skip {
			ok, err := lambda(sample)
			if err != nil {
				return err
			}
			if !ok {
				break
			}
		}
	}
	return nil
}
