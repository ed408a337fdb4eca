/*
Package mongodataset provides a implementation of dataset.Dataset
that uses a MongoDB collection as backend.

Every document in the collection is a sample, with a 0/1 integer
field per column. Subsets are kept as criteria that become the
query documents of the operations on the collection.
*/
package mongodataset

import (
	"context"
	"fmt"
	"strings"
	"sync"

	mgo "gopkg.in/mgo.v2"
	"gopkg.in/mgo.v2/bson"

	"github.com/z-h-i/iterative-dichotomiser-three/dataset"
	"github.com/z-h-i/iterative-dichotomiser-three/feature"
)

/*
Dataset is a dataset.Dataset to which samples can be added
and from which samples can be sequentially read
*/
type Dataset interface {
	dataset.Dataset
	Write(context.Context, []dataset.Sample) (int, error)
	Read(context.Context) (<-chan dataset.Sample, <-chan error)
}

type mongodataset struct {
	*dataset.Schema
	session    *mgo.Session
	collection string
	criteria   []feature.Criterion
	lock       sync.Mutex
	entropy    *float64
	count      *int
}

/*
Open takes a context, a MongoDB database session and a collection name
and returns a Dataset on that collection of the default database for the
session. The fields of the first document in the collection, in order and
without _id, make up the schema of the dataset: the last one is the label.
*/
func Open(ctx context.Context, session *mgo.Session, collection string) (Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var doc bson.D
	err := session.DB("").C(collection).Find(nil).One(&doc)
	if err == mgo.ErrNotFound {
		return nil, fmt.Errorf("collection %s has no documents to take columns from", collection)
	}
	if err != nil {
		return nil, err
	}
	sc, err := dataset.NewSchema(fieldNames(doc))
	if err != nil {
		return nil, fmt.Errorf("collection %s: %w", collection, err)
	}
	return newMongoDataset(session, collection, sc)
}

/*
Create takes a context, a MongoDB database session, a collection name and
a schema and returns a Dataset on the collection with the given schema,
ensuring an index on every column.
*/
func Create(ctx context.Context, session *mgo.Session, collection string, sc *dataset.Schema) (Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	mds, err := newMongoDataset(session, collection, sc)
	if err != nil {
		return nil, err
	}
	err = mds.ensureIndexes()
	if err != nil {
		return nil, err
	}
	return mds, nil
}

func newMongoDataset(session *mgo.Session, collection string, sc *dataset.Schema) (*mongodataset, error) {
	for _, name := range sc.Columns() {
		if err := validFieldName(name); err != nil {
			return nil, err
		}
	}
	return &mongodataset{Schema: sc, session: session, collection: collection}, nil
}

func (mds *mongodataset) Entropy(ctx context.Context) (float64, error) {
	mds.lock.Lock()
	defer mds.lock.Unlock()
	if mds.entropy != nil {
		return *mds.entropy, nil
	}
	counts, err := mds.CountFeatureValues(ctx, mds.Label())
	if err != nil {
		return 0, err
	}
	total := counts[feature.False] + counts[feature.True]
	if total == 0 {
		return 0, dataset.ErrEmptyDataset
	}
	result := dataset.BinaryEntropy(float64(counts[feature.True]) / float64(total))
	mds.entropy = &result
	return result, nil
}

func (mds *mongodataset) SubsetWith(ctx context.Context, fc feature.Criterion) (dataset.Dataset, error) {
	criteria := make([]feature.Criterion, 0, len(mds.criteria)+1)
	criteria = append(criteria, mds.criteria...)
	criteria = append(criteria, fc)
	return &mongodataset{Schema: mds.Schema, session: mds.session, collection: mds.collection, criteria: criteria}, nil
}

func (mds *mongodataset) Drop(ctx context.Context, f feature.Feature) (dataset.Dataset, error) {
	sc, err := mds.Without(f)
	if err != nil {
		return nil, err
	}
	mds.lock.Lock()
	defer mds.lock.Unlock()
	return &mongodataset{
		Schema:     sc,
		session:    mds.session,
		collection: mds.collection,
		criteria:   mds.criteria,
		entropy:    mds.entropy,
		count:      mds.count,
	}, nil
}

func (mds *mongodataset) CountFeatureValues(ctx context.Context, f feature.Feature) (map[feature.Value]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pipeline := []bson.M{
		{"$match": query(mds.criteria)},
		{"$group": bson.M{"_id": "$" + f.Name(), "count": bson.M{"$sum": 1}}},
	}
	iter := mds.samplesCollection().Pipe(pipeline).Iter()
	defer iter.Close()
	var doc bson.M
	result := make(map[feature.Value]int)
	for iter.Next(&doc) {
		count, ok := doc["count"].(int)
		if !ok {
			return nil, fmt.Errorf("counting feature values: mongo aggregation query returned a %T instead of an int as count", doc["count"])
		}
		v, err := toValue(doc["_id"])
		if err != nil {
			return nil, fmt.Errorf("counting values of %s: %w", f.Name(), err)
		}
		result[v] = count
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (mds *mongodataset) Samples(ctx context.Context) ([]dataset.Sample, error) {
	var samples []dataset.Sample
	count, err := mds.Count(ctx)
	if err != nil {
		return nil, err
	}
	samples = make([]dataset.Sample, 0, count)
	sampleChan, errs := mds.Read(ctx)
	for sample := range sampleChan {
		samples = append(samples, sample)
	}
	err = <-errs
	return samples, err
}

func (mds *mongodataset) Count(ctx context.Context) (int, error) {
	mds.lock.Lock()
	defer mds.lock.Unlock()
	if mds.count != nil {
		return *mds.count, nil
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	count, err := mds.samplesCollection().Find(query(mds.criteria)).Count()
	if err != nil {
		return 0, err
	}
	mds.count = &count
	return count, nil
}

func (mds *mongodataset) Criteria(context.Context) ([]feature.Criterion, error) {
	return mds.criteria, nil
}

func (mds *mongodataset) Write(ctx context.Context, samples []dataset.Sample) (int, error) {
	if len(samples) == 0 {
		return 0, nil
	}
	columns := append(append([]feature.Feature{}, mds.Features()...), mds.Label())
	docs := make([]interface{}, 0, len(samples))
	for _, s := range samples {
		doc, err := document(ctx, s, columns)
		if err != nil {
			return 0, err
		}
		docs = append(docs, doc)
	}
	err := mds.samplesCollection().Insert(docs...)
	if err != nil {
		return 0, err
	}
	mds.lock.Lock()
	mds.count = nil
	mds.entropy = nil
	mds.lock.Unlock()
	return len(samples), nil
}

func (mds *mongodataset) Read(ctx context.Context) (<-chan dataset.Sample, <-chan error) {
	samples := make(chan dataset.Sample)
	errs := make(chan error, 1)
	go func() {
		defer close(samples)
		defer close(errs)
		var doc bson.M
		iter := mds.samplesCollection().Find(query(mds.criteria)).Iter()
		defer iter.Close()
		for iter.Next(&doc) {
			s, err := sample(doc, mds.Columns())
			if err != nil {
				errs <- err
				return
			}
			select {
			case <-ctx.Done():
				errs <- ctx.Err()
				return
			case samples <- s:
			}
		}
		if err := iter.Err(); err != nil {
			errs <- err
		}
	}()
	return samples, errs
}

func (mds *mongodataset) String() string {
	return fmt.Sprintf("{MongoDataset %s %v}", mds.collection, query(mds.criteria))
}

func (mds *mongodataset) ensureIndexes() error {
	for _, name := range mds.Columns() {
		index := mgo.Index{
			Key:        []string{name},
			Background: true,
		}
		err := mds.samplesCollection().EnsureIndex(index)
		if err != nil {
			return err
		}
	}
	return nil
}

func (mds *mongodataset) samplesCollection() *mgo.Collection {
	return mds.session.DB("").C(mds.collection)
}

func validFieldName(name string) error {
	if name == "_id" {
		return fmt.Errorf("invalid feature name %q: reserved collection field", "_id")
	}
	if strings.ContainsAny(name, ".$") {
		return fmt.Errorf("invalid feature name %q: contains reserved characters %q or %q", name, ".", "$")
	}
	return nil
}

// query returns the query document matching the samples that satisfy
// all the given criteria.
func query(criteria []feature.Criterion) bson.M {
	q := make(bson.M)
	for _, fc := range criteria {
		name := fc.Feature().Name()
		v := int(fc.Value())
		if prev, ok := q[name]; ok && prev != v {
			// contradictory criteria match nothing
			q[name] = bson.M{"$in": []int{}}
			continue
		}
		q[name] = v
	}
	return q
}

func document(ctx context.Context, s dataset.Sample, columns []feature.Feature) (bson.D, error) {
	doc := make(bson.D, 0, len(columns))
	for _, f := range columns {
		v, err := s.ValueFor(ctx, f)
		if err != nil {
			return nil, err
		}
		doc = append(doc, bson.DocElem{Name: f.Name(), Value: int(v)})
	}
	return doc, nil
}

func sample(doc bson.M, columns []string) (dataset.Sample, error) {
	values := make(map[string]feature.Value, len(columns))
	for _, name := range columns {
		raw, ok := doc[name]
		if !ok {
			return nil, fmt.Errorf("document %v has no field %s", doc["_id"], name)
		}
		v, err := toValue(raw)
		if err != nil {
			return nil, fmt.Errorf("document %v field %s: %w", doc["_id"], name, err)
		}
		values[name] = v
	}
	return dataset.NewSample(values), nil
}

func toValue(raw interface{}) (feature.Value, error) {
	var n int64
	switch r := raw.(type) {
	case int:
		n = int64(r)
	case int64:
		n = r
	case float64:
		if r != float64(int64(r)) {
			return feature.False, fmt.Errorf("invalid binary value %v", r)
		}
		n = int64(r)
	case bool:
		if r {
			n = 1
		}
	default:
		return feature.False, fmt.Errorf("invalid binary value %v of type %T", raw, raw)
	}
	switch n {
	case 0:
		return feature.False, nil
	case 1:
		return feature.True, nil
	}
	return feature.False, fmt.Errorf("invalid binary value %d", n)
}

func fieldNames(doc bson.D) []string {
	names := make([]string, 0, len(doc))
	for _, e := range doc {
		if e.Name != "_id" {
			names = append(names, e.Name)
		}
	}
	return names
}
