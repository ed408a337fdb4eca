/*
Package id3 grows binary decision trees with the ID3 algorithm: every node
splits its training samples on the attribute that leaves the least
entropy on the label, until samples are pure or cannot be told apart.

Growth is organized in tasks: Seed creates the root of a tree and queues
the task to develop it, and Work consumes tasks, developing each node with
BranchOut and queueing the tasks for its children. Grow does all of this
with an in-memory queue and node store.
*/
package id3

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/z-h-i/iterative-dichotomiser-three/dataset"
	"github.com/z-h-i/iterative-dichotomiser-three/feature"
	"github.com/z-h-i/iterative-dichotomiser-three/queue"
	"github.com/z-h-i/iterative-dichotomiser-three/tree"
)

// Error represents an error related with growing trees
type Error string

// ErrNoFeatures is returned when asked to split a dataset on no features
const ErrNoFeatures = Error("no features to split on")

func (e Error) Error() string {
	return string(e)
}

const defaultEmptyQueueSleep = 10 * time.Millisecond

// Strategy holds what BranchOut needs
// besides the task and the tree.
type Strategy struct {
	// TieBreaker picks the feature to split on
	// when several share the minimum conditional
	// entropy. Nil means FirstTieBreaker.
	TieBreaker
	// Logger receives a debug entry for
	// every node developed. Nil means no
	// logging.
	Logger *zap.Logger
}

func (st *Strategy) logger() *zap.Logger {
	if st == nil || st.Logger == nil {
		return zap.NewNop()
	}
	return st.Logger
}

func (st *Strategy) tieBreaker() TieBreaker {
	if st == nil || st.TieBreaker == nil {
		return FirstTieBreaker()
	}
	return st.TieBreaker
}

// Seed takes a context, a dataset, a queue and a node store
// and sets everything up so that workers that consume from
// the queue afterwards grow a tree that predicts the dataset's
// label using its features.
// Specifically it will compute the majority label on the whole
// dataset, create the root node of the tree on the node store
// and push a task to branch it out on the queue.
// The function returns the tree that can be grown or an error
// if the dataset is empty, the node cannot be created on the
// store, or the task pushed to the queue.
func Seed(ctx context.Context, s dataset.Dataset, q queue.Queue, ns tree.NodeStore) (*tree.Tree, error) {
	majority, err := dataset.MajorityLabel(ctx, s)
	if err != nil {
		return nil, fmt.Errorf("seeding tree: %w", err)
	}
	n := &tree.Node{}
	err = ns.Create(ctx, n)
	if err != nil {
		return nil, err
	}
	task := &queue.Task{Node: n, Dataset: s, Fallback: majority}
	t := tree.New(n.ID, ns, s.Label(), majority)
	err = q.Push(ctx, task)
	if err != nil {
		ns.Delete(ctx, n)
		return nil, err
	}
	return t, nil
}

// BranchOut takes a context, a task, a tree and a strategy and
// develops the node in the task using the task's dataset. The node
// becomes a leaf when
//   - the dataset is empty: it takes the task's fallback label,
//   - all samples share a label: it takes that label,
//   - no features remain or all samples are identical on them:
//     it takes the tree's majority label if the labels are evenly
//     split, and the dataset's majority label otherwise.
//
// Otherwise the node is split on the feature chosen by
// SelectBestFeature and BranchOut returns the tasks to develop
// its two children, the one for value 0 first.
func BranchOut(ctx context.Context, task *queue.Task, t *tree.Tree, st *Strategy) (tasks []*queue.Task, e error) {
	n := task.Node
	logger := st.logger().With(zap.String("node", n.ID))
	defer func() {
		err := t.NodeStore.Store(ctx, n)
		if e == nil {
			e = err
		}
	}()
	count, err := task.Dataset.Count(ctx)
	if err != nil {
		return nil, err
	}
	n.Weight = count
	if count == 0 {
		n.SetLabel(task.Fallback)
		logger.Debug("empty dataset, leaf with parent majority", zap.Stringer("label", task.Fallback))
		return nil, nil
	}
	h, err := task.Dataset.Entropy(ctx)
	if err != nil {
		return nil, err
	}
	localMajority, err := dataset.MajorityLabel(ctx, task.Dataset)
	if err != nil {
		return nil, err
	}
	if h == 0 {
		n.SetLabel(localMajority)
		logger.Debug("pure dataset, leaf", zap.Int("samples", count), zap.Stringer("label", localMajority))
		return nil, nil
	}
	features := task.Dataset.Features()
	undecided := len(features) == 0
	if !undecided {
		undecided, err = dataset.IdenticalAttributes(ctx, task.Dataset)
		if err != nil {
			return nil, err
		}
	}
	if undecided {
		label := localMajority
		if h == 1 {
			label = t.Majority
		}
		n.SetLabel(label)
		logger.Debug("no feature tells samples apart, leaf",
			zap.Int("samples", count), zap.Float64("entropy", h), zap.Stringer("label", label))
		return nil, nil
	}
	p, err := SelectBestFeature(ctx, task.Dataset, features, st.tieBreaker())
	if err != nil {
		return nil, err
	}
	n.SubtreeFeature = p.Feature
	n.SubtreeIDs = make([]string, 0, len(p.Subsets))
	tasks = make([]*queue.Task, 0, len(p.Subsets))
	for _, v := range feature.Values() {
		sn := &tree.Node{ParentID: n.ID, Criterion: feature.NewCriterion(p.Feature, v)}
		err = t.NodeStore.Create(ctx, sn)
		if err != nil {
			return nil, err
		}
		n.SubtreeIDs = append(n.SubtreeIDs, sn.ID)
		tasks = append(tasks, &queue.Task{Node: sn, Dataset: p.Subsets[v], Fallback: localMajority})
	}
	logger.Debug("split",
		zap.Int("samples", count),
		zap.Float64("entropy", h),
		zap.String("feature", p.Feature.Name()),
		zap.Float64("conditional_entropy", p.ConditionalEntropy))
	return tasks, nil
}

// Work takes a context, a tree, a queue, a strategy
// and an emptyQueueSleep duration and enters a loop in which
// it:
//   - pulls a task for the queue,
//   - branches its node out into new subnodes using BranchOut
//   - pushes the tasks for the new subnodes into the queue
//   - marks the task as completed on the queue
//
// If at some point no task can be pulled from the queue and
// the sum of tasks running and pending on the queue is 0, the
// worker ends returning nil. If no task can be pulled but the
// sum is not 0, then the worker will sleep for the given
// emptyQueueSleep duration and then retry.
//
// Work will return a non-nil error if the given context
// times out or is cancelled, if BranchOut returns a non-nil
// error or if an operation with the given queue returns a
// non-nil error.
func Work(ctx context.Context, t *tree.Tree, q queue.Queue, st *Strategy, emptyQueueSleep time.Duration) error {
	for {
		task, err := q.Pull(ctx)
		if err != nil {
			return err
		}
		if task == nil {
			p, r, err := q.Count(ctx)
			if err != nil {
				return err
			}
			if r+p == 0 {
				return nil
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(emptyQueueSleep):
			}
			continue
		}
		err = workTask(ctx, task, t, q, st)
		if err != nil {
			return err
		}
		err = ctx.Err()
		if err != nil {
			return err
		}
	}
}

func workTask(ctx context.Context, task *queue.Task, t *tree.Tree, q queue.Queue, st *Strategy) error {
	defer func() {
		q.Drop(ctx, task.ID())
	}()
	tasks, err := BranchOut(ctx, task, t, st)
	if err != nil {
		return err
	}
	for _, sub := range tasks {
		err = q.Push(ctx, sub)
		if err != nil {
			return err
		}
	}
	return q.Complete(ctx, task.ID())
}

// Option configures Grow
type Option func(*grower)

type grower struct {
	strategy  Strategy
	queue     queue.Queue
	nodeStore tree.NodeStore
}

// WithTieBreaker makes Grow use the given TieBreaker.
// Grow uses a RandomTieBreaker seeded with the current
// time by default.
func WithTieBreaker(tb TieBreaker) Option {
	return func(g *grower) {
		g.strategy.TieBreaker = tb
	}
}

// WithLogger makes Grow log the development of every
// node to the given logger.
func WithLogger(l *zap.Logger) Option {
	return func(g *grower) {
		g.strategy.Logger = l
	}
}

// WithNodeStore makes Grow store the nodes of the tree
// in the given NodeStore instead of a new memory one.
func WithNodeStore(ns tree.NodeStore) Option {
	return func(g *grower) {
		g.nodeStore = ns
	}
}

// WithQueue makes Grow queue tasks in the given Queue
// instead of a new memory one.
func WithQueue(q queue.Queue) Option {
	return func(g *grower) {
		g.queue = q
	}
}

/*
Grow takes a context, a training dataset and options, and returns a
decision tree that predicts the dataset's label from its features, fully
grown by a single worker. It returns an error wrapping
dataset.ErrEmptyDataset for datasets without samples.
*/
func Grow(ctx context.Context, s dataset.Dataset, opts ...Option) (*tree.Tree, error) {
	g := &grower{
		strategy: Strategy{
			TieBreaker: RandomTieBreaker(rand.NewSource(time.Now().UnixNano())),
			Logger:     zap.NewNop(),
		},
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.queue == nil {
		g.queue = queue.New()
	}
	if g.nodeStore == nil {
		g.nodeStore = tree.NewMemoryNodeStore()
	}
	t, err := Seed(ctx, s, g.queue, g.nodeStore)
	if err != nil {
		return nil, err
	}
	err = Work(ctx, t, g.queue, &g.strategy, defaultEmptyQueueSleep)
	if err != nil {
		return nil, fmt.Errorf("growing tree: %w", err)
	}
	return t, nil
}
