package classifiers

import (
	"context"
	"encoding/gob"
	"fmt"
	"io"
	"math"
	"math/rand"
	"runtime"
	"sort"

	"github.com/mikey/tweet-sentiment/internal/core"
	"golang.org/x/sync/errgroup"
)

// RandomForest is a bagged ensemble of gini CART trees over sparse features
type RandomForest struct {
	params Params
	trees  []tree
}

// NewRandomForest creates an unfitted forest.
// Params: n_estimators (50), max_depth (20), min_samples_split (2),
// max_samples (1.0, fraction of the training set drawn per tree), seed (42).
func NewRandomForest(params Params) *RandomForest {
	return &RandomForest{params: params}
}

// Kind returns the registry name
func (m *RandomForest) Kind() string { return KindRandomForest }

type treeNode struct {
	Feature   int
	Threshold float64
	Left      int
	Right     int
	Dist      []float64
}

type tree struct {
	Nodes []treeNode
}

// Fit grows the trees in parallel
func (m *RandomForest) Fit(ctx context.Context, samples []core.Sample, labels []core.Label) error {
	if err := validate(samples, labels); err != nil {
		return err
	}

	nTrees := max(m.params.Int("n_estimators", 50), 1)
	seed := int64(m.params.Int("seed", 42))
	drawn := max(int(m.params.Get("max_samples", 1.0)*float64(len(samples))), 1)
	grower := treeGrower{
		samples:  samples,
		labels:   labels,
		maxDepth: max(m.params.Int("max_depth", 20), 1),
		minSplit: max(m.params.Int("min_samples_split", 2), 2),
		mtry:     max(int(math.Ceil(math.Sqrt(float64(numFeatures(samples))))), 1),
	}

	trees := make([]tree, nTrees)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for t := range trees {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rng := rand.New(rand.NewSource(seed + int64(t)))
			bag := make([]int, drawn)
			for i := range bag {
				bag[i] = rng.Intn(len(samples))
			}
			trees[t] = grower.grow(rng, bag)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	m.trees = trees
	return nil
}

// PredictProba averages the leaf class distributions of every tree
func (m *RandomForest) PredictProba(sample core.Sample) ([]float64, error) {
	if len(m.trees) == 0 {
		return nil, core.ErrNotFitted
	}
	probs := make([]float64, core.NumClasses)
	for _, t := range m.trees {
		n := 0
		for t.Nodes[n].Left >= 0 {
			if sample.Features.Get(t.Nodes[n].Feature) <= t.Nodes[n].Threshold {
				n = t.Nodes[n].Left
			} else {
				n = t.Nodes[n].Right
			}
		}
		for k, p := range t.Nodes[n].Dist {
			probs[k] += p
		}
	}
	for k := range probs {
		probs[k] /= float64(len(m.trees))
	}
	return probs, nil
}

type forestState struct {
	Kind   string
	Params Params
	Trees  []tree
}

// Save writes the fitted trees
func (m *RandomForest) Save(w io.Writer) error {
	if len(m.trees) == 0 {
		return core.ErrNotFitted
	}
	if err := gob.NewEncoder(w).Encode(forestState{Kind: m.Kind(), Params: m.params, Trees: m.trees}); err != nil {
		return fmt.Errorf("failed to encode random forest: %w", err)
	}
	return nil
}

// Load restores trees written by Save
func (m *RandomForest) Load(r io.Reader) error {
	var state forestState
	if err := gob.NewDecoder(r).Decode(&state); err != nil {
		return fmt.Errorf("failed to decode random forest: %w", err)
	}
	if state.Kind != m.Kind() {
		return fmt.Errorf("model blob holds %s, not %s", state.Kind, m.Kind())
	}
	if len(state.Trees) == 0 {
		return fmt.Errorf("corrupt random forest: no trees")
	}
	m.params = state.Params
	m.trees = state.Trees
	return nil
}

type treeGrower struct {
	samples  []core.Sample
	labels   []core.Label
	maxDepth int
	minSplit int
	mtry     int
}

func (g *treeGrower) grow(rng *rand.Rand, bag []int) tree {
	t := tree{}
	g.build(&t, rng, bag, 0)
	return t
}

// build appends the subtree for idx and returns its node index
func (g *treeGrower) build(t *tree, rng *rand.Rand, idx []int, depth int) int {
	counts := g.classCounts(idx)
	node := len(t.Nodes)
	t.Nodes = append(t.Nodes, treeNode{Left: -1, Right: -1, Dist: distribution(counts, len(idx))})

	if depth >= g.maxDepth || len(idx) < g.minSplit || gini(counts, len(idx)) == 0 {
		return node
	}

	feature, threshold, ok := g.bestSplit(rng, idx, counts)
	if !ok {
		return node
	}

	var left, right []int
	for _, i := range idx {
		if g.samples[i].Features.Get(feature) <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	l := g.build(t, rng, left, depth+1)
	r := g.build(t, rng, right, depth+1)
	t.Nodes[node].Feature = feature
	t.Nodes[node].Threshold = threshold
	t.Nodes[node].Left = l
	t.Nodes[node].Right = r
	return node
}

func (g *treeGrower) classCounts(idx []int) [core.NumClasses]int {
	var counts [core.NumClasses]int
	for _, i := range idx {
		counts[g.labels[i]]++
	}
	return counts
}

// bestSplit searches mtry random features present in the node
func (g *treeGrower) bestSplit(rng *rand.Rand, idx []int, counts [core.NumClasses]int) (int, float64, bool) {
	present := make(map[int]struct{})
	for _, i := range idx {
		for _, f := range g.samples[i].Features.Indices {
			present[f] = struct{}{}
		}
	}
	if len(present) == 0 {
		return 0, 0, false
	}
	candidates := make([]int, 0, len(present))
	for f := range present {
		candidates = append(candidates, f)
	}
	sort.Ints(candidates)
	rng.Shuffle(len(candidates), func(i, j int) { candidates[i], candidates[j] = candidates[j], candidates[i] })
	if len(candidates) > g.mtry {
		candidates = candidates[:g.mtry]
	}

	n := len(idx)
	parent := gini(counts, n)
	bestGain, bestFeature, bestThreshold := 0.0, 0, 0.0

	type point struct {
		value float64
		label core.Label
	}
	points := make([]point, n)
	for _, f := range candidates {
		for k, i := range idx {
			points[k] = point{value: g.samples[i].Features.Get(f), label: g.labels[i]}
		}
		sort.Slice(points, func(a, b int) bool { return points[a].value < points[b].value })

		var left [core.NumClasses]int
		for k := 0; k < n-1; k++ {
			left[points[k].label]++
			if points[k].value == points[k+1].value {
				continue
			}
			var right [core.NumClasses]int
			for c := range right {
				right[c] = counts[c] - left[c]
			}
			nl, nr := k+1, n-k-1
			impurity := (float64(nl)*gini(left, nl) + float64(nr)*gini(right, nr)) / float64(n)
			if gain := parent - impurity; gain > bestGain {
				bestGain = gain
				bestFeature = f
				bestThreshold = (points[k].value + points[k+1].value) / 2
			}
		}
	}
	return bestFeature, bestThreshold, bestGain > 0
}

func gini(counts [core.NumClasses]int, n int) float64 {
	if n == 0 {
		return 0
	}
	sum := 0.0
	for _, c := range counts {
		p := float64(c) / float64(n)
		sum += p * p
	}
	return 1 - sum
}

func distribution(counts [core.NumClasses]int, n int) []float64 {
	dist := make([]float64, core.NumClasses)
	if n == 0 {
		for k := range dist {
			dist[k] = 1.0 / core.NumClasses
		}
		return dist
	}
	for k, c := range counts {
		dist[k] = float64(c) / float64(n)
	}
	return dist
}
