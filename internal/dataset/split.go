package dataset

import (
	"math"
	"math/rand"

	"github.com/mikey/tweet-sentiment/internal/core"
)

// Split shuffles records with seed and holds out testSize of them for testing
func Split(records []core.Record, testSize float64, seed int64) (train, test []core.Record) {
	trainIdx, testIdx := SplitIndices(len(records), testSize, seed)
	train = make([]core.Record, len(trainIdx))
	for i, j := range trainIdx {
		train[i] = records[j]
	}
	test = make([]core.Record, len(testIdx))
	for i, j := range testIdx {
		test[i] = records[j]
	}
	return train, test
}

// SplitIndices shuffles 0..n-1 with seed and returns the train and test
// positions, the test part holding ceil(n*testSize) of them
func SplitIndices(n int, testSize float64, seed int64) (train, test []int) {
	idx := rand.New(rand.NewSource(seed)).Perm(n)

	nTest := 0
	if testSize > 0 {
		nTest = min(int(math.Ceil(float64(n)*testSize)), n)
	}
	return idx[nTest:], idx[:nTest]
}

// Fold is one cross-validation split expressed as sample indices
type Fold struct {
	Train []int
	Test  []int
}

// StratifiedKFold splits indices into k folds that preserve class proportions.
// Samples of each class are dealt round-robin in their original order.
func StratifiedKFold(labels []core.Label, k int) []Fold {
	if k < 2 {
		k = 2
	}
	assign := make([]int, len(labels))
	var seen [core.NumClasses]int
	for i, l := range labels {
		assign[i] = seen[l] % k
		seen[l]++
	}

	folds := make([]Fold, k)
	for i := range labels {
		for f := range folds {
			if assign[i] == f {
				folds[f].Test = append(folds[f].Test, i)
			} else {
				folds[f].Train = append(folds[f].Train, i)
			}
		}
	}
	return folds
}
