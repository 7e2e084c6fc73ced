package bayesopt

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intBounds() Bounds {
	return Bounds{
		{Name: "a", Min: 0, Max: 10, Kind: Integer},
		{Name: "b", Min: 0, Max: 10, Kind: Integer},
	}
}

func constUtility(float64) UtilityFunc {
	return func([]float64) float64 { return 0.1 }
}

func floatPtr(v float64) *float64 { return &v }

// Pool of 5 points all converged to (3,3) with varying utility: clustering
// collapses them to one representative and backfill synthesizes the rest.
func TestSelectCandidates_BackfillFromSingleCluster(t *testing.T) {
	pool := []Candidate{
		{Params: []float64{3, 3}, Utility: 1.0, IsOptimum: true},
		{Params: []float64{3, 3}, Utility: 2.0, IsOptimum: true},
		{Params: []float64{3, 3}, Utility: 5.0, IsOptimum: true},
		{Params: []float64{3, 3}, Utility: 3.0, IsOptimum: true},
		{Params: []float64{3, 3}, Utility: 4.0, IsOptimum: true},
	}
	bounds := intBounds()

	res, err := SelectCandidates(pool, nil, bounds, constUtility(0.1), SelectConfig{
		RunNew:            3,
		MinClusterUtility: floatPtr(0.5),
		Rand:              rand.New(rand.NewSource(7)),
	})
	require.NoError(t, err)
	require.True(t, res.OK(), "expected a batch, got failure %+v", res.Failure)
	require.Len(t, res.Batch, 3)

	// The cluster representative comes first, untouched.
	assert.Equal(t, []float64{3, 3}, res.Batch[0].Params)
	assert.True(t, res.Batch[0].IsOptimum)
	assert.Equal(t, 5.0, res.Batch[0].Utility)

	// The two backfilled points are synthesized, freshly scored, integer
	// valued and inside bounds.
	for _, c := range res.Batch[1:] {
		assert.False(t, c.IsOptimum)
		assert.Equal(t, 0.1, c.Utility)
		for d, v := range c.Params {
			assert.Equal(t, float64(int(v)), v, "dimension %d not on integer grid", d)
			assert.GreaterOrEqual(t, v, bounds[d].Min)
			assert.LessOrEqual(t, v, bounds[d].Max)
		}
	}

	assertBatchUnique(t, res.Batch, nil)
}

// With no cluster threshold and the best point already in history, phase A
// must perturb it to a nearby unique coordinate.
func TestSelectCandidates_BestPointCollidesWithHistory(t *testing.T) {
	var pool []Candidate
	for i := 0; i < 10; i++ {
		pool = append(pool, Candidate{
			Params:    []float64{float64(i), float64(i)},
			Utility:   float64(i),
			IsOptimum: true,
		})
	}
	history := [][]float64{{9, 9}} // the best point's exact coordinates

	res, err := SelectCandidates(pool, history, intBounds(), constUtility(0.1), SelectConfig{
		RunNew: 1,
		Rand:   rand.New(rand.NewSource(11)),
	})
	require.NoError(t, err)
	require.True(t, res.OK())
	require.Len(t, res.Batch, 1)

	got := res.Batch[0]
	assert.NotEqual(t, []float64{9, 9}, got.Params)
	assert.False(t, got.IsOptimum, "perturbed point must lose its optimum mark")
	assertBatchUnique(t, res.Batch, history)
}

// When history is clear the single best point passes through untouched.
func TestSelectCandidates_BestPointPassesThrough(t *testing.T) {
	pool := []Candidate{
		{Params: []float64{2, 2}, Utility: 1, IsOptimum: true},
		{Params: []float64{7, 4}, Utility: 9, IsOptimum: true},
	}

	res, err := SelectCandidates(pool, nil, intBounds(), constUtility(0.1), SelectConfig{
		RunNew: 1,
		Rand:   rand.New(rand.NewSource(1)),
	})
	require.NoError(t, err)
	require.True(t, res.OK())
	require.Len(t, res.Batch, 1)
	assert.Equal(t, []float64{7, 4}, res.Batch[0].Params)
	assert.True(t, res.Batch[0].IsOptimum)
}

func TestSelectCandidates_DuplicatesExhausted(t *testing.T) {
	// One integer dimension with only two values, both already scored.
	bounds := Bounds{{Name: "a", Min: 0, Max: 1, Kind: Integer}}
	pool := []Candidate{{Params: []float64{0}, Utility: 1, IsOptimum: true}}
	history := [][]float64{{0}, {1}}

	res, err := SelectCandidates(pool, history, bounds, constUtility(0.1), SelectConfig{
		RunNew:   1,
		MaxTries: 50, // the space is exhausted, no point burning the full ceiling
		Rand:     rand.New(rand.NewSource(3)),
	})
	require.NoError(t, err)
	require.False(t, res.OK())
	assert.Equal(t, FailDuplicatesExhausted, res.Failure.Code)
	assert.Nil(t, res.Batch, "no partial batch on failure")
}

func TestSelectCandidates_BackfillExhausted(t *testing.T) {
	// Two integer dimensions with two values each: four combinations total,
	// so a request for five unique points cannot be satisfied.
	bounds := Bounds{
		{Name: "a", Min: 3, Max: 4, Kind: Integer},
		{Name: "b", Min: 3, Max: 4, Kind: Integer},
	}
	pool := []Candidate{{Params: []float64{3, 3}, Utility: 1, IsOptimum: true}}

	res, err := SelectCandidates(pool, nil, bounds, constUtility(0.1), SelectConfig{
		RunNew:   5,
		MaxTries: 50,
		Rand:     rand.New(rand.NewSource(5)),
	})
	require.NoError(t, err)
	require.False(t, res.OK())
	assert.Equal(t, FailBackfillExhausted, res.Failure.Code)
	assert.Nil(t, res.Batch)
}

func TestSelectCandidates_PerturbFailurePropagates(t *testing.T) {
	// Zero-width bound: the duplicate cannot be perturbed anywhere.
	bounds := Bounds{{Name: "a", Min: 5, Max: 5, Kind: Continuous}}
	pool := []Candidate{{Params: []float64{5}, Utility: 1, IsOptimum: true}}
	history := [][]float64{{5}}

	res, err := SelectCandidates(pool, history, bounds, constUtility(0.1), SelectConfig{
		RunNew: 1,
		Rand:   rand.New(rand.NewSource(2)),
	})
	require.NoError(t, err)
	require.False(t, res.OK())
	assert.Equal(t, FailPerturb, res.Failure.Code)
}

func TestSelectCandidates_InputContract(t *testing.T) {
	bounds := intBounds()
	pool := []Candidate{{Params: []float64{1, 1}, Utility: 1}}
	rng := rand.New(rand.NewSource(1))

	_, err := SelectCandidates(nil, nil, bounds, constUtility(0), SelectConfig{RunNew: 1, Rand: rng})
	assert.Error(t, err, "empty pool")

	_, err = SelectCandidates(pool, nil, bounds, constUtility(0), SelectConfig{RunNew: 0, Rand: rng})
	assert.Error(t, err, "zero batch size")

	_, err = SelectCandidates(pool, nil, bounds, constUtility(0), SelectConfig{RunNew: 1})
	assert.Error(t, err, "missing rand")

	_, err = SelectCandidates(pool, nil, bounds, nil, SelectConfig{RunNew: 1, Rand: rng})
	assert.Error(t, err, "missing utility")

	_, err = SelectCandidates(pool, nil, Bounds{}, constUtility(0), SelectConfig{RunNew: 1, Rand: rng})
	assert.Error(t, err, "empty bounds")
}

// Larger randomized runs keep the full uniqueness and cardinality
// invariants.
func TestSelectCandidates_Invariants(t *testing.T) {
	bounds := Bounds{
		{Name: "x", Min: -2, Max: 2},
		{Name: "y", Min: 0, Max: 1},
	}
	rng := rand.New(rand.NewSource(42))

	var history [][]float64
	for round := 0; round < 10; round++ {
		var pool []Candidate
		for i := 0; i < 20; i++ {
			pool = append(pool, Candidate{
				Params:    []float64{rng.Float64()*4 - 2, rng.Float64()},
				Utility:   rng.Float64(),
				IsOptimum: true,
			})
		}

		res, err := SelectCandidates(pool, history, bounds, constUtility(0.1), SelectConfig{
			RunNew:            4,
			MinClusterUtility: floatPtr(0.3),
			Rand:              rng,
		})
		require.NoError(t, err)
		require.True(t, res.OK())
		require.Len(t, res.Batch, 4, "batch must reach the requested size")
		assertBatchUnique(t, res.Batch, history)

		for _, c := range res.Batch {
			history = append(history, c.Params)
		}
	}
}

// History slices with spare backing capacity must come back untouched even
// when both retry phases build comparison sets from them.
func TestSelectCandidates_HistoryIsReadOnly(t *testing.T) {
	bounds := Bounds{
		{Name: "x", Min: 0, Max: 10},
		{Name: "y", Min: 0, Max: 10},
	}
	backing := [][]float64{
		{5, 5},
		{111, 111},
		{222, 222},
	}
	history := backing[:1]

	// The best point collides with history (phase A perturbs) and the batch
	// is backfilled to two points (phase B draws), so both phases run.
	pool := []Candidate{{Params: []float64{5, 5}, Utility: 1, IsOptimum: true}}
	res, err := SelectCandidates(pool, history, bounds, constUtility(0.1), SelectConfig{
		RunNew: 2,
		Rand:   rand.New(rand.NewSource(13)),
	})
	require.NoError(t, err)
	require.True(t, res.OK())

	assert.Equal(t, []float64{111, 111}, backing[1], "spare capacity behind history was overwritten")
	assert.Equal(t, []float64{222, 222}, backing[2], "spare capacity behind history was overwritten")
}

// assertBatchUnique checks the output invariant: no two batch points are
// identical and none matches history exactly.
func assertBatchUnique(t *testing.T, batch []Candidate, history [][]float64) {
	t.Helper()
	for i, c := range batch {
		for j, other := range batch {
			if i != j && rowsEqual(c.Params, other.Params, 0) {
				t.Fatalf("batch points %d and %d are identical: %v", i, j, c.Params)
			}
		}
		for _, h := range history {
			if rowsEqual(c.Params, h, 0) {
				t.Fatalf("batch point %d equals history point %v", i, h)
			}
		}
	}
}
