package service

import (
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/bibbank/creditrisk/internal/domain/model"
	"github.com/bibbank/creditrisk/internal/domain/valueobject"
)

// ---------------------------------------------------------------------------
// Trainer – domain service
// ---------------------------------------------------------------------------

// TrainingExample pairs an encoded feature vector with its observed outcome.
type TrainingExample struct {
	Vector    valueobject.FeatureVector
	Defaulted bool
}

// TrainerConfig holds the optimization hyperparameters. All values are fixed
// per run, so identical inputs always produce identical weights.
type TrainerConfig struct {
	LearningRate    float64
	Steps           int
	L2              float64
	Seed            int64
	MinRecords      int
	HoldoutFraction float64
}

// DefaultTrainerConfig returns the production hyperparameters.
func DefaultTrainerConfig() TrainerConfig {
	return TrainerConfig{
		LearningRate:    0.2,
		Steps:           1200,
		L2:              0.08,
		Seed:            7,
		MinRecords:      30,
		HoldoutFraction: 0.2,
	}
}

// Trainer fits a regularized logistic-regression classifier on labeled
// historical records via full-batch gradient descent. It is a pure domain
// service: it performs no I/O and never decides the scoring threshold.
type Trainer struct {
	cfg    TrainerConfig
	schema valueobject.FeatureSchema
}

// NewTrainer returns a trainer bound to a feature schema.
func NewTrainer(schema valueobject.FeatureSchema, cfg TrainerConfig) *Trainer {
	if cfg.Steps <= 0 {
		cfg = DefaultTrainerConfig()
	}
	return &Trainer{cfg: cfg, schema: schema}
}

// Schema returns the feature schema the trainer encodes against.
func (t *Trainer) Schema() valueobject.FeatureSchema { return t.schema }

// Train fits the model and returns a new immutable artifact. It fails with
// *InsufficientDataError below the minimum record count and with
// *LabelImbalanceError when either outcome class is absent. Normalization
// statistics are computed from the training split only and captured inside
// the artifact so that inference reproduces them exactly.
func (t *Trainer) Train(examples []TrainingExample, now time.Time) (model.ModelArtifact, error) {
	if len(examples) < t.cfg.MinRecords {
		return model.ModelArtifact{}, &InsufficientDataError{
			Records:    len(examples),
			MinRecords: t.cfg.MinRecords,
		}
	}

	var defaulted, repaid []int
	for i, ex := range examples {
		if ex.Vector.SchemaVersion() != t.schema.Version() {
			return model.ModelArtifact{}, &SchemaMismatchError{
				VectorVersion:   ex.Vector.SchemaVersion(),
				ArtifactVersion: t.schema.Version(),
			}
		}
		if ex.Defaulted {
			defaulted = append(defaulted, i)
		} else {
			repaid = append(repaid, i)
		}
	}
	if len(defaulted) == 0 || len(repaid) == 0 {
		return model.ModelArtifact{}, &LabelImbalanceError{
			Defaulted: len(defaulted),
			Repaid:    len(repaid),
		}
	}

	rng := rand.New(rand.NewSource(t.cfg.Seed))

	// Stratified holdout split, deterministic for a fixed seed.
	holdoutIdx := make(map[int]bool)
	for _, class := range [][]int{defaulted, repaid} {
		shuffled := make([]int, len(class))
		copy(shuffled, class)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		k := int(t.cfg.HoldoutFraction * float64(len(shuffled)))
		for _, idx := range shuffled[:k] {
			holdoutIdx[idx] = true
		}
	}

	var trainX, holdX [][]float64
	var trainY, holdY []float64
	for i, ex := range examples {
		y := 0.0
		if ex.Defaulted {
			y = 1.0
		}
		if holdoutIdx[i] {
			holdX = append(holdX, ex.Vector.Values())
			holdY = append(holdY, y)
		} else {
			trainX = append(trainX, ex.Vector.Values())
			trainY = append(trainY, y)
		}
	}

	dim := t.schema.Len()
	means, scales := normalizationStats(trainX, dim)
	trainZ := standardize(trainX, means, scales)

	weights := make([]float64, dim)
	for i := range weights {
		weights[i] = rng.NormFloat64() * 0.01
	}
	bias := 0.0

	n := float64(len(trainZ))
	for step := 0; step < t.cfg.Steps; step++ {
		gradW := make([]float64, dim)
		gradB := 0.0
		for i, z := range trainZ {
			p := stableSigmoid(dot(z, weights) + bias)
			diff := p - trainY[i]
			for j, v := range z {
				gradW[j] += diff * v
			}
			gradB += diff
		}
		for j := range weights {
			weights[j] -= t.cfg.LearningRate * (gradW[j]/n + t.cfg.L2*weights[j])
		}
		bias -= t.cfg.LearningRate * (gradB / n)
	}

	// Evaluate on the holdout split; fall back to the training split when the
	// holdout is empty or single-class (tiny datasets).
	evalX, evalY := holdX, holdY
	if !hasBothClasses(holdY) {
		evalX, evalY = trainX, trainY
	}
	evalZ := standardize(evalX, means, scales)
	probs := make([]float64, len(evalZ))
	for i, z := range evalZ {
		probs[i] = stableSigmoid(dot(z, weights) + bias)
	}
	accuracy := accuracyAt(probs, evalY, 0.5)
	auc := rankAUC(probs, evalY)

	return model.NewModelArtifact(
		t.schema.Version(),
		t.schema.FeatureNames(),
		means, scales, weights, bias,
		now,
		len(examples),
		accuracy, auc,
	)
}

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

func normalizationStats(rows [][]float64, dim int) (means, scales []float64) {
	means = make([]float64, dim)
	scales = make([]float64, dim)

	n := float64(len(rows))
	for _, row := range rows {
		for j, v := range row {
			means[j] += v
		}
	}
	for j := range means {
		means[j] /= n
	}
	for _, row := range rows {
		for j, v := range row {
			d := v - means[j]
			scales[j] += d * d
		}
	}
	for j := range scales {
		scales[j] = math.Sqrt(scales[j] / n)
		if scales[j] == 0 {
			scales[j] = 1
		}
	}
	return means, scales
}

func standardize(rows [][]float64, means, scales []float64) [][]float64 {
	out := make([][]float64, len(rows))
	for i, row := range rows {
		z := make([]float64, len(row))
		for j, v := range row {
			z[j] = (v - means[j]) / scales[j]
		}
		out[i] = z
	}
	return out
}

func dot(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

func hasBothClasses(ys []float64) bool {
	var pos, neg bool
	for _, y := range ys {
		if y == 1 {
			pos = true
		} else {
			neg = true
		}
	}
	return pos && neg
}

func accuracyAt(probs, ys []float64, threshold float64) float64 {
	if len(probs) == 0 {
		return 0
	}
	correct := 0
	for i, p := range probs {
		pred := 0.0
		if p >= threshold {
			pred = 1.0
		}
		if pred == ys[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(probs))
}

// rankAUC computes the area under the ROC curve via the Mann-Whitney U
// statistic, with tied scores counted as half.
func rankAUC(probs, ys []float64) float64 {
	type scored struct {
		p float64
		y float64
	}
	items := make([]scored, len(probs))
	for i := range probs {
		items[i] = scored{p: probs[i], y: ys[i]}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].p < items[j].p })

	var nPos, nNeg float64
	for _, it := range items {
		if it.y == 1 {
			nPos++
		} else {
			nNeg++
		}
	}
	if nPos == 0 || nNeg == 0 {
		return 0.5
	}

	// Average ranks over ties.
	ranks := make([]float64, len(items))
	for i := 0; i < len(items); {
		j := i
		for j < len(items) && items[j].p == items[i].p {
			j++
		}
		avg := float64(i+j+1) / 2.0
		for k := i; k < j; k++ {
			ranks[k] = avg
		}
		i = j
	}

	var rankSumPos float64
	for i, it := range items {
		if it.y == 1 {
			rankSumPos += ranks[i]
		}
	}
	u := rankSumPos - nPos*(nPos+1)/2
	return u / (nPos * nNeg)
}
