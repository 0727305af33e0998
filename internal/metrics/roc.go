// Package metrics computes receiver operating characteristic curves and the
// area under them for binary labels with positive class 1.
package metrics

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

const PositiveLabel = 1

var (
	ErrEmpty          = errors.New("metrics: no samples")
	ErrLengthMismatch = errors.New("metrics: labels and scores differ in length")
	ErrInvalidLabel   = errors.New("metrics: labels must be 0 or 1")
	ErrSingleClass    = errors.New("metrics: both classes must be present")
	ErrNaNScore       = errors.New("metrics: score is NaN")
)

// Point is one operating point of a ROC curve.
type Point struct {
	FPR       float64 `json:"fpr"`
	TPR       float64 `json:"tpr"`
	Threshold float64 `json:"threshold"`
}

// ROC holds a curve ordered from the strictest threshold (+Inf, at the
// origin) down to the most permissive one (at (1, 1)).
type ROC struct {
	FPR        []float64
	TPR        []float64
	Thresholds []float64
	Positives  int
	Negatives  int
}

func (r ROC) Points() []Point {
	points := make([]Point, len(r.FPR))
	for i := range r.FPR {
		points[i] = Point{FPR: r.FPR[i], TPR: r.TPR[i], Threshold: r.Thresholds[i]}
	}
	return points
}

// AUC integrates the curve with the trapezoidal rule.
func (r ROC) AUC() (float64, error) {
	return AUC(r.FPR, r.TPR)
}

type rocOptions struct {
	dropIntermediate bool
}

type ROCOption func(*rocOptions)

// WithDropIntermediate controls whether collinear points are dropped. They
// never change the area. Enabled by default.
func WithDropIntermediate(drop bool) ROCOption {
	return func(o *rocOptions) { o.dropIntermediate = drop }
}

// ROCCurve sweeps the decision threshold over every distinct score, in
// descending order, and records false and true positive rates at each step.
// The result only depends on the (label, score) pairs, not on their order.
func ROCCurve(labels []int, scores []float64, opts ...ROCOption) (ROC, error) {
	o := rocOptions{dropIntermediate: true}
	for _, opt := range opts {
		opt(&o)
	}

	if len(labels) != len(scores) {
		return ROC{}, fmt.Errorf("%w: %d labels, %d scores", ErrLengthMismatch, len(labels), len(scores))
	}
	if len(labels) == 0 {
		return ROC{}, ErrEmpty
	}

	type scoredLabel struct {
		score float64
		label int
	}

	pairs := make([]scoredLabel, len(labels))
	positives := 0
	for i, label := range labels {
		if label != 0 && label != PositiveLabel {
			return ROC{}, fmt.Errorf("%w: got %d at index %d", ErrInvalidLabel, label, i)
		}
		if math.IsNaN(scores[i]) {
			return ROC{}, fmt.Errorf("%w: index %d", ErrNaNScore, i)
		}
		if label == PositiveLabel {
			positives++
		}
		pairs[i] = scoredLabel{score: scores[i], label: label}
	}
	negatives := len(labels) - positives
	if positives == 0 || negatives == 0 {
		return ROC{}, fmt.Errorf("%w: %d positives, %d negatives", ErrSingleClass, positives, negatives)
	}

	// Sort by score (descending)
	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].score > pairs[j].score
	})

	// Cumulative counts at the last index of every distinct score.
	var tps, fps, thresholds []float64
	tp, fp := 0, 0
	for i, pair := range pairs {
		if pair.label == PositiveLabel {
			tp++
		} else {
			fp++
		}
		if i == len(pairs)-1 || pairs[i+1].score != pair.score {
			tps = append(tps, float64(tp))
			fps = append(fps, float64(fp))
			thresholds = append(thresholds, pair.score)
		}
	}

	if o.dropIntermediate && len(fps) > 2 {
		tps, fps, thresholds = dropCollinear(tps, fps, thresholds)
	}

	curve := ROC{
		FPR:        make([]float64, 0, len(fps)+1),
		TPR:        make([]float64, 0, len(tps)+1),
		Thresholds: make([]float64, 0, len(thresholds)+1),
		Positives:  positives,
		Negatives:  negatives,
	}
	curve.FPR = append(curve.FPR, 0)
	curve.TPR = append(curve.TPR, 0)
	curve.Thresholds = append(curve.Thresholds, math.Inf(1))
	for i := range fps {
		curve.FPR = append(curve.FPR, fps[i]/float64(negatives))
		curve.TPR = append(curve.TPR, tps[i]/float64(positives))
		curve.Thresholds = append(curve.Thresholds, thresholds[i])
	}

	return curve, nil
}

// dropCollinear keeps the end points and every point where the curve bends.
func dropCollinear(tps, fps, thresholds []float64) ([]float64, []float64, []float64) {
	n := len(fps)
	keptTPS := []float64{tps[0]}
	keptFPS := []float64{fps[0]}
	keptThresholds := []float64{thresholds[0]}

	for i := 1; i < n-1; i++ {
		bendFP := fps[i+1] - 2*fps[i] + fps[i-1]
		bendTP := tps[i+1] - 2*tps[i] + tps[i-1]
		if bendFP != 0 || bendTP != 0 {
			keptTPS = append(keptTPS, tps[i])
			keptFPS = append(keptFPS, fps[i])
			keptThresholds = append(keptThresholds, thresholds[i])
		}
	}

	keptTPS = append(keptTPS, tps[n-1])
	keptFPS = append(keptFPS, fps[n-1])
	keptThresholds = append(keptThresholds, thresholds[n-1])
	return keptTPS, keptFPS, keptThresholds
}

// ROCAUC returns the area under the ROC curve of labels and scores.
func ROCAUC(labels []int, scores []float64) (float64, error) {
	curve, err := ROCCurve(labels, scores)
	if err != nil {
		return 0, err
	}
	return curve.AUC()
}
