// Package tsne projects high-dimensional points to a low-dimensional space
// with exact t-distributed stochastic neighbor embedding.
package tsne

import (
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/tensorplex-labs/evalkit/internal/array"
)

var (
	ErrPerplexity = errors.New("tsne: perplexity must be positive and less than the number of samples")
	ErrParams     = errors.New("tsne: invalid parameters")
)

const (
	exaggerationIterations = 250
	initialMomentum        = 0.5
	finalMomentum          = 0.8
	minGain                = 0.01
	machineEpsilon         = 1e-12
	binarySearchSteps      = 100
	entropyTolerance       = 1e-5
	logEvery               = 50
)

// TSNE holds the projection parameters. A zero LearningRate selects
// max(n / EarlyExaggeration / 4, 50).
type TSNE struct {
	Components        int
	Perplexity        float64
	Iterations        int
	LearningRate      float64
	EarlyExaggeration float64
	Verbose           bool

	kl float64
}

type Option func(*TSNE)

func WithComponents(n int) Option {
	return func(t *TSNE) { t.Components = n }
}

func WithPerplexity(p float64) Option {
	return func(t *TSNE) { t.Perplexity = p }
}

func WithIterations(n int) Option {
	return func(t *TSNE) { t.Iterations = n }
}

func WithLearningRate(lr float64) Option {
	return func(t *TSNE) { t.LearningRate = lr }
}

func WithEarlyExaggeration(e float64) Option {
	return func(t *TSNE) { t.EarlyExaggeration = e }
}

func WithVerbose(v bool) Option {
	return func(t *TSNE) { t.Verbose = v }
}

func New(opts ...Option) *TSNE {
	t := &TSNE{
		Components:        2,
		Perplexity:        30,
		Iterations:        500,
		EarlyExaggeration: 12,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// KLDivergence is the Kullback-Leibler divergence between the input and
// output affinities after the last FitTransform.
func (t *TSNE) KLDivergence() float64 { return t.kl }

// FitTransform embeds the rows of x. The initial layout is drawn from the
// array generator, so results are reproducible after seeding.
func (t *TSNE) FitTransform(x mat.Matrix) (*mat.Dense, error) {
	n, _ := x.Dims()
	if t.Perplexity <= 0 || t.Perplexity >= float64(n) {
		return nil, fmt.Errorf("%w: perplexity %.1f with %d samples", ErrPerplexity, t.Perplexity, n)
	}
	if t.Components < 1 || t.Iterations < 1 || t.EarlyExaggeration <= 0 || t.LearningRate < 0 {
		return nil, fmt.Errorf("%w: %+v", ErrParams, *t)
	}

	lr := t.LearningRate
	if lr == 0 {
		lr = math.Max(float64(n)/t.EarlyExaggeration/4, 50)
	}

	p := jointProbabilities(squaredDistances(x), t.Perplexity)

	dims := t.Components
	y := mat.NewDense(n, dims, array.Normal(0, 1e-4, n*dims).Data())
	update := mat.NewDense(n, dims, nil)
	gains := mat.NewDense(n, dims, nil)
	for i := 0; i < n; i++ {
		for d := 0; d < dims; d++ {
			gains.Set(i, d, 1)
		}
	}

	num := mat.NewDense(n, n, nil)
	q := mat.NewDense(n, n, nil)
	grad := make([]float64, dims)

	for iter := 0; iter < t.Iterations; iter++ {
		exaggeration, momentum := 1.0, finalMomentum
		if iter < exaggerationIterations {
			exaggeration, momentum = t.EarlyExaggeration, initialMomentum
		}

		studentT(y, num, q)

		for i := 0; i < n; i++ {
			for d := range grad {
				grad[d] = 0
			}
			yi := y.RawRowView(i)
			for j := 0; j < n; j++ {
				if i == j {
					continue
				}
				mult := (exaggeration*p.At(i, j) - q.At(i, j)) * num.At(i, j)
				yj := y.RawRowView(j)
				for d := range grad {
					grad[d] += 4 * mult * (yi[d] - yj[d])
				}
			}

			for d, g := range grad {
				u := update.At(i, d)
				gain := adaptGain(gains.At(i, d), g, u)
				gains.Set(i, d, gain)
				update.Set(i, d, momentum*u-lr*gain*g)
			}
		}

		y.Add(y, update)
		center(y)

		if t.Verbose && (iter+1)%logEvery == 0 {
			log.Debug().
				Int("iteration", iter+1).
				Float64("kl_divergence", klDivergence(p, q, exaggeration)).
				Msg("t-SNE progress")
		}
	}

	studentT(y, num, q)
	t.kl = klDivergence(p, q, 1)
	if t.Verbose {
		log.Debug().Int("iterations", t.Iterations).Float64("kl_divergence", t.kl).Msg("t-SNE finished")
	}

	return y, nil
}

// adaptGain grows the step gain while the gradient opposes the previous
// update and shrinks it otherwise, including on a zero update.
func adaptGain(gain, grad, update float64) float64 {
	if grad*update < 0 {
		gain += 0.2
	} else {
		gain *= 0.8
	}
	return math.Max(gain, minGain)
}

func squaredDistances(x mat.Matrix) *mat.Dense {
	n, _ := x.Dims()
	rows := make([][]float64, n)
	for i := range rows {
		rows[i] = mat.Row(nil, i, x)
	}

	dist := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := floats.Distance(rows[i], rows[j], 2)
			dist.Set(i, j, d*d)
			dist.Set(j, i, d*d)
		}
	}
	return dist
}

// jointProbabilities finds, for each point, the Gaussian precision whose
// conditional distribution has the requested perplexity, then symmetrizes.
func jointProbabilities(dist *mat.Dense, perplexity float64) *mat.Dense {
	n, _ := dist.Dims()
	target := math.Log(perplexity)
	cond := mat.NewDense(n, n, nil)
	row := make([]float64, n)

	for i := 0; i < n; i++ {
		beta, lo, hi := 1.0, math.Inf(-1), math.Inf(1)
		di := dist.RawRowView(i)

		for step := 0; step < binarySearchSteps; step++ {
			sum, weighted := 0.0, 0.0
			for j := 0; j < n; j++ {
				if j == i {
					row[j] = 0
					continue
				}
				row[j] = math.Exp(-di[j] * beta)
				sum += row[j]
				weighted += di[j] * row[j]
			}
			if sum == 0 {
				sum = machineEpsilon
			}
			entropy := math.Log(sum) + beta*weighted/sum
			floats.Scale(1/sum, row)

			diff := entropy - target
			if math.Abs(diff) < entropyTolerance {
				break
			}
			if diff > 0 {
				lo = beta
				if math.IsInf(hi, 1) {
					beta *= 2
				} else {
					beta = (beta + hi) / 2
				}
			} else {
				hi = beta
				if math.IsInf(lo, -1) {
					beta /= 2
				} else {
					beta = (beta + lo) / 2
				}
			}
		}
		cond.SetRow(i, row)
	}

	joint := mat.NewDense(n, n, nil)
	joint.Add(cond, cond.T())
	total := mat.Sum(joint)
	joint.Apply(func(_, _ int, v float64) float64 {
		return math.Max(v/total, machineEpsilon)
	}, joint)
	return joint
}

// studentT fills num with the heavy-tailed kernel 1/(1+|yi-yj|^2) and q with
// its normalized form.
func studentT(y, num, q *mat.Dense) {
	n, _ := y.Dims()
	sum := 0.0
	for i := 0; i < n; i++ {
		num.Set(i, i, 0)
		for j := i + 1; j < n; j++ {
			d := floats.Distance(y.RawRowView(i), y.RawRowView(j), 2)
			v := 1 / (1 + d*d)
			num.Set(i, j, v)
			num.Set(j, i, v)
			sum += 2 * v
		}
	}
	q.Apply(func(i, j int, _ float64) float64 {
		if i == j {
			return 0
		}
		return math.Max(num.At(i, j)/sum, machineEpsilon)
	}, q)
}

func klDivergence(p, q *mat.Dense, exaggeration float64) float64 {
	n, _ := p.Dims()
	kl := 0.0
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			pij := exaggeration * p.At(i, j)
			kl += pij * math.Log(pij/q.At(i, j))
		}
	}
	return kl
}

func center(y *mat.Dense) {
	n, dims := y.Dims()
	for d := 0; d < dims; d++ {
		col := mat.Col(nil, d, y)
		mean := floats.Sum(col) / float64(n)
		for i := 0; i < n; i++ {
			y.Set(i, d, y.At(i, d)-mean)
		}
	}
}
