// Package report persists evaluation inputs and results as JSON files,
// zstd-compressed when the path ends in .zst.
package report

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/klauspost/compress/zstd"

	"github.com/tensorplex-labs/evalkit/internal/metrics"
)

const CompressedExt = ".zst"

var ErrInvalidInput = errors.New("report: invalid evaluation input")

// CurvePoint is a ROC operating point. Threshold is nil for the unbounded
// threshold at the origin, which JSON cannot represent.
type CurvePoint struct {
	FPR       float64  `json:"fpr"`
	TPR       float64  `json:"tpr"`
	Threshold *float64 `json:"threshold"`
}

func NewCurve(points []metrics.Point) []CurvePoint {
	out := make([]CurvePoint, len(points))
	for i, p := range points {
		out[i] = CurvePoint{FPR: p.FPR, TPR: p.TPR}
		if !math.IsInf(p.Threshold, 0) {
			th := p.Threshold
			out[i].Threshold = &th
		}
	}
	return out
}

// EvalReport is the summary written at the end of an evaluation run.
type EvalReport struct {
	ModelName    string            `json:"model_name"`
	Seed         int64             `json:"seed"`
	CreatedAt    time.Time         `json:"created_at"`
	NumSamples   int               `json:"num_samples"`
	Positives    int               `json:"positives"`
	Negatives    int               `json:"negatives"`
	AUC          float64           `json:"auc"`
	Curve        []CurvePoint      `json:"curve"`
	KLDivergence *float64          `json:"kl_divergence,omitempty"`
	Artifacts    map[string]string `json:"artifacts,omitempty"`
}

// Write encodes r as indented JSON at path.
func Write(path string, r *EvalReport) error {
	data, err := sonic.ConfigStd.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	return writeFile(path, data)
}

func Read(path string) (*EvalReport, error) {
	var r EvalReport
	if err := readJSON(path, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func writeFile(path string, data []byte) error {
	if strings.HasSuffix(path, CompressedExt) {
		var buf bytes.Buffer
		w, err := zstd.NewWriter(&buf)
		if err != nil {
			return fmt.Errorf("zstd: failed to create writer: %w", err)
		}
		if _, err := w.Write(data); err != nil {
			_ = w.Close()
			return fmt.Errorf("zstd: failed to compress %s: %w", path, err)
		}
		if err := w.Close(); err != nil {
			return fmt.Errorf("zstd: failed to compress %s: %w", path, err)
		}
		data = buf.Bytes()
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	if strings.HasSuffix(path, CompressedExt) {
		r, err := zstd.NewReader(bytes.NewReader(data))
		if err != nil {
			return fmt.Errorf("zstd: failed to create reader: %w", err)
		}
		defer r.Close()

		out, err := io.ReadAll(r)
		if err != nil {
			return fmt.Errorf("zstd: failed to decompress %s: %w", path, err)
		}
		data = out
	}

	if err := sonic.Unmarshal(data, v); err != nil {
		return fmt.Errorf("unmarshal %s: %w", path, err)
	}
	return nil
}
