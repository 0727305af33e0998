package evaluation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tensorplex-labs/evalkit/internal/report"
)

func failingStage(context.Context, *report.EvalInput, *report.EvalReport) error {
	return errors.New("boom")
}

func TestInferNameFromFunc(t *testing.T) {
	p := NewPipeline()
	assert.Equal(t, "rocStage", InferNameFromFunc(p.rocStage))
	assert.Equal(t, "failingStage", InferNameFromFunc(failingStage))
	assert.Equal(t, "unknown", InferNameFromFunc(42))
}

func TestRunStages_StopsAtFirstError(t *testing.T) {
	var ran []string
	record := func(name string) Stage {
		return func(context.Context, *report.EvalInput, *report.EvalReport) error {
			ran = append(ran, name)
			return nil
		}
	}

	err := runStages(context.Background(), nil, nil, record("a"), failingStage, record("b"))
	assert.EqualError(t, err, "failingStage: boom")
	assert.Equal(t, []string{"a"}, ran)
}
