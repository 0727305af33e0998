package evaluation

import (
	"context"
	"fmt"
	"reflect"
	"runtime"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tensorplex-labs/evalkit/internal/report"
	"github.com/tensorplex-labs/evalkit/internal/utils/logger"
)

// Stage is one step of a run. It reads the input and fills in the report.
type Stage func(ctx context.Context, in *report.EvalInput, r *report.EvalReport) error

// runStages executes stages in order, checking ctx before each one.
func runStages(ctx context.Context, in *report.EvalInput, r *report.EvalReport, stages ...Stage) error {
	for _, stage := range stages {
		if err := ctx.Err(); err != nil {
			return err
		}

		name := InferNameFromFunc(stage)
		start := time.Now()
		if err := stage(ctx, in, r); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		logger.Sugar().Debugw("Stage finished", "stage", name, "elapsed", time.Since(start))
	}
	return nil
}

// InferNameFromFunc returns the bare name of a function or method value.
func InferNameFromFunc(f any) string {
	v := reflect.ValueOf(f)
	if v.Kind() != reflect.Func {
		log.Warn().Msgf("Expected a function, got: %s", v.Kind())
		return "unknown"
	}

	funcPtr := runtime.FuncForPC(v.Pointer())
	if funcPtr == nil {
		log.Warn().Msgf("Could not retrieve function pointer for: %s", v.Type().String())
		return "unknown"
	}

	parts := strings.Split(funcPtr.Name(), ".")
	// method values carry a -fm suffix
	return strings.TrimSuffix(parts[len(parts)-1], "-fm")
}
