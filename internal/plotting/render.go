package plotting

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wcharczuk/go-chart/v2"
)

func rendererFor(path string) (chart.RendererProvider, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return chart.PNG, nil
	case ".svg":
		return chart.SVG, nil
	default:
		return nil, fmt.Errorf("%w: %q (use .png or .svg)", ErrFormat, filepath.Ext(path))
	}
}

// renderChart writes graph to path, the format following the extension.
func renderChart(graph *chart.Chart, path string) error {
	provider, err := rendererFor(path)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := graph.Render(provider, f); err != nil {
		f.Close()
		return fmt.Errorf("render %s: %w", path, err)
	}
	return f.Close()
}
