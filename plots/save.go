package plots

import (
	"fmt"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
)

// Formats accepted by Save. "all" writes png, svg and pdf.
var Formats = []string{"png", "svg", "pdf", "all"}

// Save writes p into dir as name.<format>, creating dir if needed, and
// returns the paths written.
func Save(
	p *plot.Plot,
	dir, name, format string,
) (
	[]string,
	error,
) {

	var exts []string
	switch format {
	case "png", "svg", "pdf":
		exts = []string{format}
	case "all":
		exts = []string{"png", "svg", "pdf"}
	default:
		return nil, fmt.Errorf("unsupported plot format %q", format)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	var paths []string
	for _, ext := range exts {
		path := filepath.Join(dir, name+"."+ext)
		if err := p.Save(15*vg.Inch, 15*vg.Inch, path); err != nil {
			return paths, fmt.Errorf("saving %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
