package extract

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/skelly-dev/cnote/internal/manifest"
	"github.com/skelly-dev/cnote/internal/registry"
)

// ManifestResult summarizes one manifest.
type ManifestResult struct {
	Path     string
	Found    bool
	Records  int
	Admitted int
}

// IndexManifest registers every record of dir's ".tag" manifest. A
// missing manifest contributes nothing. A malformed line stops the
// manifest with a *manifest.LineError; records before it stay registered.
func (x *Extractor) IndexManifest(reg *registry.Registry, dir string, filter registry.Filter) (ManifestResult, error) {
	result := ManifestResult{Path: manifest.Path(dir)}

	content, err := x.src.ReadFile(result.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return result, nil
		}
		return result, fmt.Errorf("trouble reading tagfile at %s: %w", result.Path, err)
	}
	result.Found = true

	d := manifest.NewDecoder(result.Path, string(content))
	for {
		rec, err := d.Next()
		if errors.Is(err, io.EOF) {
			return result, nil
		}
		if err != nil {
			return result, err
		}
		result.Records++

		stage := reg.Stage(manifest.Resolve(dir, rec.Path))
		stage.AddTags(rec.Tags)
		if _, ok := stage.Commit(filter); ok {
			result.Admitted++
		}
	}
}
