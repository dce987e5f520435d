package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/opticalblackbox/obb-go"
)

// visibilityManifest is the YAML file given to create --visibility.
// It assigns a visibility level per surface index, with an optional
// default for unlisted surfaces:
//
//	default: public
//	surfaces:
//	  - index: 1
//	    visibility: encrypted
//	  - index: 3
//	    visibility: redacted
type visibilityManifest struct {
	Default  string `yaml:"default"`
	Surfaces []struct {
		Index      int    `yaml:"index"`
		Visibility string `yaml:"visibility"`
	} `yaml:"surfaces"`
}

// applyVisibilityManifest tags the group's surfaces according to the
// manifest file. Entries referencing unknown surface indices are
// rejected rather than silently dropped.
func applyVisibilityManifest(path string, group *obb.SurfaceGroup) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading manifest: %w", err)
	}
	var manifest visibilityManifest
	if err := yaml.UnmarshalStrict(data, &manifest); err != nil {
		return fmt.Errorf("parsing manifest %s: %w", path, err)
	}

	if manifest.Default != "" {
		def := obb.Visibility(manifest.Default)
		if !def.Valid() {
			return fmt.Errorf("manifest: unknown default visibility %q", manifest.Default)
		}
		for i := range group.Surfaces {
			group.Surfaces[i].Visibility = def
		}
	}

	byNumber := make(map[int]int, len(group.Surfaces))
	for i := range group.Surfaces {
		byNumber[group.Surfaces[i].SurfaceNumber] = i
	}
	for _, entry := range manifest.Surfaces {
		i, ok := byNumber[entry.Index]
		if !ok {
			return fmt.Errorf("manifest: no surface with index %d", entry.Index)
		}
		v := obb.Visibility(entry.Visibility)
		if v == "" || !v.Valid() {
			return fmt.Errorf("manifest: unknown visibility %q for surface %d", entry.Visibility, entry.Index)
		}
		group.Surfaces[i].Visibility = v
	}
	return nil
}
