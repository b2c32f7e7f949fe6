// Copyright © 2021-2022 Wei Shen <shenwei356@gmail.com>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package taxtab

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/shenwei356/util/pathutil"
	"gopkg.in/yaml.v2"
)

// ManifestVersion is the version of the manifest file format
const ManifestVersion uint8 = 1

// ErrManifestVersionMismatch means version mismatch between manifest file and program
var ErrManifestVersionMismatch = errors.New("taxtab: manifest version mismatch")

// ManifestGroup pairs the input files of one classifier format with their
// sample identifiers, in matching order.
type ManifestGroup struct {
	Samples []string `yaml:"samples"`
	Files   []string `yaml:"files"`
}

// Manifest describes one combining run: which files of which formats to
// combine, under which sample identifiers. File paths are relative to the
// directory of the manifest file, unless absolute.
type Manifest struct {
	Version      uint8        `yaml:"version"`
	RankSynonyms RankSynonyms `yaml:"rank-synonyms"`

	Profiles   ManifestGroup `yaml:"profiles"`
	Kraken     ManifestGroup `yaml:"kraken"`
	Centrifuge ManifestGroup `yaml:"centrifuge"`
	Bracken    ManifestGroup `yaml:"bracken"`

	path string
}

func (m Manifest) String() string {
	return fmt.Sprintf("taxtab manifest v%d: #profiles: %d, #kraken: %d, #centrifuge: %d, #bracken: %d",
		m.Version, len(m.Profiles.Files), len(m.Kraken.Files), len(m.Centrifuge.Files), len(m.Bracken.Files))
}

// NewManifest creates an empty manifest of the current version, with the
// default rank synonyms.
func NewManifest() Manifest {
	return Manifest{Version: ManifestVersion, RankSynonyms: DefaultRankSynonyms()}
}

// ManifestFromFile loads a manifest from a YAML file.
func ManifestFromFile(file string) (Manifest, error) {
	manifest := Manifest{}

	file, err := expandPath(file)
	if err != nil {
		return manifest, err
	}

	r, err := os.Open(file)
	if err != nil {
		return manifest, fmt.Errorf("taxtab: fail to read manifest file: %s", file)
	}

	data, err := ioutil.ReadAll(r)
	if err != nil {
		return manifest, fmt.Errorf("taxtab: fail to read manifest file: %s", file)
	}

	err = yaml.Unmarshal(data, &manifest)
	if err != nil {
		return manifest, fmt.Errorf("taxtab: fail to unmarshal manifest file: %s", file)
	}

	r.Close()

	if manifest.Version != ManifestVersion {
		return manifest, ErrManifestVersionMismatch
	}

	p, _ := filepath.Abs(file)
	manifest.path = filepath.Dir(p)
	return manifest, nil
}

// WriteTo saves the manifest as a YAML file.
func (m Manifest) WriteTo(file string) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("taxtab: fail to marshal manifest")
	}

	file, err = expandPath(file)
	if err != nil {
		return err
	}
	w, err := os.Create(file)
	if err != nil {
		return fmt.Errorf("taxtab: fail to write manifest file: %s", file)
	}
	_, err = w.Write(data)
	if err != nil {
		return fmt.Errorf("taxtab: fail to write manifest file: %s", file)
	}

	w.Close()
	return nil
}

// Check verifies that every group pairs as many sample identifiers as
// files, and that all listed files exist.
func (m Manifest) Check() error {
	for _, g := range []struct {
		name  string
		group ManifestGroup
	}{
		{"profiles", m.Profiles},
		{"kraken", m.Kraken},
		{"centrifuge", m.Centrifuge},
		{"bracken", m.Bracken},
	} {
		if len(g.group.Files) != len(g.group.Samples) {
			return errors.Wrapf(ErrSampleNumberMismatch, "%s: %d files but %d samples",
				g.name, len(g.group.Files), len(g.group.Samples))
		}
		for _, file := range g.group.Files {
			file = m.resolve(file)
			ok, err := pathutil.Exists(file)
			if err != nil {
				return fmt.Errorf("taxtab: error on checking input file: %s: %s", file, err)
			}
			if !ok {
				return fmt.Errorf("taxtab: input file missing: %s", file)
			}
		}
	}
	return nil
}

func (m Manifest) resolve(file string) string {
	if m.path == "" || filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(m.path, file)
}

func (m Manifest) resolveAll(files []string) []string {
	out := make([]string, len(files))
	for i, file := range files {
		out[i] = m.resolve(file)
	}
	return out
}

// CombineAll runs the combiners of all non-empty groups of the manifest.
// Tables are keyed by group name ("profiles", "kraken", "centrifuge",
// "bracken"). The level map is nil when the manifest has no kraken group.
func (m Manifest) CombineAll(opt *Options) (map[string]*Table, LevelMap, error) {
	if err := m.Check(); err != nil {
		return nil, nil, err
	}

	tables := make(map[string]*Table, 4)
	var levels LevelMap

	if len(m.Profiles.Files) > 0 {
		t, err := CombineProfiles(m.resolveAll(m.Profiles.Files), m.Profiles.Samples, opt)
		if err != nil {
			return nil, nil, err
		}
		tables["profiles"] = t
	}

	if len(m.Kraken.Files) > 0 {
		synonyms := m.RankSynonyms
		if len(synonyms) == 0 {
			synonyms = DefaultRankSynonyms()
		}
		t, lm, err := CombineKraken(m.resolveAll(m.Kraken.Files), m.Kraken.Samples, synonyms, opt)
		if err != nil {
			return nil, nil, err
		}
		tables["kraken"] = t
		levels = lm
	}

	if len(m.Centrifuge.Files) > 0 {
		t, err := CombineCentrifuge(m.resolveAll(m.Centrifuge.Files), m.Centrifuge.Samples, opt)
		if err != nil {
			return nil, nil, err
		}
		tables["centrifuge"] = t
	}

	if len(m.Bracken.Files) > 0 {
		t, err := CombineBracken(m.resolveAll(m.Bracken.Files), m.Bracken.Samples, opt)
		if err != nil {
			return nil, nil, err
		}
		tables["bracken"] = t
	}

	return tables, levels, nil
}
