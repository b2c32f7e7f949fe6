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
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/shenwei356/bio/taxdump"
	"github.com/shenwei356/util/cliutil"
	"github.com/shenwei356/util/pathutil"
)

// Translation maps taxon names to identifiers, for re-keying extracted
// rank tables by e.g. NCBI TaxIds.
type Translation map[string]string

// LoadTranslation reads a translation from a two-column tab-delimited
// file (name<tab>identifier), optionally gzipped.
func LoadTranslation(file string) (Translation, error) {
	file, err := expandPath(file)
	if err != nil {
		return nil, err
	}

	kvs, err := cliutil.ReadKVs(file, false)
	if err != nil {
		return nil, errors.Wrap(err, file)
	}
	if len(kvs) == 0 {
		return nil, fmt.Errorf("taxtab: no mapping data in file: %s", file)
	}

	log.Infof("%d name-identifier mappings loaded from: %s", len(kvs), file)
	return Translation(kvs), nil
}

// rankCodes maps taxonomic rank names to their single-letter
// Greengenes-style abbreviations.
var rankCodes = map[string]string{
	"superkingdom": "k",
	"kingdom":      "k",
	"phylum":       "p",
	"class":        "c",
	"order":        "o",
	"family":       "f",
	"genus":        "g",
	"species":      "s",
	"strain":       "t",
}

// TranslationFromTaxdump builds a name-to-TaxId translation from an NCBI
// taxonomy dump directory with nodes.dmp and names.dmp. With prefixed,
// keys take the shape of extracted rank names: the single-letter rank
// prefix plus the name with spaces turned into underscores
// (s__Escherichia_coli), and taxa of ranks without an abbreviation are
// left out. When several taxa share a name, the smallest TaxId wins.
func TranslationFromTaxdump(dir string, prefixed bool) (Translation, error) {
	dir, err := expandPath(dir)
	if err != nil {
		return nil, err
	}

	fileNodes := filepath.Join(dir, "nodes.dmp")
	fileNames := filepath.Join(dir, "names.dmp")
	for _, file := range [2]string{fileNodes, fileNames} {
		existed, err := pathutil.Exists(file)
		if err != nil {
			return nil, errors.Wrap(err, file)
		}
		if !existed {
			return nil, fmt.Errorf("taxtab: taxdump file not found: %s", file)
		}
	}

	log.Infof("loading taxonomy from: %s", dir)
	taxdb, err := taxdump.NewTaxonomyWithRankFromNCBI(fileNodes)
	if err != nil {
		return nil, fmt.Errorf("taxtab: err on loading taxonomy nodes: %s", err)
	}
	if err = taxdb.LoadNamesFromNCBI(fileNames); err != nil {
		return nil, fmt.Errorf("taxtab: err on loading taxonomy names: %s", err)
	}
	log.Infof("  %d nodes in %d ranks with %d names loaded",
		len(taxdb.Nodes), len(taxdb.Ranks), len(taxdb.Names))

	tr := make(Translation, len(taxdb.Names))
	var key, id, prev string
	var ok bool
	for taxid, name := range taxdb.Names {
		key = name
		if prefixed {
			var code string
			if code, ok = rankCodes[taxdb.Rank(taxid)]; !ok {
				continue
			}
			key = code + "__" + strings.ReplaceAll(name, " ", "_")
		}

		id = strconv.Itoa(int(taxid))
		if prev, ok = tr[key]; ok &&
			(len(prev) < len(id) || (len(prev) == len(id) && prev <= id)) {
			continue
		}
		tr[key] = id
	}

	log.Infof("  %d name-TaxId mappings built", len(tr))
	return tr, nil
}
