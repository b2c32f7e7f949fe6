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
	"github.com/dustin/go-humanize"
	"github.com/shenwei356/natsort"
)

// RankSynonyms rewrites rank codes while summarizing Kraken-style reports.
// A nil or empty map keeps all codes as reported.
type RankSynonyms map[string]string

// DefaultRankSynonyms reports domains (D) as kingdoms (K), the convention
// of older report formats.
func DefaultRankSynonyms() RankSynonyms {
	return RankSynonyms{"D": "K"}
}

// LevelMap groups the taxids of combined Kraken-style reports by their
// rank code, after rank synonyms are applied. Taxid lists are unique and
// naturally sorted.
type LevelMap map[string][]string

// TaxIdsAtRank returns the taxids recorded with the given rank code.
func (m LevelMap) TaxIdsAtRank(code string) []string {
	return m[code]
}

// CombineKraken combines Kraken-style reports of multiple samples into one
// table keyed by taxid, with clade read counts as cell values, plus the
// LevelMap of all involved taxids.
func CombineKraken(files []string, samples []string, synonyms RankSynonyms, opt *Options) (*Table, LevelMap, error) {
	opt = opt.normalize()
	if err := checkFilesAndSamples(files, samples); err != nil {
		return nil, nil, err
	}

	t := NewTable()
	sets := make(map[string]map[string]struct{}, 16)

	var code string
	var ok bool
	for i, file := range files {
		col, err := readTableFile(file, &KrakenLayout, opt)
		if err != nil {
			return nil, nil, err
		}
		if err = t.AddSample(samples[i], col.counts()); err != nil {
			return nil, nil, err
		}

		for j, taxid := range col.keys {
			code = col.ranks[j]
			if r, hit := synonyms[code]; hit {
				code = r
			}
			var set map[string]struct{}
			if set, ok = sets[code]; !ok {
				set = make(map[string]struct{}, mapInitSize)
				sets[code] = set
			}
			set[taxid] = struct{}{}
		}

		log.Infof("sample %s: %s taxids from kraken report: %s",
			samples[i], humanize.Comma(int64(len(col.keys))), file)
	}

	levels := make(LevelMap, len(sets))
	for code, set := range sets {
		taxids := make([]string, 0, len(set))
		for taxid := range set {
			taxids = append(taxids, taxid)
		}
		natsort.Sort(taxids)
		levels[code] = taxids
	}

	log.Infof("combined table: %s taxids x %s samples at %d ranks",
		humanize.Comma(int64(t.NumFeatures())), humanize.Comma(int64(t.NumSamples())), len(levels))

	return t, levels, nil
}
