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
	"strings"

	"github.com/pkg/errors"
)

// ExtractRank extracts the rows of one taxonomic rank from a table keyed
// by Greengenes-style lineage strings, e.g. g for genera from
// "k__Bacteria;...;g__Escherichia". A row is kept if the last
// delim-separated segment of its identifier is an explicitly named rank:
// longer than 3 characters, prefixed with <code>__, and not suffixed with
// _noname. Kept rows are re-keyed by that segment.
//
// An empty delim means ";". Lineages with spaces after the delimiter
// require passing "; ".
//
// Two rows collapsing to the same name return ErrDuplicatedTaxa. With a
// non-nil translation, names are translated, rows of unknown names are
// dropped, and rows sharing an identifier are summed.
func ExtractRank(t *Table, code string, delim string, tr Translation) (*Table, error) {
	if delim == "" {
		delim = ";"
	}
	prefix := code + "__"

	out := newTableWithSamples(t.samples)
	var segment string
	for i, feature := range t.features {
		segment = feature
		if k := strings.LastIndex(feature, delim); k >= 0 {
			segment = feature[k+len(delim):]
		}

		if len(segment) <= 3 ||
			!strings.HasPrefix(segment, prefix) ||
			strings.HasSuffix(segment, "_noname") {
			continue
		}

		if _, ok := out.rowIdx[segment]; ok {
			return nil, errors.Wrap(ErrDuplicatedTaxa, segment)
		}
		out.rowIdx[segment] = len(out.features)
		out.features = append(out.features, segment)
		row := make([]float64, len(t.samples))
		copy(row, t.data[i])
		out.data = append(out.data, row)
	}
	out.sortRows()

	if tr == nil {
		return out, nil
	}

	var dropped int
	for _, feature := range out.features {
		if _, ok := tr[feature]; !ok {
			dropped++
		}
	}
	if dropped > 0 {
		log.Infof("%d taxa not in the translation, dropped", dropped)
	}
	return out.GroupSum(tr), nil
}
