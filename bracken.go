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
	"math"

	"github.com/dustin/go-humanize"
)

// CombineBracken combines Bracken abundance re-estimation files of
// multiple samples into one table keyed by taxid. The estimated read
// counts are taken from the column named new_est_reads, located in the
// header line of each file, and truncated to whole numbers.
func CombineBracken(files []string, samples []string, opt *Options) (*Table, error) {
	opt = opt.normalize()
	if err := checkFilesAndSamples(files, samples); err != nil {
		return nil, err
	}

	t := NewTable()
	for i, file := range files {
		col, err := readTableFile(file, &BrackenLayout, opt)
		if err != nil {
			return nil, err
		}
		for j, value := range col.values {
			col.values[j] = math.Trunc(value)
		}
		if err = t.AddSample(samples[i], col.counts()); err != nil {
			return nil, err
		}

		log.Infof("sample %s: %s taxids from bracken file: %s",
			samples[i], humanize.Comma(int64(len(col.keys))), file)
	}
	log.Infof("combined table: %s taxids x %s samples",
		humanize.Comma(int64(t.NumFeatures())), humanize.Comma(int64(t.NumSamples())))

	return t, nil
}
