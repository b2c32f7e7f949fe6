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
	"bufio"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/shenwei356/taxtab/bat"
)

// ExportBAT saves the table in the binary BAT format, with the cell data
// gzip-compressed. An empty generatedBy falls back to the package name
// and version.
func (t *Table) ExportBAT(file string, generatedBy string) error {
	if generatedBy == "" {
		generatedBy = "taxtab v" + VERSION
	}

	file, err := expandPath(file)
	if err != nil {
		return err
	}
	outfh, err := os.Create(file)
	if err != nil {
		return errors.Wrap(err, file)
	}
	bw := bufio.NewWriterSize(outfh, bat.BufferSize)

	writer, err := bat.NewWriter(bw, t.Features(), t.Samples(), generatedBy, true)
	if err != nil {
		outfh.Close()
		return err
	}

	values := make([]float64, len(t.features))
	for j, sample := range t.samples {
		for i := range t.features {
			values[i] = t.data[i][j]
		}
		if err = writer.WriteColumn(sample, values); err != nil {
			outfh.Close()
			return err
		}
	}

	if err = writer.Flush(); err != nil {
		outfh.Close()
		return err
	}
	if err = bw.Flush(); err != nil {
		outfh.Close()
		return err
	}
	return outfh.Close()
}

// ImportBAT loads a table saved in the binary BAT format. Rows keep the
// order stored in the file.
func ImportBAT(file string) (*Table, error) {
	file, err := expandPath(file)
	if err != nil {
		return nil, err
	}
	header, columns, err := bat.ReadTableFile(file)
	if err != nil {
		return nil, err
	}

	t := NewTable()
	t.samples = make([]string, len(header.Samples))
	copy(t.samples, header.Samples)
	for j, sample := range t.samples {
		if sample == "" {
			return nil, fmt.Errorf("taxtab: blank sample identifier in file: %s", file)
		}
		if _, ok := t.colIdx[sample]; ok {
			return nil, errors.Wrap(ErrDuplicatedSample, sample)
		}
		t.colIdx[sample] = j
	}

	t.features = make([]string, len(header.Features))
	copy(t.features, header.Features)
	t.data = make([][]float64, len(t.features))
	for i, feature := range t.features {
		if feature == "" {
			return nil, fmt.Errorf("taxtab: blank feature identifier in file: %s", file)
		}
		if _, ok := t.rowIdx[feature]; ok {
			return nil, fmt.Errorf("taxtab: duplicated feature: %s", feature)
		}
		t.rowIdx[feature] = i
		t.data[i] = make([]float64, len(t.samples))
	}

	for j, column := range columns {
		for i, v := range column {
			t.data[i][j] = v
		}
	}
	return t, nil
}
