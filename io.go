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
	"strconv"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"github.com/shenwei356/breader"
	"github.com/shenwei356/xopen"
)

// expandPath expands a leading ~ to the home directory.
func expandPath(file string) (string, error) {
	path, err := homedir.Expand(file)
	if err != nil {
		return "", errors.Wrap(err, file)
	}
	return path, nil
}

// WriteTSV saves the table as a tab-delimited text file, with a header of
// sample identifiers behind a #feature cell, one feature per row below.
// Files with the .gz suffix are gzipped.
func (t *Table) WriteTSV(file string) error {
	file, err := expandPath(file)
	if err != nil {
		return err
	}

	outfh, err := xopen.Wopen(file)
	if err != nil {
		return errors.Wrap(err, file)
	}

	outfh.WriteString("#feature")
	for _, sample := range t.samples {
		outfh.WriteString("\t")
		outfh.WriteString(sample)
	}
	outfh.WriteString("\n")

	for i, feature := range t.features {
		outfh.WriteString(feature)
		for _, value := range t.data[i] {
			outfh.WriteString("\t")
			outfh.WriteString(strconv.FormatFloat(value, 'g', -1, 64))
		}
		outfh.WriteString("\n")
	}

	log.Infof("table of %d features x %d samples saved to: %s",
		t.NumFeatures(), t.NumSamples(), file)
	return outfh.Close()
}

// ReadTSV loads a table saved by WriteTSV, keeping the row and column
// order of the file.
func ReadTSV(file string) (*Table, error) {
	file, err := expandPath(file)
	if err != nil {
		return nil, err
	}

	fn := func(line string) (interface{}, bool, error) {
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			return nil, false, nil
		}
		return strings.Split(line, "\t"), true, nil
	}
	reader, err := breader.NewBufferedReader(file, 8, 100, fn)
	if err != nil {
		return nil, errors.Wrap(err, file)
	}

	t := NewTable()
	var headerSeen bool
	var fields []string
	var feature string
	var value float64
	var data interface{}
	for chunk := range reader.Ch {
		if chunk.Err != nil {
			return nil, errors.Wrap(chunk.Err, file)
		}
		for _, data = range chunk.Data {
			fields = data.([]string)

			if !headerSeen {
				headerSeen = true
				for _, sample := range fields[1:] {
					if _, ok := t.colIdx[sample]; ok {
						return nil, errors.Wrap(ErrDuplicatedSample, sample)
					}
					t.colIdx[sample] = len(t.samples)
					t.samples = append(t.samples, sample)
				}
				continue
			}

			if len(fields) != len(t.samples)+1 {
				return nil, fmt.Errorf("taxtab: table row with %d columns, expecting %d, in file: %s",
					len(fields), len(t.samples)+1, file)
			}
			feature = fields[0]
			if feature == "" {
				return nil, fmt.Errorf("taxtab: blank feature identifier in file: %s", file)
			}
			if _, ok := t.rowIdx[feature]; ok {
				return nil, fmt.Errorf("taxtab: duplicated feature: %s", feature)
			}

			row := make([]float64, len(t.samples))
			for j, s := range fields[1:] {
				value, err = strconv.ParseFloat(s, 64)
				if err != nil {
					return nil, errors.Wrapf(err, "parsing value %q in file: %s", s, file)
				}
				row[j] = value
			}
			t.rowIdx[feature] = len(t.features)
			t.features = append(t.features, feature)
			t.data = append(t.data, row)
		}
	}
	if !headerSeen {
		return nil, fmt.Errorf("taxtab: empty table file: %s", file)
	}

	return t, nil
}
