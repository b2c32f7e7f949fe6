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

// Package bat reads and writes abundance tables in the BAT (Binary
// Abundance Table) format:
//
//	magic number (8 bytes)
//	version, flag, 2 reserved bytes (4 bytes)
//	creation time in Unix seconds (8 bytes)
//	table type, length-prefixed (4 + n bytes)
//	generator label, length-prefixed (4 + n bytes)
//	numbers of features and samples (8 + 8 bytes)
//	XXH3 checksums of the identifier blocks and of the raw cell data
//	(8 + 8 bytes)
//	feature and sample identifier blocks, newline-terminated
//	identifiers, length-prefixed (4 + n bytes each block)
//	cell data: one float64 column per sample in file order, big-endian,
//	gzip-compressed when the flag says so
//
// All integers are big-endian. A whole file may additionally be gzipped;
// readers detect that from the gzip magic bytes.
package bat

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"github.com/edsrzf/mmap-go"
	gzip "github.com/klauspost/pgzip"
	"github.com/zeebo/xxh3"
)

// Version is the version of the table format
const Version uint8 = 1

// Magic number of table files.
var Magic = [8]byte{'.', 't', 'a', 'x', 't', 'a', 'b', 0}

// TableType is the table type tag recorded in every file of this format.
const TableType = "Taxon table"

// ErrInvalidFileFormat means invalid table format.
var ErrInvalidFileFormat = errors.New("bat: invalid table format")

// ErrUnfishedWrite means writing not finished
var ErrUnfishedWrite = errors.New("bat: table not fished writing")

// ErrTruncateFile means the file is truncated
var ErrTruncateFile = errors.New("bat: truncated table file")

// ErrWrongWriteDataSize means the size of data to write is invalid
var ErrWrongWriteDataSize = errors.New("bat: write column with wrong size")

// ErrVersionMismatch means version mismatch between files and program
var ErrVersionMismatch = errors.New("bat: version mismatch")

// ErrColumnOrderMismatch means columns are written out of the sample order
var ErrColumnOrderMismatch = errors.New("bat: columns written out of sample order")

// ErrChecksumMismatch means stored and computed checksums disagree
var ErrChecksumMismatch = errors.New("bat: checksum mismatch")

// ErrInvalidIdentifier means an identifier contains a newline
var ErrInvalidIdentifier = errors.New("bat: identifier with newline")

var be = binary.BigEndian

// BufferSize is size of buffer
var BufferSize = 65536

const (
	// GZIPPED flags a gzip-compressed cell data block.
	GZIPPED = 1 << iota
)

// Header contains metadata of a table file
type Header struct {
	Version     uint8
	flag        uint8
	Gzipped     bool
	TableType   string
	GeneratedBy string
	CreatedAt   int64 // Unix seconds

	NumFeatures uint64
	NumSamples  uint64

	Features []string
	Samples  []string

	idsChecksum  uint64
	dataChecksum uint64
}

func (h Header) String() string {
	return fmt.Sprintf("bat file v%d: %s, generated by: %s, #features: %d, #samples: %d, gzipped: %v",
		h.Version, h.TableType, h.GeneratedBy, h.NumFeatures, h.NumSamples, h.Gzipped)
}

// Compatible checks compatibility
func (h Header) Compatible(b Header) bool {
	if h.Version == b.Version &&
		h.TableType == b.TableType {

		return true
	}
	return false
}

// ------------------------------------------------------------------------

// Writer writes an abundance table. Columns are collected with
// WriteColumn, in the sample order given to NewWriter, and the whole file
// is written on Flush.
type Writer struct {
	Header
	w io.Writer

	buf     bytes.Buffer
	count   uint64
	flushed bool
}

// NewWriter creates a Writer for a table of the given feature rows and
// sample columns.
func NewWriter(w io.Writer, features []string, samples []string, generatedBy string, gzipped bool) (*Writer, error) {
	for _, ids := range [2][]string{features, samples} {
		for _, id := range ids {
			if strings.IndexByte(id, '\n') >= 0 {
				return nil, ErrInvalidIdentifier
			}
		}
	}

	writer := &Writer{
		Header: Header{
			Version:     Version,
			Gzipped:     gzipped,
			TableType:   TableType,
			GeneratedBy: generatedBy,
			CreatedAt:   time.Now().Unix(),
			NumFeatures: uint64(len(features)),
			NumSamples:  uint64(len(samples)),
			Features:    features,
			Samples:     samples,
		},
		w: w,
	}
	return writer, nil
}

// WriteColumn writes the cells of one sample, which must be the next one
// in the sample order of the file.
func (writer *Writer) WriteColumn(sample string, values []float64) (err error) {
	if uint64(len(values)) != writer.NumFeatures {
		return ErrWrongWriteDataSize
	}
	if writer.count >= writer.NumSamples || sample != writer.Samples[writer.count] {
		return ErrColumnOrderMismatch
	}

	var buf8 [8]byte
	for _, v := range values {
		be.PutUint64(buf8[:], math.Float64bits(v))
		writer.buf.Write(buf8[:])
	}

	writer.count++
	return nil
}

// Flush writes the file and checks completeness
func (writer *Writer) Flush() (err error) {
	if writer.count != writer.NumSamples {
		return ErrUnfishedWrite
	}
	if writer.flushed {
		return nil
	}
	writer.flushed = true

	raw := writer.buf.Bytes()
	writer.dataChecksum = xxh3.Hash(raw)

	featureBlock := idBlock(writer.Features)
	sampleBlock := idBlock(writer.Samples)
	ids := make([]byte, 0, len(featureBlock)+len(sampleBlock))
	ids = append(ids, featureBlock...)
	ids = append(ids, sampleBlock...)
	writer.idsChecksum = xxh3.Hash(ids)

	if err = writer.writeHeader(featureBlock, sampleBlock); err != nil {
		return err
	}

	if writer.Gzipped {
		gw := gzip.NewWriter(writer.w)
		if _, err = gw.Write(raw); err != nil {
			return err
		}
		return gw.Close()
	}
	_, err = writer.w.Write(raw)
	return err
}

// writeHeader writes the file header and identifier blocks
func (writer *Writer) writeHeader(featureBlock []byte, sampleBlock []byte) (err error) {
	w := writer.w

	// 8 bytes magic number
	if err = binary.Write(w, be, Magic); err != nil {
		return err
	}

	// 4 bytes meta info
	writer.flag = 0
	if writer.Gzipped {
		writer.flag |= GZIPPED
	}
	if err = binary.Write(w, be, [4]uint8{writer.Version, writer.flag, 0, 0}); err != nil {
		return err
	}

	// 8 bytes creation time
	if err = binary.Write(w, be, uint64(writer.CreatedAt)); err != nil {
		return err
	}

	// table type and generator label
	for _, s := range [2]string{writer.TableType, writer.GeneratedBy} {
		if err = binary.Write(w, be, uint32(len(s))); err != nil {
			return err
		}
		if err = binary.Write(w, be, []byte(s)); err != nil {
			return err
		}
	}

	// table shape
	if err = binary.Write(w, be, writer.NumFeatures); err != nil {
		return err
	}
	if err = binary.Write(w, be, writer.NumSamples); err != nil {
		return err
	}

	// checksums
	if err = binary.Write(w, be, writer.idsChecksum); err != nil {
		return err
	}
	if err = binary.Write(w, be, writer.dataChecksum); err != nil {
		return err
	}

	// identifier blocks
	for _, block := range [2][]byte{featureBlock, sampleBlock} {
		if err = binary.Write(w, be, uint32(len(block))); err != nil {
			return err
		}
		if err = binary.Write(w, be, block); err != nil {
			return err
		}
	}

	return nil
}

func idBlock(ids []string) []byte {
	n := 0
	for _, id := range ids {
		n += len(id) + 1
	}
	block := make([]byte, 0, n)
	for _, id := range ids {
		block = append(block, id...)
		block = append(block, '\n')
	}
	return block
}

// ------------------------------------------------------------------------

// Reader is for reading table columns.
type Reader struct {
	Header
	r io.Reader

	dr     io.Reader // cell data stream
	hasher *xxh3.Hasher

	count     uint64
	verified  bool
	verifyErr error
}

// NewReader returns a Reader.
func NewReader(r io.Reader) (reader *Reader, err error) {
	reader = &Reader{r: r}
	if err = reader.readHeader(); err != nil {
		return nil, err
	}

	if reader.Gzipped {
		gr, err := gzip.NewReaderN(reader.r, 65536, 8)
		if err != nil {
			return nil, err
		}
		reader.dr = gr
	} else {
		reader.dr = reader.r
	}
	reader.hasher = xxh3.New()

	return reader, nil
}

func (reader *Reader) readHeader() (err error) {
	buf := make([]byte, 8)
	r := reader.r

	// check Magic number (8 bytes)
	if _, err = io.ReadFull(r, buf[:8]); err != nil {
		return err
	}
	same := true
	for i := 0; i < 8; i++ {
		if Magic[i] != buf[i] {
			same = false
			break
		}
	}
	if !same {
		return ErrInvalidFileFormat
	}

	// 4 bytes meta info
	if _, err = io.ReadFull(r, buf[:4]); err != nil {
		return err
	}
	// check compatibility
	if Version != buf[0] {
		return ErrVersionMismatch
	}
	reader.Version = buf[0]
	reader.flag = buf[1]
	if buf[1]&GZIPPED > 0 {
		reader.Gzipped = true
	}

	// 8 bytes creation time
	if _, err = io.ReadFull(r, buf[:8]); err != nil {
		return err
	}
	reader.CreatedAt = int64(be.Uint64(buf[:8]))

	// table type and generator label
	var n uint32
	for i := 0; i < 2; i++ {
		if _, err = io.ReadFull(r, buf[:4]); err != nil {
			return err
		}
		n = be.Uint32(buf[:4])
		data := make([]byte, n)
		if _, err = io.ReadFull(r, data); err != nil {
			return err
		}
		if i == 0 {
			reader.TableType = string(data)
		} else {
			reader.GeneratedBy = string(data)
		}
	}

	// table shape
	if _, err = io.ReadFull(r, buf[:8]); err != nil {
		return err
	}
	reader.NumFeatures = be.Uint64(buf[:8])
	if _, err = io.ReadFull(r, buf[:8]); err != nil {
		return err
	}
	reader.NumSamples = be.Uint64(buf[:8])

	// checksums
	if _, err = io.ReadFull(r, buf[:8]); err != nil {
		return err
	}
	reader.idsChecksum = be.Uint64(buf[:8])
	if _, err = io.ReadFull(r, buf[:8]); err != nil {
		return err
	}
	reader.dataChecksum = be.Uint64(buf[:8])

	// identifier blocks
	var blocks [2][]byte
	for i := range blocks {
		if _, err = io.ReadFull(r, buf[:4]); err != nil {
			return err
		}
		blocks[i] = make([]byte, be.Uint32(buf[:4]))
		if _, err = io.ReadFull(r, blocks[i]); err != nil {
			return err
		}
	}

	ids := make([]byte, 0, len(blocks[0])+len(blocks[1]))
	ids = append(ids, blocks[0]...)
	ids = append(ids, blocks[1]...)
	if xxh3.Hash(ids) != reader.idsChecksum {
		return ErrChecksumMismatch
	}

	features := strings.Split(string(blocks[0]), "\n")
	reader.Features = features[0 : len(features)-1]
	samples := strings.Split(string(blocks[1]), "\n")
	reader.Samples = samples[0 : len(samples)-1]

	if uint64(len(reader.Features)) != reader.NumFeatures ||
		uint64(len(reader.Samples)) != reader.NumSamples {
		return ErrInvalidFileFormat
	}

	return nil
}

// ReadColumn reads the cells of the next sample. io.EOF follows the last
// column, after the data checksum is verified.
func (reader *Reader) ReadColumn() (string, []float64, error) {
	if reader.count >= reader.NumSamples {
		if !reader.verified {
			reader.verified = true
			if reader.hasher.Sum64() != reader.dataChecksum {
				reader.verifyErr = ErrChecksumMismatch
			}
		}
		if reader.verifyErr != nil {
			return "", nil, reader.verifyErr
		}
		return "", nil, io.EOF
	}

	data := make([]byte, reader.NumFeatures<<3)
	if _, err := io.ReadFull(reader.dr, data); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return "", nil, ErrTruncateFile
		}
		return "", nil, err
	}
	reader.hasher.Write(data)

	values := make([]float64, reader.NumFeatures)
	var k int
	for j := range values {
		k = j << 3
		values[j] = math.Float64frombits(be.Uint64(data[k : k+8]))
	}

	sample := reader.Samples[reader.count]
	reader.count++
	return sample, values, nil
}

// ReadAll reads all remaining columns, in the sample order of the file.
func (reader *Reader) ReadAll() ([][]float64, error) {
	columns := make([][]float64, 0, reader.NumSamples)
	for {
		_, values, err := reader.ReadColumn()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		columns = append(columns, values)
	}
	return columns, nil
}

// ------------------------------------------------------------------------

// ReadTableFile loads a whole table file, reading plain files through a
// memory map and gzipped files through a stream.
func ReadTableFile(file string) (*Header, [][]float64, error) {
	fh, err := os.Open(file)
	if err != nil {
		return nil, nil, err
	}
	defer fh.Close()

	br := bufio.NewReaderSize(fh, BufferSize)
	gzipped, err := isGzip(br)
	if err != nil {
		return nil, nil, fmt.Errorf("bat: fail to check gzip of file %s: %s", file, err)
	}

	if gzipped {
		gr, err := gzip.NewReaderN(br, 65536, 8)
		if err != nil {
			return nil, nil, err
		}
		reader, err := NewReader(gr)
		if err != nil {
			return nil, nil, err
		}
		columns, err := reader.ReadAll()
		if err != nil {
			return nil, nil, err
		}
		return &reader.Header, columns, nil
	}

	m, err := mmap.Map(fh, mmap.RDONLY, 0)
	if err != nil {
		return nil, nil, fmt.Errorf("bat: fail to mmap file %s: %s", file, err)
	}
	defer m.Unmap()

	reader, err := NewReader(bytes.NewReader(m))
	if err != nil {
		return nil, nil, err
	}
	columns, err := reader.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	return &reader.Header, columns, nil
}

// ReadHeaderFile reads only the metadata of a table file.
func ReadHeaderFile(file string) (*Header, error) {
	fh, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	br := bufio.NewReaderSize(fh, BufferSize)
	gzipped, err := isGzip(br)
	if err != nil {
		return nil, fmt.Errorf("bat: fail to check gzip of file %s: %s", file, err)
	}

	var r io.Reader = br
	if gzipped {
		gr, err := gzip.NewReaderN(br, 65536, 8)
		if err != nil {
			return nil, err
		}
		r = gr
	}

	reader, err := NewReader(r)
	if err != nil {
		return nil, err
	}
	return &reader.Header, nil
}

func isGzip(b *bufio.Reader) (bool, error) {
	return checkBytes(b, []byte{0x1f, 0x8b})
}

func checkBytes(b *bufio.Reader, buf []byte) (bool, error) {
	m, err := b.Peek(len(buf))
	if err != nil {
		return false, fmt.Errorf("no content")
	}
	for i := range buf {
		if m[i] != buf[i] {
			return false, nil
		}
	}
	return true, nil
}
