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
	"runtime"

	"github.com/mattn/go-colorable"
	"github.com/shenwei356/go-logging"
	"github.com/twotwotwo/sorts"
)

// log is the package logger, only talkative with Options.Verbose.
var log = logging.MustGetLogger("taxtab")

var logFormat = logging.MustStringFormatter(`%{time:15:04:05.000} %{color}[%{level:.4s}]%{color:reset} %{message}`)

func init() {
	backend := logging.NewLogBackend(colorable.NewColorableStderr(), "", 0)
	logging.SetBackend(logging.NewBackendFormatter(backend, logFormat))
	logging.SetLevel(logging.WARNING, "taxtab")
}

// Options contains the global options shared by all combiners.
type Options struct {
	// Threads limits parsing and sorting parallelism.
	// Non-positive values mean all available CPUs.
	Threads int

	// Verbose enables progress logging to stderr.
	Verbose bool

	// ChunkSize is the number of lines sent to one parsing worker at a time.
	ChunkSize int
}

// DefaultOptions returns options with all CPUs and quiet logging.
func DefaultOptions() *Options {
	return &Options{
		Threads:   runtime.NumCPU(),
		ChunkSize: 100,
	}
}

// normalize fills zero values, so methods may be called on a nil or
// zero-valued Options. The receiver is not modified.
func (opt *Options) normalize() *Options {
	var o Options
	if opt != nil {
		o = *opt
	}
	if o.Threads <= 0 {
		o.Threads = runtime.NumCPU()
	}
	if o.ChunkSize <= 0 {
		o.ChunkSize = 100
	}

	sorts.MaxProcs = o.Threads

	if o.Verbose {
		logging.SetLevel(logging.INFO, "taxtab")
	} else {
		logging.SetLevel(logging.WARNING, "taxtab")
	}
	return &o
}
