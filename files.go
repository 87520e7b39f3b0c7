//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package astra

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/markkurossi/astra/buffer"
)

// prepFilename returns the preprocessing file path for the argument
// protocol tag, party, and thread. The prep side names files by its
// own party numbers; the online side adds one so that the offline
// writer and the online reader of the same correlation agree on the
// name without colliding on their own files.
func prepFilename(opts *Options, tag, name, suffix string,
	preprocessing bool, myNum, thread int) string {

	base := 0
	if !preprocessing {
		base = 1
	}
	return filepath.Join(opts.PrepDir,
		fmt.Sprintf("%s-%s%s-P%d-T%d", tag, name, suffix,
			myNum+base, thread))
}

// prepWriter implements the writing end of a preprocessing file. The
// writer flushes after every logical store so that the reader never
// sees a partial frame from a completed store.
type prepWriter struct {
	name string
	f    *os.File
	w    *bufio.Writer
}

func createPrepFile(name string) (*prepWriter, error) {
	f, err := os.Create(name)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot open %s", name)
	}
	return &prepWriter{
		name: name,
		f:    f,
		w:    bufio.NewWriter(f),
	}, nil
}

// store writes the buffer as one length-prefixed frame and flushes.
func (p *prepWriter) store(b *buffer.Buffer) error {
	if err := b.Send(p.w); err != nil {
		return errors.Wrap(err, "error in preprocessing storing")
	}
	if err := p.w.Flush(); err != nil {
		return errors.Wrap(err, "error in preprocessing storing")
	}
	return nil
}

func (p *prepWriter) close() error {
	if err := p.w.Flush(); err != nil {
		p.f.Close()
		return err
	}
	return p.f.Close()
}

// prepReader implements the reading end of a preprocessing file.
type prepReader struct {
	name string
	f    *os.File
	r    *bufio.Reader
}

func openPrepFile(name string) (*prepReader, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot open %s", name)
	}
	return &prepReader{
		name: name,
		f:    f,
		r:    bufio.NewReader(f),
	}, nil
}

// read replaces the buffer content with the next length-prefixed
// frame.
func (p *prepReader) read(b *buffer.Buffer) error {
	if err := b.Recv(p.r); err != nil {
		return errors.Wrap(err, "error in preprocessing reading")
	}
	return nil
}

func (p *prepReader) close() error {
	return p.f.Close()
}
