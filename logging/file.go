// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package logging provides log destinations and packet dump formatters.
package logging

import (
	"bufio"
	"io"
	"os"
)

// GetLogFile opens a log destination. An empty name discards output,
// "stdout" and "stderr" select the process streams, anything else is
// created as a buffered file that is flushed on Close.
func GetLogFile(file string) (io.WriteCloser, error) {
	switch file {
	case "":
		return nopCloser{io.Discard}, nil
	case "stdout":
		return nopCloser{os.Stdout}, nil
	case "stderr":
		return nopCloser{os.Stderr}, nil
	}

	fd, err := os.Create(file) // #nosec G304 - path comes from the operator
	if err != nil {
		return nil, err
	}

	return &fileCloser{
		f:   fd,
		buf: bufio.NewWriterSize(fd, 4096),
	}, nil
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

type fileCloser struct {
	f   *os.File
	buf *bufio.Writer
}

func (f *fileCloser) Write(p []byte) (int, error) {
	return f.buf.Write(p)
}

func (f *fileCloser) Close() error {
	if err := f.buf.Flush(); err != nil {
		_ = f.f.Close()

		return err
	}

	return f.f.Close()
}
