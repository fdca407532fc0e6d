package pileup

import (
	"bufio"
	"io"
	"os"
	"time"
)

// Stream is a reopenable, readiness-pollable line source. It wraps either a
// named file or stdin (path == "") behind a bufio.Reader.
//
// Stdin may be fed by an upstream alignment pipeline that hasn't produced
// any output yet, so callers get a bounded poll-and-sleep wait instead of a
// plain blocking read.
type Stream struct {
	path string
	file *os.File
	r    *bufio.Reader
}

// OpenStream opens path for reading, or stdin when path == "".
func OpenStream(path string) (*Stream, error) {
	s := &Stream{path: path}
	if err := s.open(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Stream) open() error {
	if s.path == "" {
		s.file = os.Stdin
		s.r = bufio.NewReaderSize(os.Stdin, 64*1024)
		return nil
	}
	f, err := os.Open(s.path)
	if err != nil {
		return err
	}
	s.file = f
	s.r = bufio.NewReaderSize(f, 64*1024)
	return nil
}

// Reopen closes and reopens a named-file stream from the beginning. It is
// used by the dual-pileup coordinator's backtrack recovery and is invalid
// for stdin streams.
func (s *Stream) Reopen() error {
	if s.path == "" {
		return os.ErrInvalid
	}
	_ = s.file.Close()
	return s.open()
}

// Close releases the underlying file handle. Closing stdin is a no-op.
func (s *Stream) Close() error {
	if s.file == nil || s.file == os.Stdin {
		return nil
	}
	return s.file.Close()
}

// ReadLine returns the next newline-terminated line with the terminator
// stripped. ok is false at EOF.
func (s *Stream) ReadLine() (line string, ok bool, err error) {
	line, err = s.r.ReadString('\n')
	if err != nil {
		if err == io.EOF {
			if len(line) > 0 {
				return trimNewline(line), true, nil
			}
			return "", false, nil
		}
		return "", false, err
	}
	return trimNewline(line), true, nil
}

func trimNewline(s string) string {
	if n := len(s); n > 0 && s[n-1] == '\n' {
		s = s[:n-1]
	}
	if n := len(s); n > 0 && s[n-1] == '\r' {
		s = s[:n-1]
	}
	return s
}

// WaitReady blocks until the stream has at least one byte available to
// read without blocking indefinitely, sleeping sleepEvery between polls, up
// to maxAttempts times. It returns false if the stream never became ready.
//
// Peek runs in a background goroutine so a single slow attempt doesn't
// starve the bounded overall wait; on timeout the goroutine is abandoned
// and will resolve (and be garbage collected) whenever data eventually
// arrives or the underlying file is closed.
func (s *Stream) WaitReady(maxAttempts int, sleepEvery time.Duration) bool {
	if s.ready() {
		return true
	}
	for attempt := 0; attempt < maxAttempts; attempt++ {
		time.Sleep(sleepEvery)
		if s.ready() {
			return true
		}
	}
	return false
}

func (s *Stream) ready() bool {
	// Regular files are always immediately readable; only a pipe/fifo (e.g.
	// stdin fed by an upstream aligner) can be genuinely not-yet-ready.
	if s.path != "" {
		return true
	}
	done := make(chan bool, 1)
	go func() {
		_, err := s.r.Peek(1)
		done <- err == nil
	}()
	select {
	case ok := <-done:
		return ok
	case <-time.After(50 * time.Millisecond):
		return false
	}
}
