// Package io provides the console and object image collaborators of the
// y86 simulator.
package io

import (
	"bufio"
	"io"
	"strings"
	"sync"
)

const (
	// TERMINAL_DEPTH is the number of lines a Terminal queues before Push blocks.
	TERMINAL_DEPTH = 64
)

// Console is the line oriented console used by the I/O instructions.
type Console interface {
	// ReadLine blocks until a line of input is available.
	ReadLine() (line string, err error)
	// WriteString emits text without blocking on input.
	WriteString(text string) (n int, err error)
}

// Terminal is a Console backed by a queue of input lines. A producer
// (a user interface, or Feed) pushes lines, and the simulator consumes them.
type Terminal struct {
	Output io.Writer // Output for written text. If nil, output is discarded.

	lines     chan string
	done      chan struct{}
	closeOnce sync.Once
	writeLock sync.Mutex
}

var _ Console = (*Terminal)(nil)

// NewTerminal creates a terminal writing to output.
func NewTerminal(output io.Writer) (term *Terminal) {
	term = &Terminal{
		Output: output,
		lines:  make(chan string, TERMINAL_DEPTH),
		done:   make(chan struct{}),
	}

	return
}

// Push queues a line of input, blocking while the queue is full.
func (term *Terminal) Push(line string) (err error) {
	select {
	case <-term.done:
		err = ErrConsoleClosed
		return
	default:
	}

	select {
	case term.lines <- line:
	case <-term.done:
		err = ErrConsoleClosed
	}

	return
}

// ReadLine returns the next queued line. Once the terminal is closed and
// the queue is drained, io.EOF is returned.
func (term *Terminal) ReadLine() (line string, err error) {
	select {
	case line = <-term.lines:
		return
	case <-term.done:
	}

	select {
	case line = <-term.lines:
	default:
		err = io.EOF
	}

	return
}

// WriteString writes text to the output.
func (term *Terminal) WriteString(text string) (n int, err error) {
	if term.Output == nil {
		n = len(text)
		return
	}

	term.writeLock.Lock()
	defer term.writeLock.Unlock()

	return io.WriteString(term.Output, text)
}

// Close the terminal. Pending lines can still be read.
func (term *Terminal) Close() (err error) {
	term.closeOnce.Do(func() {
		close(term.done)
	})

	return
}

// Feed pushes every line of in, then closes the terminal.
func (term *Terminal) Feed(in io.Reader) (err error) {
	defer term.Close()

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		err = term.Push(strings.TrimSuffix(scanner.Text(), "\r"))
		if err != nil {
			return
		}
	}

	err = scanner.Err()
	return
}
