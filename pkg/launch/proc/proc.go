// Package proc runs the launcher's external commands, capturing or
// line-streaming their combined output.
package proc

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
)

// maxChunk caps how much of a single unterminated line is buffered
// before it is flushed. Installers repaint progress meters with bare
// carriage returns, and a pathological child may emit no line break at
// all; draining must never stall on either.
const maxChunk = 64 * 1024

// Output runs a command and returns its combined output.
func Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Stream runs a command, feeding each combined-output line to onLine.
// Both \n and \r terminate a line, so progress-meter repaints surface
// as individual lines instead of one unbounded one.
func Stream(ctx context.Context, onLine func(string), name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)

	pipe, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("creating stdout pipe: %w", err)
	}
	cmd.Stderr = cmd.Stdout

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting %s: %w", name, err)
	}

	drainErr := drain(pipe, onLine)

	if err := cmd.Wait(); err != nil {
		return err
	}
	return drainErr
}

// drain reads r to EOF, invoking onLine for every \n- or \r-terminated
// chunk. Oversized chunks are flushed in maxChunk pieces rather than
// erroring out: the reader must keep consuming until EOF, or the child
// blocks on a full pipe and never exits.
func drain(r io.Reader, onLine func(string)) error {
	br := bufio.NewReader(r)
	buf := make([]byte, 0, 4096)

	flush := func() {
		if len(buf) > 0 {
			onLine(string(buf))
			buf = buf[:0]
		}
	}

	for {
		b, err := br.ReadByte()
		if err != nil {
			flush()
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("reading command output: %w", err)
		}

		if b == '\n' || b == '\r' {
			flush()
			continue
		}

		buf = append(buf, b)
		if len(buf) >= maxChunk {
			flush()
		}
	}
}
