package shell

import (
	"errors"
	"io"
	"io/fs"
)

// listCloser closes every element, returning the last error.
type listCloser []io.Closer

func (lc listCloser) Close() error {
	var lastErr error
	for _, v := range lc {
		if err := v.Close(); err != nil {
			lastErr = err
		}
	}

	return lastErr
}

// stageIO holds the streams of one pipeline stage along with the descriptors
// the shell opened for it.
type stageIO struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	// pipes are the shell's copies of pipe ends used by the stage, they must
	// be closed once a child has inherited them or the stage has finished so
	// readers see end-of-file.
	pipes listCloser
	// files are redirection targets, closed after the stage exits.
	files listCloser
}

// closePipes closes the stage's pipe ends, it's safe to call more than once.
func (sio *stageIO) closePipes() error {
	err := sio.pipes.Close()
	sio.pipes = nil
	return err
}

// releaseStdin closes the stage's read end of the previous pipe. Builtins never
// read their input, so releasing it early lets the writer see a broken pipe
// instead of blocking on a full one.
func (sio *stageIO) releaseStdin() {
	kept := sio.pipes[:0]
	for _, c := range sio.pipes {
		if r, ok := c.(io.Reader); ok && r == sio.stdin {
			c.Close()
			continue
		}
		kept = append(kept, c)
	}
	sio.pipes = kept
}

// Close releases everything the stage owns.
func (sio *stageIO) Close() error {
	pipeErr := sio.closePipes()
	fileErr := sio.files.Close()
	sio.files = nil
	if fileErr != nil {
		return fileErr
	}
	return pipeErr
}

// describePathError strips the operation and path from file errors because
// callers already print the path.
func describePathError(err error) error {
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return pathErr.Err
	}
	return err
}
