package shell

import (
	"errors"
	"io"
	"os"
	"sync"

	"golang.org/x/sys/unix"
)

// pollInterval is how long, in milliseconds, a read waits for input before
// checking whether it has been paused.
const pollInterval = 50

// PausableStdin reads from a terminal but only while it isn't paused. The
// line editor reads its input from a background goroutine, so without pausing
// it would steal keystrokes meant for a command running in the foreground.
type PausableStdin struct {
	file *os.File
	fd   int32

	mu     sync.Mutex
	cond   *sync.Cond
	paused bool
	closed bool
}

var _ io.ReadCloser = (*PausableStdin)(nil)

// NewPausableStdin wraps f, which is usually os.Stdin.
func NewPausableStdin(f *os.File) *PausableStdin {
	p := &PausableStdin{file: f, fd: int32(f.Fd())}
	p.cond = sync.NewCond(&p.mu)
	return p
}

// Pause stops reading. Once it returns no byte is consumed until Resume.
func (p *PausableStdin) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.paused = true
}

// Resume lets pending and future reads continue.
func (p *PausableStdin) Resume() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.paused = false
	p.cond.Broadcast()
}

// Close makes pending and future reads return io.EOF, the file itself is left
// open.
func (p *PausableStdin) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	p.cond.Broadcast()
	return nil
}

// Read waits until input is available while unpaused and then reads it.
func (p *PausableStdin) Read(b []byte) (int, error) {
	for {
		if err := p.waitUnpaused(); err != nil {
			return 0, err
		}

		ready, err := p.poll()
		if err != nil {
			return 0, err
		}
		if !ready {
			continue
		}

		// The read happens under the lock so Pause can't return while it's in
		// progress. Input is ready, so it doesn't block.
		p.mu.Lock()
		if p.paused || p.closed {
			p.mu.Unlock()
			continue
		}
		n, err := p.file.Read(b)
		p.mu.Unlock()
		return n, err
	}
}

func (p *PausableStdin) waitUnpaused() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for p.paused && !p.closed {
		p.cond.Wait()
	}
	if p.closed {
		return io.EOF
	}
	return nil
}

// poll reports whether a read would return without blocking, hang ups count
// so the read can report them.
func (p *PausableStdin) poll() (bool, error) {
	fds := []unix.PollFd{{Fd: p.fd, Events: unix.POLLIN}}
	n, err := unix.Poll(fds, pollInterval)
	switch {
	case errors.Is(err, unix.EINTR):
		return false, nil
	case err != nil:
		return false, err
	}
	return n > 0 && fds[0].Revents&(unix.POLLIN|unix.POLLHUP|unix.POLLERR|unix.POLLNVAL) != 0, nil
}
