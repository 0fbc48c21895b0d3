package engine

import (
	"fmt"
	"io"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/wippyai/modload/env"
)

// Stdlib is the host side of the standard environment. Its exported methods
// become bindings named in kebab-case: print, print-f64, random and now.
type Stdlib struct {
	out   io.Writer
	rand  *rand.Rand
	clock func() time.Time
	mu    sync.Mutex
}

// NewStdlib creates a standard library printing to out.
func NewStdlib(out io.Writer) *Stdlib {
	return &Stdlib{
		out:   out,
		rand:  rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		clock: time.Now,
	}
}

// Print writes an integer followed by a newline.
func (s *Stdlib) Print(v int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.out, "%d\n", v)
}

// PrintF64 writes a float followed by a newline.
func (s *Stdlib) PrintF64(v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.out, "%g\n", v)
}

// Random returns a pseudo-random integer.
func (s *Stdlib) Random() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rand.Int64()
}

// Now returns the current time in Unix milliseconds.
func (s *Stdlib) Now() int64 {
	return s.clock().UnixMilli()
}

// Globals returns the standard bindings backed by s.
func Globals(s *Stdlib) (env.Bindings, error) {
	b := env.Bindings{}
	if err := b.RegisterHost(s); err != nil {
		return nil, err
	}
	return b, nil
}
