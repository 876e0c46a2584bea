package db

import (
	"errors"
	"sync"
)

// Pool errors.
var (
	// ErrPoolClosed is returned by Checkout after Close.
	ErrPoolClosed = errors.New("db: pool is closed")
	// ErrPoolExhausted is returned when every connection is checked out.
	ErrPoolExhausted = errors.New("db: pool exhausted")
)

// Pool is a fixed-size free list of Database connections to one file.
// Checkout hands a connection to the caller; Checkin returns it. A
// Database must never be used after it has been checked back in.
//
// The pool exists for applications that read concurrently while holding
// migrations to a single connection; the migration engine itself never
// uses more than one connection.
type Pool struct {
	path string
	max  int

	mu     sync.Mutex
	free   []*Database
	open   int
	closed bool
}

// NewPool creates a pool of up to max connections to the database at path.
// Connections are opened lazily on first checkout.
func NewPool(path string, max int) *Pool {
	if max < 1 {
		max = 1
	}
	return &Pool{path: path, max: max}
}

// Checkout returns a free connection, opening a new one if the pool is
// under its limit. Returns ErrPoolExhausted when max connections are
// already out.
func (p *Pool) Checkout() (*Database, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, ErrPoolClosed
	}
	if n := len(p.free); n > 0 {
		d := p.free[n-1]
		p.free = p.free[:n-1]
		return d, nil
	}
	if p.open >= p.max {
		return nil, ErrPoolExhausted
	}

	d, err := Open(p.path)
	if err != nil {
		return nil, err
	}
	p.open++
	return d, nil
}

// Checkin returns a connection to the free list. If the pool has been
// closed in the meantime, the connection is closed instead.
func (p *Pool) Checkin(d *Database) {
	if d == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		d.Close()
		p.open--
		return
	}
	p.free = append(p.free, d)
}

// Close closes every free connection and marks the pool closed.
// Connections still checked out are closed as they are checked in.
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrPoolClosed
	}
	p.closed = true

	var firstErr error
	for _, d := range p.free {
		if err := d.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		p.open--
	}
	p.free = nil
	return firstErr
}
