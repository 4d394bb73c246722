package externalcmd

import (
	"errors"
	"sync"
)

// ErrPoolClosed is returned when starting a command in a closed pool.
var ErrPoolClosed = errors.New("pool is closed")

// Pool is a pool of external commands.
// Commands can't be started after the pool is closed.
type Pool struct {
	mutex   sync.Mutex
	wg      sync.WaitGroup
	running int
	closed  bool
}

// Initialize initializes a Pool.
func (p *Pool) Initialize() {
	p.running = 0
	p.closed = false
}

// Close prevents new commands from starting and waits for the running ones to exit.
func (p *Pool) Close() {
	p.mutex.Lock()
	p.closed = true
	p.mutex.Unlock()

	p.wg.Wait()
}

// Running returns the number of commands that have not exited yet.
func (p *Pool) Running() int {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.running
}

func (p *Pool) add() error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.closed {
		return ErrPoolClosed
	}

	p.running++
	p.wg.Add(1)
	return nil
}

func (p *Pool) remove() {
	p.mutex.Lock()
	p.running--
	p.mutex.Unlock()

	p.wg.Done()
}
