package engine

import (
	"sync"

	"github.com/vovakirdan/tui-match3/internal/board"
)

// BatchKind identifies the visual step a batch describes.
type BatchKind int

const (
	BatchSwap BatchKind = iota
	BatchSwapBack
	BatchDestroy
	BatchFall
	BatchRefill
)

// String returns the batch kind name.
func (k BatchKind) String() string {
	switch k {
	case BatchSwap:
		return "swap"
	case BatchSwapBack:
		return "swap_back"
	case BatchDestroy:
		return "destroy"
	case BatchFall:
		return "fall"
	case BatchRefill:
		return "refill"
	default:
		return "unknown"
	}
}

// Batch is one step of visual change. Grid is a private copy of the board
// after the step was applied.
type Batch struct {
	Kind    BatchKind
	Swap    board.Move        // BatchSwap, BatchSwapBack
	Removed []board.Coord     // BatchDestroy
	Falls   []board.Fall      // BatchFall
	Created []board.Placement // BatchRefill
	Grid    *board.Grid
	Score   int
	Depth   int // Cascade depth, 0 for the first iteration
}

// Animator presents batches. Animate must not return until the batch has
// finished presenting; the engine does not advance until it does.
type Animator interface {
	Animate(b Batch)
}

// NopAnimator acknowledges every batch immediately.
type NopAnimator struct{}

// Animate implements Animator.
func (NopAnimator) Animate(Batch) {}

// ChanAnimator hands batches to a consumer over a channel and waits for an
// acknowledgement. Used when the renderer runs its own event loop.
type ChanAnimator struct {
	batches chan Batch
	acks    chan struct{}
	done    chan struct{}
	once    sync.Once
}

// NewChanAnimator creates an unbuffered channel animator.
func NewChanAnimator() *ChanAnimator {
	return &ChanAnimator{
		batches: make(chan Batch),
		acks:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Animate sends b and blocks until Ack or Close.
func (a *ChanAnimator) Animate(b Batch) {
	select {
	case a.batches <- b:
	case <-a.done:
		return
	}
	select {
	case <-a.acks:
	case <-a.done:
	}
}

// Batches returns the channel batches are delivered on.
func (a *ChanAnimator) Batches() <-chan Batch {
	return a.batches
}

// Ack releases the engine waiting on the current batch.
func (a *ChanAnimator) Ack() {
	select {
	case a.acks <- struct{}{}:
	case <-a.done:
	}
}

// Close unblocks any pending Animate call; later batches are dropped.
func (a *ChanAnimator) Close() {
	a.once.Do(func() { close(a.done) })
}

// Done is closed after Close.
func (a *ChanAnimator) Done() <-chan struct{} {
	return a.done
}
