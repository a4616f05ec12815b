package engine_test

import (
	"testing"
	"time"

	"github.com/vovakirdan/tui-match3/internal/board"
	"github.com/vovakirdan/tui-match3/internal/engine"
)

func TestChanAnimatorDeliversAndWaitsForAck(t *testing.T) {
	anim := engine.NewChanAnimator()
	defer anim.Close()

	e, _ := engine.New(smallConfig(),
		engine.WithGrid(board.MustParseGrid(oneMoveGrid)),
		engine.WithAnimator(anim),
		engine.WithFiller(diagonalFiller{}),
	)
	e.Activate(board.C(0, 2))

	done := make(chan engine.Outcome, 1)
	go func() { done <- e.Activate(board.C(1, 2)) }()

	var kinds []engine.BatchKind
	for len(kinds) < 4 {
		select {
		case b := <-anim.Batches():
			kinds = append(kinds, b.Kind)
			select {
			case <-done:
				t.Fatal("Activate returned before the batch was acknowledged")
			default:
			}
			anim.Ack()
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out after batches %v", kinds)
		}
	}

	select {
	case out := <-done:
		if out.Kind != engine.OutcomeResolved {
			t.Errorf("Activate = %v, expected resolved", out.Kind)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Activate did not return after the last ack")
	}
}

func TestChanAnimatorCloseUnblocks(t *testing.T) {
	anim := engine.NewChanAnimator()
	returned := make(chan struct{})
	go func() {
		anim.Animate(engine.Batch{Kind: engine.BatchSwap})
		close(returned)
	}()

	<-anim.Batches()
	anim.Close()

	select {
	case <-returned:
	case <-time.After(2 * time.Second):
		t.Fatal("Animate still blocked after Close")
	}

	// Later batches are dropped without blocking.
	anim.Animate(engine.Batch{Kind: engine.BatchFall})
	anim.Ack()
}

func TestNopAnimator(t *testing.T) {
	var a engine.Animator = engine.NopAnimator{}
	a.Animate(engine.Batch{Kind: engine.BatchRefill})
}
