package inference

import (
	"context"
	"errors"
	"testing"

	"github.com/teslashibe/moodcam/pkg/emotions"
	"gocv.io/x/gocv"
)

func TestChainFallback(t *testing.T) {
	failing := WithError(errors.New("service down"))
	working := WithDetections(emotions.Detection{
		Region:   emotions.Region{X: 1, Y: 1, W: 10, H: 10},
		Dominant: emotions.Happy,
		Scores:   emotions.Scores{emotions.Happy: 0.9},
	})

	chain, err := NewChain(failing, working)
	if err != nil {
		t.Fatalf("Failed to create chain: %v", err)
	}
	defer chain.Close()

	frame := gocv.NewMat()
	defer frame.Close()

	dets, err := chain.Analyze(context.Background(), frame)
	if err != nil {
		t.Fatalf("Chain analyze failed: %v", err)
	}
	if len(dets) != 1 || dets[0].Dominant != emotions.Happy {
		t.Errorf("unexpected detections: %+v", dets)
	}
	if failing.CallCount("Analyze") != 1 || working.CallCount("Analyze") != 1 {
		t.Errorf("each classifier should be called once")
	}
}

func TestChainFirstWins(t *testing.T) {
	first := NewMock()
	second := NewMock()

	chain, _ := NewChain(first, second)

	frame := gocv.NewMat()
	defer frame.Close()

	if _, err := chain.Analyze(context.Background(), frame); err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if second.CallCount("Analyze") != 0 {
		t.Error("second classifier should not run when the first succeeds")
	}
}

func TestChainAllFail(t *testing.T) {
	c1 := WithError(errors.New("classifier 1 failed"))
	c2 := WithError(errors.New("classifier 2 failed"))

	chain, _ := NewChain(c1, c2)
	defer chain.Close()

	frame := gocv.NewMat()
	defer frame.Close()

	_, err := chain.Analyze(context.Background(), frame)
	if err == nil {
		t.Fatal("Expected error when all classifiers fail")
	}

	var chainErr *ChainError
	if !errors.As(err, &chainErr) {
		t.Fatalf("Expected ChainError, got %T", err)
	}
	if len(chainErr.Errors) != 2 {
		t.Errorf("Expected 2 errors, got %d", len(chainErr.Errors))
	}
}

func TestChainEmpty(t *testing.T) {
	if _, err := NewChain(); !errors.Is(err, ErrBackendUnavailable) {
		t.Errorf("expected ErrBackendUnavailable, got %v", err)
	}
}

func TestChainName(t *testing.T) {
	a := NewMock()
	a.NameOverride = "deepface"
	b := NewMock()
	b.NameOverride = "ferplus"

	chain, _ := NewChain(a, b)
	if got := chain.Name(); got != "chain(deepface,ferplus)" {
		t.Errorf("Name() = %q", got)
	}
}

func TestChainClose(t *testing.T) {
	a := NewMock()
	b := NewMock()
	b.CloseFunc = func() error { return errors.New("close failed") }

	chain, _ := NewChain(a, b)
	if err := chain.Close(); err == nil {
		t.Error("expected close error to propagate")
	}
	if a.CallCount("Close") != 1 || b.CallCount("Close") != 1 {
		t.Error("every classifier should be closed")
	}
}
