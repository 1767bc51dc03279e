package input

import (
	"sync"
	"testing"
)

func TestButtonsContains(t *testing.T) {
	b := ButtonStart | ButtonA
	if !b.Contains(ButtonStart) {
		t.Error("expected Start to be contained")
	}
	if b.Contains(ButtonSelect) {
		t.Error("Select should not be contained")
	}
	if b.Contains(ButtonStart | ButtonSelect) {
		t.Error("partial mask should not be contained")
	}
	if b.Contains(0) {
		t.Error("empty mask should never be contained")
	}
}

func TestButtonsString(t *testing.T) {
	if got := (ButtonStart | ButtonA).String(); got != "a+start" {
		t.Errorf("got %q, want %q", got, "a+start")
	}
	if got := Buttons(0).String(); got != "none" {
		t.Errorf("got %q, want %q", got, "none")
	}
}

func TestParseButton(t *testing.T) {
	b, err := ParseButton(" Start ")
	if err != nil {
		t.Fatalf("ParseButton: %v", err)
	}
	if b != ButtonStart {
		t.Errorf("got %v, want start", b)
	}
	if _, err := ParseButton("home"); err == nil {
		t.Error("expected error for unknown button")
	}
}

func TestLatchEdgeSemantics(t *testing.T) {
	var l Latch

	l.Scan()
	if l.KeysDown() != 0 {
		t.Fatalf("nothing pressed, got %v", l.KeysDown())
	}

	l.Press(ButtonStart)
	l.Press(ButtonA)
	l.Scan()
	if got := l.KeysDown(); got != ButtonStart|ButtonA {
		t.Errorf("got %v, want a+start", got)
	}

	l.Scan()
	if got := l.KeysDown(); got != 0 {
		t.Errorf("press reported twice, got %v", got)
	}
}

func TestLatchConcurrentPress(t *testing.T) {
	var l Latch
	var wg sync.WaitGroup
	for _, b := range []Buttons{ButtonA, ButtonB, ButtonX, ButtonY} {
		wg.Add(1)
		go func(b Buttons) {
			defer wg.Done()
			l.Press(b)
		}(b)
	}
	wg.Wait()

	l.Scan()
	if got := l.KeysDown(); got != ButtonA|ButtonB|ButtonX|ButtonY {
		t.Errorf("got %v, want a+b+x+y", got)
	}
}
