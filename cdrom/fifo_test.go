package cdrom

import "testing"

func TestFifoPushPop(t *testing.T) {
	assert := func(v bool) {
		if !v {
			t.Error("assert failed")
		}
	}

	f := newFifo(4)
	assert(f.IsEmpty())
	assert(!f.IsFull())

	overflowed := f.Push(1)
	assert(!overflowed)
	f.Push(2)
	f.Push(3)
	f.Push(4)
	assert(f.IsFull())

	v, ok := f.Pop()
	assert(ok)
	assert(v == 1)
	assert(f.Size() == 3)
}

func TestFifoOverflowEvictsOldest(t *testing.T) {
	assert := func(v bool) {
		if !v {
			t.Error("assert failed")
		}
	}

	f := newFifo(2)
	f.Push(0xAA)
	f.Push(0xBB)

	overflowed := f.Push(0xCC)
	assert(overflowed)
	assert(f.Size() == 2)

	v, _ := f.Pop()
	assert(v == 0xBB)
	v, _ = f.Pop()
	assert(v == 0xCC)
}

func TestFifoPopEmptyReturnsFF(t *testing.T) {
	f := newFifo(4)
	v, ok := f.Pop()
	if ok {
		t.Error("Pop on empty fifo returned ok=true")
	}
	if v != 0xFF {
		t.Errorf("Pop on empty fifo = 0x%02X, want 0xFF", v)
	}
}

func TestFifoPopRangeZeroFillsShortfall(t *testing.T) {
	f := newFifo(4)
	f.Push(1)
	f.Push(2)

	out := make([]byte, 4)
	n := f.PopRange(out)

	if n != 2 {
		t.Fatalf("PopRange returned n=%d, want 2", n)
	}
	want := []byte{1, 2, 0, 0}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("out[%d] = %d, want %d", i, out[i], want[i])
		}
	}
}

func TestFifoPeekDoesNotConsume(t *testing.T) {
	f := newFifo(4)
	f.PushRange([]byte{10, 20, 30})

	v, ok := f.Peek(1)
	if !ok || v != 20 {
		t.Fatalf("Peek(1) = (%d, %v), want (20, true)", v, ok)
	}
	if f.Size() != 3 {
		t.Errorf("Peek mutated size: got %d, want 3", f.Size())
	}

	if _, ok := f.Peek(3); ok {
		t.Error("Peek out of range returned ok=true")
	}
}

func TestFifoClear(t *testing.T) {
	f := newFifo(4)
	f.PushRange([]byte{1, 2, 3})
	f.Clear()

	if !f.IsEmpty() {
		t.Error("fifo not empty after Clear")
	}
	if _, ok := f.Pop(); ok {
		t.Error("Pop after Clear returned a value")
	}
}
