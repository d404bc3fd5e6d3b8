package streambuffer

import (
	"bytes"
	"testing"

	"statekernel/kernel"
)

func TestWriteThenReadRoundTrips(t *testing.T) {
	k := kernel.New(kernel.Config{})
	b := New(k, 8)
	probe := kernel.NewTask("probe", 1, func(*kernel.Task) {})

	n, res := b.WriteFor(probe, []byte("hi"), kernel.IMMEDIATE)
	if res != kernel.Success || n != 2 {
		t.Fatalf("Write = (%d, %v), want (2, Success)", n, res)
	}

	out := make([]byte, 2)
	n, res = b.ReadFor(probe, out, kernel.IMMEDIATE)
	if res != kernel.Success || n != 2 || !bytes.Equal(out, []byte("hi")) {
		t.Fatalf("Read = (%d, %q, %v), want (2, %q, Success)", n, out, res, "hi")
	}
}

func TestWriteIsPartialWhenSpaceIsShort(t *testing.T) {
	k := kernel.New(kernel.Config{})
	b := New(k, 4)
	probe := kernel.NewTask("probe", 1, func(*kernel.Task) {})

	n, res := b.WriteFor(probe, []byte("abcdef"), kernel.IMMEDIATE)
	if res != kernel.Success || n != 4 {
		t.Fatalf("Write = (%d, %v), want (4, Success)", n, res)
	}
}

func TestReadBlocksUntilDataArrives(t *testing.T) {
	k := kernel.New(kernel.Config{})
	b := New(k, 8)

	started := make(chan struct{})
	type outcome struct {
		n   int
		res kernel.Result
	}
	resCh := make(chan outcome, 1)
	out := make([]byte, 4)
	reader := kernel.NewTask("reader", 1, func(self *kernel.Task) {
		close(started)
		n, res := b.Read(self, out)
		resCh <- outcome{n, res}
	})
	k.Start(reader)
	<-started

	select {
	case o := <-resCh:
		t.Fatalf("Read returned early with %v", o.res)
	default:
	}

	probe := kernel.NewTask("probe", 1, func(*kernel.Task) {})
	b.WriteFor(probe, []byte("x"), kernel.IMMEDIATE)

	o := <-resCh
	if o.res != kernel.Success || o.n != 1 || out[0] != 'x' {
		t.Fatalf("Read = (%d, %v), want (1, Success) with first byte 'x'", o.n, o.res)
	}
}
