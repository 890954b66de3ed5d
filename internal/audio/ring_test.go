package audio

import "testing"

func TestPushFrameReadRoundTrip(t *testing.T) {
	r := NewRingBuffer(4)
	r.PushFrame(1, -1)
	r.PushFrame(2, -2)

	dst := make([]int16, 4)
	n := r.Read(dst)
	if n != 4 {
		t.Fatalf("Read returned %d, want 4", n)
	}
	want := []int16{1, -1, 2, -2}
	for i, v := range want {
		if dst[i] != v {
			t.Errorf("dst[%d] = %d, want %d", i, dst[i], v)
		}
	}
	if r.Available() != 0 {
		t.Errorf("Available() = %d, want 0 after full drain", r.Available())
	}
}

func TestPushFrameDropsOnOverrun(t *testing.T) {
	r := NewRingBuffer(1) // capacity: 1 stereo frame, 2 int16 slots
	r.PushFrame(10, 20)
	r.PushFrame(30, 40) // buffer full, dropped

	dst := make([]int16, 2)
	r.Read(dst)
	if dst[0] != 10 || dst[1] != 20 {
		t.Errorf("got %v, want [10 20] (overrun frame should be dropped)", dst)
	}
}

func TestReadUnderrunZeroFills(t *testing.T) {
	r := NewRingBuffer(4)
	r.PushFrame(5, 6)

	dst := make([]int16, 6)
	n := r.Read(dst)
	if n != 2 {
		t.Errorf("Read returned %d, want 2 samples available", n)
	}
	for i := 2; i < len(dst); i++ {
		if dst[i] != 0 {
			t.Errorf("dst[%d] = %d, want 0 (underrun should zero-fill)", i, dst[i])
		}
	}
}

func TestCapacityReflectsSampleCount(t *testing.T) {
	r := NewRingBuffer(8192)
	if r.Capacity() != 8192*2 {
		t.Errorf("Capacity() = %d, want %d", r.Capacity(), 8192*2)
	}
}
