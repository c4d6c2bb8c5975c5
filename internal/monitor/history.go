package monitor

import "Go2NetWatch/internal/model"

// history is a bounded FIFO of snapshots backed by a ring buffer.
type history struct {
	buf   []model.MetricsSnapshot
	start int
	size  int
}

func newHistory(capacity int) *history {
	if capacity <= 0 {
		capacity = DefaultMaxHistory
	}
	return &history{buf: make([]model.MetricsSnapshot, capacity)}
}

// push appends s, evicting the oldest entry when full.
func (h *history) push(s model.MetricsSnapshot) {
	capacity := len(h.buf)
	if h.size < capacity {
		h.buf[(h.start+h.size)%capacity] = s
		h.size++
		return
	}
	h.buf[h.start] = s
	h.start = (h.start + 1) % capacity
}

// items returns the snapshots oldest first.
func (h *history) items() []model.MetricsSnapshot {
	out := make([]model.MetricsSnapshot, 0, h.size)
	for i := 0; i < h.size; i++ {
		out = append(out, h.buf[(h.start+i)%len(h.buf)])
	}
	return out
}

func (h *history) latest() (model.MetricsSnapshot, bool) {
	if h.size == 0 {
		return model.MetricsSnapshot{}, false
	}
	return h.buf[(h.start+h.size-1)%len(h.buf)], true
}

func (h *history) len() int {
	return h.size
}

func (h *history) reset() {
	for i := range h.buf {
		h.buf[i] = model.MetricsSnapshot{}
	}
	h.start = 0
	h.size = 0
}
