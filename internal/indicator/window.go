package indicator

import "math"

// rollingSum keeps the sum of the last size values in O(1) per push.
// A NaN restarts the window, so a window is full only when it holds size
// consecutive defined values.
type rollingSum struct {
	buf     []float64
	idx     int
	run     int
	sum     float64
	nonzero int // non-zero values in the window; when 0 the sum is exactly 0
}

func newRollingSum(size int) *rollingSum {
	return &rollingSum{buf: make([]float64, size)}
}

func (r *rollingSum) reset() {
	r.idx, r.run, r.sum, r.nonzero = 0, 0, 0, 0
}

func (r *rollingSum) push(v float64) {
	if math.IsNaN(v) {
		r.reset()
		return
	}
	if r.run >= len(r.buf) {
		old := r.buf[r.idx]
		r.sum -= old
		if old != 0 {
			r.nonzero--
		}
	}
	r.buf[r.idx] = v
	r.sum += v
	if v != 0 {
		r.nonzero++
	}
	if r.nonzero == 0 {
		r.sum = 0 // drop accumulated rounding drift
	}
	r.idx = (r.idx + 1) % len(r.buf)
	r.run++
}

func (r *rollingSum) full() bool { return r.run >= len(r.buf) }

func (r *rollingSum) mean() float64 {
	if r.nonzero == 0 {
		return 0
	}
	return r.sum / float64(len(r.buf))
}

// rollingMoments tracks mean and sum of squared deviations over the last size
// values using a sliding Welford update. NaN restarts the window.
type rollingMoments struct {
	buf  []float64
	idx  int
	run  int
	mean float64
	m2   float64
}

func newRollingMoments(size int) *rollingMoments {
	return &rollingMoments{buf: make([]float64, size)}
}

func (r *rollingMoments) push(v float64) {
	if math.IsNaN(v) {
		r.idx, r.run, r.mean, r.m2 = 0, 0, 0, 0
		return
	}
	n := len(r.buf)
	if r.run < n {
		r.run++
		delta := v - r.mean
		r.mean += delta / float64(r.run)
		r.m2 += delta * (v - r.mean)
	} else {
		old := r.buf[r.idx]
		prevMean := r.mean
		r.mean += (v - old) / float64(n)
		r.m2 += (v - old) * (v - r.mean + old - prevMean)
		if r.m2 < 0 {
			r.m2 = 0
		}
	}
	r.buf[r.idx] = v
	r.idx = (r.idx + 1) % n
}

func (r *rollingMoments) full() bool { return r.run >= len(r.buf) }

// sampleStd is the n-1 standard deviation of the window.
func (r *rollingMoments) sampleStd() float64 {
	n := len(r.buf)
	if n < 2 {
		return math.NaN()
	}
	return math.Sqrt(r.m2 / float64(n-1))
}

// rollingExtreme tracks the max (or min) of the last size values with a
// monotonic deque of indices. Amortized O(1) per push.
type rollingExtreme struct {
	size   int
	isMax  bool
	values []float64
	deque  []int
	start  int // index of the first value of the current NaN-free run
}

func newRollingMax(size int) *rollingExtreme { return &rollingExtreme{size: size, isMax: true} }
func newRollingMin(size int) *rollingExtreme { return &rollingExtreme{size: size} }

func (r *rollingExtreme) push(v float64) {
	i := len(r.values)
	r.values = append(r.values, v)
	if math.IsNaN(v) {
		r.deque = r.deque[:0]
		r.start = i + 1
		return
	}
	for len(r.deque) > 0 {
		last := r.values[r.deque[len(r.deque)-1]]
		if (r.isMax && last > v) || (!r.isMax && last < v) {
			break
		}
		r.deque = r.deque[:len(r.deque)-1]
	}
	r.deque = append(r.deque, i)
	for r.deque[0] <= i-r.size {
		r.deque = r.deque[1:]
	}
}

func (r *rollingExtreme) full() bool { return len(r.values)-r.start >= r.size }

func (r *rollingExtreme) value() float64 {
	if len(r.deque) == 0 {
		return math.NaN()
	}
	return r.values[r.deque[0]]
}
