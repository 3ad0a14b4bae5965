package transcribe

// progressReporter turns per-file engine positions into monotonic positions
// on the original audio timeline.
type progressReporter struct {
	fn    func(position, total float64)
	total float64
	last  float64
}

func newProgressReporter(fn func(position, total float64), total float64) *progressReporter {
	return &progressReporter{fn: fn, total: total}
}

// at returns a callback for a file that starts offset seconds into the audio.
func (r *progressReporter) at(offset float64) func(float64) {
	return func(position float64) {
		r.report(offset + position)
	}
}

func (r *progressReporter) report(position float64) {
	if r.fn == nil {
		return
	}
	if r.total > 0 && position > r.total {
		position = r.total
	}
	if position <= r.last {
		return
	}
	r.last = position
	r.fn(position, r.total)
}

func (r *progressReporter) finish() {
	if r.total > 0 {
		r.report(r.total)
	}
}
