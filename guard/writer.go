package guard

import (
	"io"
)

// barWriter forwards writes to the displaced target, erasing the
// progress line first and repainting it after, so client-printed
// diagnostics appear cleanly above a continuously up-to-date bar.
// The forwarded bytes are never modified.
type barWriter struct {
	dst io.Writer
	bar Bar
}

var _ io.Writer = (*barWriter)(nil)

func (w *barWriter) Write(p []byte) (int, error) {
	w.bar.EraseLine()
	n, err := w.dst.Write(p)
	w.bar.RedrawLine()
	return n, err
}
