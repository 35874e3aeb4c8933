package annotate

// FontSizeStep is the decrement FitFontSize shrinks by.
const FontSizeStep = 0.1

// FitFontSize returns the largest size, stepping down from initialSizePx in
// FontSizeStep increments, at which text fits into maxWidthPx. The search
// stops early when the next step would reach zero or no longer narrows the
// text, so the result may still overflow for degenerate metrics.
func FitFontSize(text string, font FontDescriptor, maxWidthPx, initialSizePx float64, m Metrics) float64 {
	if m == nil || initialSizePx <= 0 {
		return initialSizePx
	}
	width := m.TextWidth(text, font.WithSize(initialSizePx))
	if width <= maxWidthPx {
		return initialSizePx
	}

	size := initialSizePx
	for k := 1; width > maxWidthPx; k++ {
		// 用步数重新计算字号，避免累计浮点误差
		next := initialSizePx - float64(k)*FontSizeStep
		if next <= 0 {
			break
		}
		nextWidth := m.TextWidth(text, font.WithSize(next))
		if nextWidth >= width {
			break
		}
		size, width = next, nextWidth
	}
	return size
}
