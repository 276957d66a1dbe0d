package patch

// match reports whether, for every i in [0, len(preimage)), image.Get(at+i)
// equals preimage[i] in both byte length and byte content. It returns false
// if at+len(preimage) exceeds image.Len(). Comparison is strict byte
// equality: no whitespace normalization, no trailing-newline tolerance.
func match(image *Image, preimage []Line, at int) bool {
	if at < 0 || at+len(preimage) > image.Len() {
		return false
	}
	for i, want := range preimage {
		got := image.Get(at + i)
		if got.Content != want.Content {
			return false
		}
	}
	return true
}
