package patch

// ApplyText builds an Image from source, applies every hunk in p in
// declared order, and returns the serialized result. Each hunk's NewStart
// is interpreted relative to the image as it stands after all earlier
// hunks have been applied.
func ApplyText(source []byte, p *Patch) ([]byte, error) {
	image := NewImage(source)
	for _, hunk := range p.Hunks {
		if err := applyHunk(image, p.Lines, hunk); err != nil {
			return nil, err
		}
	}
	return image.Serialize(), nil
}
