package pixel

// Mix blends two framebuffers (a,b) into dst using alpha (0..1).
// Channels are linear; no gamma assumed.
func Mix(dst, a, b []Color, alpha float32) {
	if alpha <= 0 {
		copy(dst, a)
		return
	}
	if alpha >= 1 {
		copy(dst, b)
		return
	}
	for i := range dst {
		dst[i] = a[i].Lerp(b[i], alpha)
	}
}

// FromScalars expands a brightness buffer into grey colours.
func FromScalars(dst []Color, src []float32) {
	for i := range dst {
		dst[i] = Grey(src[i])
	}
}

// PutRGB packs buf into dst as 8-bit R,G,B triples. dst must hold 3 bytes
// per pixel.
func PutRGB(dst []byte, buf []Color) {
	for i, c := range buf {
		dst[i*3+0] = To255(c.R)
		dst[i*3+1] = To255(c.G)
		dst[i*3+2] = To255(c.B)
	}
}

// PutRGBA is PutRGB with an opaque alpha byte, the layout image.RGBA and
// GPU textures use.
func PutRGBA(dst []byte, buf []Color) {
	for i, c := range buf {
		dst[i*4+0] = To255(c.R)
		dst[i*4+1] = To255(c.G)
		dst[i*4+2] = To255(c.B)
		dst[i*4+3] = 0xff
	}
}
