package graphics

// BlendMode selects how a draw combines with the target. All modes work on
// premultiplied colors.
type BlendMode uint8

const (
	// BlendAlpha is source-over compositing.
	BlendAlpha BlendMode = iota
	// BlendAdd adds source to destination.
	BlendAdd
	// BlendMultiply multiplies destination by source.
	BlendMultiply
	// BlendReplace overwrites the destination.
	BlendReplace
)

// String returns the mode name.
func (b BlendMode) String() string {
	switch b {
	case BlendAlpha:
		return "alpha"
	case BlendAdd:
		return "add"
	case BlendMultiply:
		return "multiply"
	case BlendReplace:
		return "replace"
	default:
		return "unknown"
	}
}

// Valid reports whether b is one of the defined modes.
func (b BlendMode) Valid() bool {
	return b <= BlendReplace
}

// Blend composites premultiplied src over premultiplied dst.
// Software backends use it directly.
func (b BlendMode) Blend(src, dst [4]float32) [4]float32 {
	switch b {
	case BlendAdd:
		return [4]float32{
			min1(dst[0] + src[0]), min1(dst[1] + src[1]),
			min1(dst[2] + src[2]), min1(dst[3] + src[3]),
		}
	case BlendMultiply:
		// dst * src + dst * (1 - srcA) keeps uncovered areas intact.
		ia := 1 - src[3]
		return [4]float32{
			dst[0]*src[0] + dst[0]*ia,
			dst[1]*src[1] + dst[1]*ia,
			dst[2]*src[2] + dst[2]*ia,
			dst[3]*src[3] + dst[3]*ia,
		}
	case BlendReplace:
		return src
	default:
		ia := 1 - src[3]
		return [4]float32{
			src[0] + dst[0]*ia, src[1] + dst[1]*ia,
			src[2] + dst[2]*ia, src[3] + dst[3]*ia,
		}
	}
}

func min1(v float32) float32 {
	if v > 1 {
		return 1
	}
	return v
}
