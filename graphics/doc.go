// Package graphics holds the value types shared by the drawing pipeline:
// colors, affine matrices, points, rectangles and blend modes.
//
// Coordinates are in pixels with the origin at the top-left corner of the
// target and y growing downwards. Texture sources use normalized UV
// rectangles where (0, 0) is the top-left texel and (1, 1) the bottom-right.
package graphics
