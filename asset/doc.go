// Package asset decodes images into resource.Pixels and builds texture
// array load tasks from image files.
//
// PNG, JPEG and GIF come from the standard library; BMP, TIFF and WebP from
// golang.org/x/image. Scaling uses x/image/draw.
package asset
