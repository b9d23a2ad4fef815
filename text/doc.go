// Package text rasterizes fonts into glyph texture arrays and lays out
// shaped text as glyph cells.
//
// A Source is a parsed font. Rasterize renders a charset at one pixel size
// into an Atlas with one glyph per layer; Upload or LoadTask turns it into a
// Font backed by a texture array. Layout shapes a string with
// go-text/typesetting and returns the destination of every glyph cell, ready
// to be drawn as sprites from the font's texture.
//
//	src := text.GoRegular()
//	font, err := text.LoadTask(src, 16, text.ASCII).Run(ctx, registry, nil)
//	for _, g := range font.Layout("Score: 42", 0) {
//	    // draw layer g.Layer of font.Texture() into g.Rect
//	}
package text
