package layout

// FitWidth 按可用宽度等比缩放图片：scale 为每像素对应的毫米数，
// 与页面剩余空间无关；图片不会因高度溢出而进一步缩小。
func FitWidth(pixelWidth, pixelHeight int, printableWidth float64) (scale, height float64) {
	scale = printableWidth / float64(pixelWidth)
	return scale, float64(pixelHeight) * scale
}

// layoutImage 为一张图片做分页检查并生成放置指令，之后光标下移图片高度加间距。
func (e *engine) layoutImage(cur Cursor, index int, asset ImageAsset) (Cursor, Command) {
	g := e.opts.Geometry
	scale, height := FitWidth(asset.PixelWidth, asset.PixelHeight, g.PrintableWidth())
	cur = e.ensureSpace(cur, height)
	if height > g.PrintableHeight() {
		e.log.Warn("图片高度超出可用区域，按宽度缩放后仍会越过下边距",
			"image", asset.Name, "height_mm", height)
	}
	cmd := Command{
		Page: cur.Page,
		Image: &ImagePlacement{
			X:      g.Margin,
			Y:      cur.Y - height,
			Scale:  scale,
			Width:  float64(asset.PixelWidth) * scale,
			Height: height,
			Asset:  index,
			Name:   asset.Name,
		},
	}
	return advance(cur, height+e.opts.ImageGap), cmd
}
