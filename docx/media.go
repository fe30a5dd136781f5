package docx

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/ByLCY/docxpdf/layout"
)

// Images 按容器中的顺序解码 word/media/ 下的全部图片。
// 无法解码（例如 EMF/WMF）或尺寸为零的条目会被跳过，不视为错误。
func (r *Reader) Images() ([]layout.ImageAsset, error) {
	var assets []layout.ImageAsset
	for _, f := range r.zr.File {
		if !strings.HasPrefix(f.Name, MediaPrefix) || f.FileInfo().IsDir() {
			continue
		}
		data, err := readFile(f)
		if err != nil {
			return nil, err
		}
		img, format, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			logger().Debug("跳过无法解码的媒体文件", "name", f.Name, "err", err)
			continue
		}
		asset := Normalize(f.Name, img)
		if asset.PixelWidth == 0 || asset.PixelHeight == 0 {
			logger().Warn("跳过尺寸为零的图片", "name", f.Name)
			continue
		}
		logger().Info("已提取图片", "name", f.Name, "format", format,
			"width", asset.PixelWidth, "height", asset.PixelHeight)
		assets = append(assets, asset)
	}
	return assets, nil
}

// Normalize 将任意图片合成到白色背景上，输出逐行排列的 RGB 像素。
func Normalize(name string, img image.Image) layout.ImageAsset {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	rgba := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(rgba, rgba.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Over)

	pix := make([]byte, 0, w*h*3)
	for y := 0; y < h; y++ {
		row := rgba.Pix[y*rgba.Stride : y*rgba.Stride+w*4]
		for x := 0; x < len(row); x += 4 {
			pix = append(pix, row[x], row[x+1], row[x+2])
		}
	}
	return layout.ImageAsset{Name: name, PixelWidth: w, PixelHeight: h, Pixels: pix}
}
