package canvasrenderer

import (
	"bytes"
	"fmt"
	"image"
	"os"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/ByLCY/docxpdf/fonts"
	"github.com/ByLCY/docxpdf/layout"
	"github.com/ByLCY/docxpdf/renderer"
)

const defaultCreator = "docxpdf"

// Renderer draws placement commands via github.com/tdewolff/canvas and writes PDF.
type Renderer struct {
	// injected resources
	fontBlobs map[layout.Style][]byte
	fontErr   error

	fontMu sync.Mutex
	family *canvas.FontFamily
}

var (
	_ renderer.Renderer = (*Renderer)(nil)
	_ layout.FontSet    = (*Renderer)(nil)
)

// Options configures the canvas renderer.
type Options struct {
	// Fonts 按样式替换内置的 Go 字体；缺少常规体时仍使用内置常规体。
	Fonts map[layout.Style]Resource
}

// Resource can be provided either by Bytes or by Path.
type Resource struct {
	Bytes []byte
	Path  string
}

// NewRenderer creates a renderer backed by the built-in Go font family.
func NewRenderer() *Renderer { return NewRendererWithOptions(Options{}) }

// NewRendererWithOptions creates a renderer with injected font resources.
// 读取字体文件的错误在 Render 时返回。
func NewRendererWithOptions(opts Options) *Renderer {
	r := &Renderer{fontBlobs: map[layout.Style][]byte{}}
	if len(opts.Fonts) == 0 {
		for _, style := range fonts.Styles {
			data, err := fonts.Load(style)
			if err != nil {
				r.fontErr = err
				continue
			}
			r.fontBlobs[style] = data
		}
		return r
	}
	for style, res := range opts.Fonts {
		if len(res.Bytes) > 0 {
			r.fontBlobs[style] = res.Bytes
			continue
		}
		if res.Path == "" {
			continue
		}
		data, err := os.ReadFile(res.Path)
		if err != nil {
			r.fontErr = fmt.Errorf("读取字体 %s 失败: %w", res.Path, err)
			continue
		}
		r.fontBlobs[style] = data
	}
	if _, ok := r.fontBlobs[layout.StyleRegular]; !ok {
		data, err := fonts.Load(layout.StyleRegular)
		if err != nil {
			r.fontErr = err
		} else {
			r.fontBlobs[layout.StyleRegular] = data
		}
	}
	return r
}

// Has 实现 layout.FontSet，报告某个字体变体是否已注入。
func (r *Renderer) Has(style layout.Style) bool {
	_, ok := r.fontBlobs[style]
	return ok
}

// Render renders the placement commands into a PDF byte slice.
func (r *Renderer) Render(result *layout.Result, images []layout.ImageAsset) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("渲染结果为空")
	}
	if result.PageCount < 1 {
		return nil, fmt.Errorf("缺少可渲染的页面")
	}
	family, err := r.ensureFontFamily()
	if err != nil {
		return nil, err
	}

	g := result.Geometry
	fontSize := result.FontSize
	if fontSize <= 0 {
		fontSize = layout.DefaultFontSize
	}
	pc := &pageContext{
		family:   family,
		fontSize: fontSize,
		faces:    map[layout.Style]*canvas.FontFace{},
		images:   images,
		decoded:  map[int]image.Image{},
	}

	var buf bytes.Buffer
	writer := pdf.New(&buf, g.Width, g.Height, nil)
	applyMeta(writer, result.Meta)
	for i, cmds := range result.Pages() {
		if i > 0 {
			writer.NewPage(g.Width, g.Height)
		}
		c := canvas.New(g.Width, g.Height)
		ctx := canvas.NewContext(c)
		// 指令坐标已是自下而上（原点在左下角），与默认的 CartesianI 一致。
		if err := pc.drawPage(ctx, cmds); err != nil {
			return nil, fmt.Errorf("第 %d 页: %w", i+1, err)
		}
		c.RenderTo(writer)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

func applyMeta(writer *pdf.PDF, meta layout.DocumentMeta) {
	creator := meta.Creator
	if creator == "" {
		creator = defaultCreator
	}
	writer.SetInfo(meta.Title, meta.Subject, strings.Join(meta.Keywords, ", "), meta.Author, creator)
}

// pageContext 缓存一次渲染中用到的字体面与解码后的图片。
type pageContext struct {
	family   *canvas.FontFamily
	fontSize float64 // pt
	faces    map[layout.Style]*canvas.FontFace
	images   []layout.ImageAsset
	decoded  map[int]image.Image
}

func (pc *pageContext) drawPage(ctx *canvas.Context, cmds []layout.Command) error {
	for _, cmd := range cmds {
		switch {
		case cmd.Text != nil:
			pc.drawText(ctx, cmd.Text)
		case cmd.Image != nil:
			if err := pc.drawImage(ctx, cmd.Image); err != nil {
				return err
			}
		}
	}
	return nil
}

func (pc *pageContext) drawText(ctx *canvas.Context, tl *layout.TextLine) {
	face, ok := pc.faces[tl.Font]
	if !ok {
		face = pc.family.Face(pc.fontSize, canvas.Black, canvasStyle(tl.Font), canvas.FontNormal)
		pc.faces[tl.Font] = face
	}
	// (X, Y) 为基线起点。
	ctx.DrawText(tl.X, tl.Y, canvas.NewTextLine(face, tl.Content, canvas.Left))
}

func (pc *pageContext) drawImage(ctx *canvas.Context, p *layout.ImagePlacement) error {
	if p.Asset < 0 || p.Asset >= len(pc.images) {
		return fmt.Errorf("图片资源 #%d (%s) 不存在", p.Asset, p.Name)
	}
	if p.Scale <= 0 {
		return fmt.Errorf("图片 %s 的缩放系数非法：%g", p.Name, p.Scale)
	}
	img, ok := pc.decoded[p.Asset]
	if !ok {
		var err error
		img, err = assetImage(pc.images[p.Asset])
		if err != nil {
			return err
		}
		pc.decoded[p.Asset] = img
	}
	// scale 为每像素毫米数，分辨率取其倒数（像素/毫米）。
	ctx.DrawImage(p.X, p.Y, img, canvas.DPMM(1/p.Scale))
	return nil
}

// assetImage 将 RGB 像素缓冲还原为 image.Image。
func assetImage(a layout.ImageAsset) (image.Image, error) {
	if want := a.PixelWidth * a.PixelHeight * 3; len(a.Pixels) != want {
		return nil, fmt.Errorf("图片 %s 的像素缓冲长度为 %d，期望 %d", a.Name, len(a.Pixels), want)
	}
	img := image.NewRGBA(image.Rect(0, 0, a.PixelWidth, a.PixelHeight))
	for i, j := 0, 0; i < len(a.Pixels); i, j = i+3, j+4 {
		img.Pix[j] = a.Pixels[i]
		img.Pix[j+1] = a.Pixels[i+1]
		img.Pix[j+2] = a.Pixels[i+2]
		img.Pix[j+3] = 0xff
	}
	return img, nil
}

func (r *Renderer) ensureFontFamily() (*canvas.FontFamily, error) {
	r.fontMu.Lock()
	defer r.fontMu.Unlock()

	if r.family != nil {
		return r.family, nil
	}
	if r.fontErr != nil {
		return nil, r.fontErr
	}
	family := canvas.NewFontFamily(fonts.Family)
	for _, style := range fonts.Styles {
		data, ok := r.fontBlobs[style]
		if !ok {
			continue
		}
		if err := family.LoadFont(data, 0, canvasStyle(style)); err != nil {
			return nil, fmt.Errorf("加载 %s 字体失败: %w", style, err)
		}
	}
	r.family = family
	return family, nil
}

func canvasStyle(style layout.Style) canvas.FontStyle {
	result := canvas.FontRegular
	if style.Has(layout.StyleBold) {
		result = canvas.FontBold
	}
	if style.Has(layout.StyleItalic) {
		result |= canvas.FontItalic
	}
	return result
}
