package layout

import "fmt"

// 该文件定义布局引擎的输入内容模型与输出放置指令，供提取、布局、渲染与调试 JSON 共用。

// Style 是文本运行的样式属性集合（位标志），Regular 表示空集合。
type Style uint8

const (
	StyleBold Style = 1 << iota
	StyleItalic

	StyleRegular Style = 0
)

// Has 判断是否包含给定属性。
func (s Style) Has(attr Style) bool { return s&attr == attr && attr != 0 }

// String 返回便于日志与调试的样式名称。
func (s Style) String() string {
	switch s {
	case StyleBold:
		return "bold"
	case StyleItalic:
		return "italic"
	case StyleBold | StyleItalic:
		return "bold-italic"
	default:
		return "regular"
	}
}

// MarshalText 让样式在调试 JSON 中以名称输出。
func (s Style) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText 将样式名称还原为位标志，使调试 JSON 可以读回。
func (s *Style) UnmarshalText(text []byte) error {
	switch string(text) {
	case "regular":
		*s = StyleRegular
	case "bold":
		*s = StyleBold
	case "italic":
		*s = StyleItalic
	case "bold-italic":
		*s = StyleBold | StyleItalic
	default:
		return fmt.Errorf("未知的字体样式 %q", text)
	}
	return nil
}

// Run 是段落内共享同一样式的一段连续文本。
type Run struct {
	Text  string `json:"text"`
	Style Style  `json:"style"`
}

// Paragraph 是按顺序排列的文本运行。
type Paragraph struct {
	Runs []Run `json:"runs"`
}

// Document 是内容提取器交给布局引擎的块元素列表。
type Document struct {
	Paragraphs []Paragraph  `json:"paragraphs"`
	Meta       DocumentMeta `json:"meta"`
}

// ImageAsset 记录一张已解码的嵌入图片，Pixels 为逐行排列的 RGB 字节。
type ImageAsset struct {
	Name        string `json:"name"`
	PixelWidth  int    `json:"pixelWidth"`
	PixelHeight int    `json:"pixelHeight"`
	Pixels      []byte `json:"-"`
}

// Geometry 描述页面尺寸与四边统一的边距，单位均为毫米。
type Geometry struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Margin float64 `json:"margin"`
}

// A4 是默认页面：210×297mm，边距 20mm。
var A4 = Geometry{Width: 210, Height: 297, Margin: 20}

// PrintableWidth 返回去掉左右边距后的可用宽度。
func (g Geometry) PrintableWidth() float64 { return g.Width - 2*g.Margin }

// PrintableHeight 返回去掉上下边距后的可用高度。
func (g Geometry) PrintableHeight() float64 { return g.Height - 2*g.Margin }

// Top 是每页第一行的纵坐标（自下而上的坐标系）。
func (g Geometry) Top() float64 { return g.Height - g.Margin }

// Cursor 是一次布局过程中的纵向位置与页码。
// 每个布局函数接收当前 Cursor 并返回推进后的 Cursor，不在函数之间共享可变状态。
type Cursor struct {
	Page int     `json:"page"`
	Y    float64 `json:"y"`
}

// Command 是一条放置指令，Text 与 Image 二者恰有其一。
type Command struct {
	Page  int             `json:"page"`
	Text  *TextLine       `json:"text,omitempty"`
	Image *ImagePlacement `json:"image,omitempty"`
}

// TextLine 表示一行已定位的文本，(X, Y) 为基线起点。
type TextLine struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Font    Style   `json:"font"`
	Content string  `json:"content"`
}

// ImagePlacement 表示一张已定位的图片，(X, Y) 为左下角。
type ImagePlacement struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Scale  float64 `json:"scale"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Asset  int     `json:"asset"`
	Name   string  `json:"name"`
}

// Result 保存布局后的页面几何、页数与有序的放置指令。
type Result struct {
	Geometry  Geometry     `json:"geometry"`
	FontSize  float64      `json:"fontSize"`
	PageCount int          `json:"pageCount"`
	Commands  []Command    `json:"commands"`
	Meta      DocumentMeta `json:"meta"`
}

// Pages 按页分组返回指令，保持原有顺序；没有内容的页面对应空切片。
func (r *Result) Pages() [][]Command {
	if r == nil {
		return nil
	}
	pages := make([][]Command, r.PageCount)
	for _, cmd := range r.Commands {
		if cmd.Page < 0 || cmd.Page >= len(pages) {
			continue
		}
		pages[cmd.Page] = append(pages[cmd.Page], cmd)
	}
	return pages
}

// DocumentMeta 保存 PDF 元信息。
type DocumentMeta struct {
	Title    string   `json:"title"`
	Author   string   `json:"author"`
	Subject  string   `json:"subject"`
	Creator  string   `json:"creator"`
	Keywords []string `json:"keywords"`
}
