package dsl

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/ByLCY/docxpdf/layout"
)

// DefaultPageSpec 对应默认页面：A4 纵向，边距 20mm。
const DefaultPageSpec = "A4 portrait margin 20mm"

// DefaultMargin 是未写 margin 时使用的边距（mm）。
const DefaultMargin = 20.0

var (
	pageLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
		{Name: "Number", Pattern: `(?:\d+\.\d+|\d+)(?i:pt|mm|cm|in)?`},
		// 尺寸分隔符先于 Ident，"210mmx297mm" 不会被读成标识符 x297mm。
		{Name: "Symbol", Pattern: `[xX*×]`},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_-]*`},
	})

	pageParser = participle.MustBuild[PageSpec](
		participle.Lexer(pageLexer),
		participle.Elide("Whitespace"),
		participle.CaseInsensitive("Ident"),
	)
)

// PageSpec is the root AST node of a page geometry spec such as
// `A4 landscape margin 15mm` or `210mm x 297mm margin 1in`.
type PageSpec struct {
	Pos    lexer.Position `parser:"" json:"-"`
	Size   *PageSize      `parser:"@@"`
	Params []*PageParam   `parser:"@@*"`
}

// PageSize is either a named preset or an explicit width × height.
type PageSize struct {
	Custom *CustomSize `parser:"  @@"`
	Name   string      `parser:"| @Ident"`
}

// CustomSize captures `<width> x <height>`.
type CustomSize struct {
	Width  string `parser:"@Number ( 'x' | 'X' | '*' | '×' )"`
	Height string `parser:"@Number"`
}

// PageParam is an orientation keyword or a margin clause.
type PageParam struct {
	Pos         lexer.Position `parser:"" json:"-"`
	Orientation string         `parser:"  @( 'portrait' | 'landscape' )"`
	Margin      string         `parser:"| 'margin' @Number"`
}

// 预设纸张尺寸（纵向，mm）。
var presets = map[string][2]float64{
	"a3":     {297, 420},
	"a4":     {210, 297},
	"a5":     {148, 210},
	"b5":     {176, 250},
	"letter": {215.9, 279.4},
	"legal":  {215.9, 355.6},
}

// Presets 返回支持的预设纸张名称。
func Presets() []string {
	return []string{"A3", "A4", "A5", "B5", "Letter", "Legal"}
}

// ParsePage 解析页面规格字符串。
func ParsePage(input string) (*PageSpec, error) {
	return pageParser.ParseString("", input)
}

// ParseGeometry 解析页面规格并换算为毫米几何。
func ParseGeometry(input string) (layout.Geometry, error) {
	spec, err := ParsePage(input)
	if err != nil {
		return layout.Geometry{}, fmt.Errorf("解析页面规格 %q 失败: %w", input, err)
	}
	g, err := spec.Geometry()
	if err != nil {
		return layout.Geometry{}, fmt.Errorf("页面规格 %q: %w", input, err)
	}
	return g, nil
}

// Geometry 将 AST 换算成页面几何；orientation 与 margin 各至多出现一次。
func (p *PageSpec) Geometry() (layout.Geometry, error) {
	if p == nil || p.Size == nil {
		return layout.Geometry{}, fmt.Errorf("缺少纸张尺寸")
	}
	width, height, err := p.Size.dimensions()
	if err != nil {
		return layout.Geometry{}, err
	}

	margin := DefaultMargin
	var orientation string
	var marginSet bool
	for _, param := range p.Params {
		switch {
		case param.Orientation != "":
			if orientation != "" {
				return layout.Geometry{}, fmt.Errorf("%s: 重复的方向声明", param.Pos)
			}
			orientation = strings.ToLower(param.Orientation)
		case param.Margin != "":
			if marginSet {
				return layout.Geometry{}, fmt.Errorf("%s: 重复的 margin 声明", param.Pos)
			}
			l, err := layout.ParseLength(param.Margin)
			if err != nil {
				return layout.Geometry{}, err
			}
			margin = l.ToMM()
			marginSet = true
		}
	}

	// 方向只决定长边朝向，与输入的宽高顺序无关。
	long, short := max(width, height), min(width, height)
	switch orientation {
	case "landscape":
		width, height = long, short
	case "portrait":
		width, height = short, long
	}

	g := layout.Geometry{Width: width, Height: height, Margin: margin}
	if g.Width <= 2*g.Margin || g.Height <= 2*g.Margin {
		return layout.Geometry{}, fmt.Errorf("边距 %gmm 对 %gx%gmm 的页面过大", g.Margin, g.Width, g.Height)
	}
	return g, nil
}

func (s *PageSize) dimensions() (float64, float64, error) {
	if s.Custom != nil {
		w, err := layout.ParseLength(s.Custom.Width)
		if err != nil {
			return 0, 0, err
		}
		h, err := layout.ParseLength(s.Custom.Height)
		if err != nil {
			return 0, 0, err
		}
		if w.ToMM() <= 0 || h.ToMM() <= 0 {
			return 0, 0, fmt.Errorf("纸张尺寸必须为正数：%s x %s", s.Custom.Width, s.Custom.Height)
		}
		return w.ToMM(), h.ToMM(), nil
	}
	dims, ok := presets[strings.ToLower(s.Name)]
	if !ok {
		return 0, 0, fmt.Errorf("未知的纸张尺寸 %q（可选：%s）", s.Name, strings.Join(Presets(), ", "))
	}
	return dims[0], dims[1], nil
}
