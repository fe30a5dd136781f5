package layout

import (
	"fmt"
	"log/slog"
)

// 默认排版常量。
const (
	DefaultWrapWidth  = 80   // 每行最多字符数（按码点计，不测量字形宽度）
	DefaultLineHeight = 12.0 // mm
	DefaultFontSize   = 12.0 // pt
	DefaultImageGap   = 10.0 // mm
)

// Options 配置布局阶段所需的常量与依赖，例如可用字体集合。
type Options struct {
	Geometry   Geometry
	WrapWidth  int     // 换行预算 W，字符数
	LineHeight float64 // 行高，mm
	FontSize   float64 // 字号，pt；布局只透传给渲染器
	ImageGap   float64 // 图片之间的间距，mm
	Fonts      FontSet
	Logger     *slog.Logger
}

// DefaultOptions 返回 A4 页面与默认排版常量。
func DefaultOptions() Options {
	return Options{
		Geometry:   A4,
		WrapWidth:  DefaultWrapWidth,
		LineHeight: DefaultLineHeight,
		FontSize:   DefaultFontSize,
		ImageGap:   DefaultImageGap,
	}
}

// Validate 检查页面几何与排版常量是否合法。
func (o Options) Validate() error {
	g := o.Geometry
	if g.Margin < 0 {
		return fmt.Errorf("页边距不能为负数：%gmm", g.Margin)
	}
	if g.Width <= 2*g.Margin || g.Height <= 2*g.Margin {
		return fmt.Errorf("页面 %gx%gmm 容不下 %gmm 的边距", g.Width, g.Height, g.Margin)
	}
	if o.WrapWidth <= 0 {
		return fmt.Errorf("换行宽度必须为正数：%d", o.WrapWidth)
	}
	if o.LineHeight <= 0 {
		return fmt.Errorf("行高必须为正数：%gmm", o.LineHeight)
	}
	if o.ImageGap < 0 {
		return fmt.Errorf("图片间距不能为负数：%gmm", o.ImageGap)
	}
	return nil
}

// FontSet 报告渲染器实际可用的字体变体。
type FontSet interface {
	Has(style Style) bool
}

// allFonts 在未注入 FontSet 时假定四种组合都可用。
type allFonts struct{}

func (allFonts) Has(Style) bool { return true }

// ResolveFont 根据运行样式选择字体变体。
// 回退策略（bold-wins）：组合不可用时先退到粗体，再退到斜体，最后退到常规字体。
func ResolveFont(style Style, fonts FontSet) Style {
	if fonts == nil {
		fonts = allFonts{}
	}
	candidates := []Style{style}
	if style == StyleBold|StyleItalic {
		candidates = append(candidates, StyleBold, StyleItalic)
	}
	for _, c := range candidates {
		if c != StyleRegular && fonts.Has(c) {
			return c
		}
	}
	return StyleRegular
}
