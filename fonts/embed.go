package fonts

import (
	"fmt"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/ByLCY/docxpdf/layout"
)

// Family 是内置 Go 字体族的名称。
const Family = "Go"

// Styles 列出内置字体族提供的全部变体。
var Styles = []layout.Style{
	layout.StyleRegular,
	layout.StyleBold,
	layout.StyleItalic,
	layout.StyleBold | layout.StyleItalic,
}

// Load 返回内置字体某一变体的 TTF 数据。
func Load(style layout.Style) ([]byte, error) {
	switch style {
	case layout.StyleRegular:
		return goregular.TTF, nil
	case layout.StyleBold:
		return gobold.TTF, nil
	case layout.StyleItalic:
		return goitalic.TTF, nil
	case layout.StyleBold | layout.StyleItalic:
		return gobolditalic.TTF, nil
	}
	return nil, fmt.Errorf("内置字体不包含样式 %s", style)
}
