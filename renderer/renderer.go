package renderer

import "github.com/ByLCY/docxpdf/layout"

// Renderer 将布局结果与图片资源序列化为最终文件，例如 PDF。
// Render 返回生成的二进制数据（例如 PDF 字节切片）以及可能的错误。
type Renderer interface {
	Render(result *layout.Result, images []layout.ImageAsset) ([]byte, error)
}
