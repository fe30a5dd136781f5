// Package convert 串联 DOCX 提取、布局、PDF 渲染与输出写入。
package convert

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ByLCY/docxpdf/binding"
	"github.com/ByLCY/docxpdf/docx"
	"github.com/ByLCY/docxpdf/layout"
	"github.com/ByLCY/docxpdf/renderer"
	canvasrenderer "github.com/ByLCY/docxpdf/renderer/canvas"
)

// Extension 是可接受的输入文件扩展名（不区分大小写）。
const Extension = ".docx"

// DefaultTitle 是 PDF 标题模板的默认值：优先使用文档标题。
const DefaultTitle = "${title|Word to PDF}"

// Options 控制一次转换。
type Options struct {
	// Layout 中的零值字段取 layout.DefaultOptions() 的对应值。
	Layout layout.Options
	// Renderer 为空时使用内置 Go 字体的 canvas 渲染器。
	Renderer renderer.Renderer
	// Title 是 PDF 标题模板，可引用 ${title} ${author} ${subject} 等文档属性。
	Title string
	// DebugPath 非空时把布局指令写成 JSON。
	DebugPath string
	// Verify 在写入前用 pdfcpu 校验 PDF 结构与页数。
	Verify bool
}

// Report 汇总一次成功转换的结果。
type Report struct {
	Paragraphs int
	Images     int
	Pages      int
	Bytes      int
	Elapsed    time.Duration
}

// Convert 将 inputPath 的 DOCX 转换为 outputPath 的 PDF。
// 任一阶段失败都返回 *Error，且不会留下不完整的输出文件。
func Convert(inputPath, outputPath string, opts Options) (*Report, error) {
	start := time.Now()
	log := Logger()

	if err := ValidateInput(inputPath); err != nil {
		return nil, stageErr(StageInput, err)
	}
	if outputPath == "" {
		return nil, stageErr(StageInput, fmt.Errorf("%w: 输出路径为空", ErrInvalidInput))
	}
	log.Info("开始转换", "input", inputPath, "output", outputPath)

	r, err := docx.Open(inputPath)
	if err != nil {
		return nil, stageErr(StageExtract, err)
	}
	defer r.Close()

	content, err := r.Content()
	if err != nil {
		return nil, stageErr(StageParse, err)
	}
	images, err := r.Images()
	if err != nil {
		return nil, stageErr(StageExtract, err)
	}

	rend := opts.Renderer
	if rend == nil {
		rend = canvasrenderer.NewRenderer()
	}

	doc := content.Document()
	doc.Meta.Title = ResolveTitle(opts.Title, content.Meta)

	result, err := layout.Build(doc, images, layoutOptions(opts.Layout, rend))
	if err != nil {
		return nil, stageErr(StageLayout, err)
	}
	log.Debug("布局完成", "pages", result.PageCount, "commands", len(result.Commands))

	if opts.DebugPath != "" {
		if err := writeDebug(result, opts.DebugPath); err != nil {
			return nil, stageErr(StageEmit, err)
		}
	}

	pdfBytes, err := rend.Render(result, images)
	if err != nil {
		return nil, stageErr(StageEmit, fmt.Errorf("渲染 PDF 失败: %w", err))
	}
	if opts.Verify {
		pages, err := VerifyPDF(pdfBytes)
		if err != nil {
			return nil, stageErr(StageEmit, err)
		}
		if pages != result.PageCount {
			return nil, stageErr(StageEmit, fmt.Errorf("PDF 页数 %d 与布局页数 %d 不一致", pages, result.PageCount))
		}
	}
	if err := writeFileAtomic(outputPath, pdfBytes); err != nil {
		return nil, stageErr(StageEmit, err)
	}

	report := &Report{
		Paragraphs: len(content.Paragraphs),
		Images:     len(images),
		Pages:      result.PageCount,
		Bytes:      len(pdfBytes),
		Elapsed:    time.Since(start),
	}
	log.Info("转换完成", "output", outputPath, "pages", report.Pages, "images", report.Images, "bytes", report.Bytes, "elapsed", report.Elapsed)
	return report, nil
}

// ValidateInput 检查输入文件存在、是普通文件且扩展名为 .docx。
func ValidateInput(path string) error {
	if !strings.EqualFold(filepath.Ext(path), Extension) {
		return fmt.Errorf("%w: %s 的扩展名不是 %s", ErrInvalidInput, path, Extension)
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %s 不是普通文件", ErrInvalidInput, path)
	}
	return nil
}

// ResolveTitle 用文档属性展开标题模板；模板为空时使用 DefaultTitle。
func ResolveTitle(template string, meta layout.DocumentMeta) string {
	if template == "" {
		template = DefaultTitle
	}
	return binding.Interpolate(template, binding.MetaValues(meta))
}

// layoutOptions 逐项补齐零值配置；未指定字体集时使用渲染器自身的字体。
// ImageGap 为 0 是合法取值，只有整组排版参数都未设置时才补默认间距。
func layoutOptions(o layout.Options, rend renderer.Renderer) layout.Options {
	def := layout.DefaultOptions()
	if o.Geometry == (layout.Geometry{}) && o.WrapWidth == 0 && o.LineHeight == 0 && o.FontSize == 0 && o.ImageGap == 0 {
		o.ImageGap = def.ImageGap
	}
	if o.Geometry == (layout.Geometry{}) {
		o.Geometry = def.Geometry
	}
	if o.WrapWidth == 0 {
		o.WrapWidth = def.WrapWidth
	}
	if o.LineHeight == 0 {
		o.LineHeight = def.LineHeight
	}
	if o.FontSize == 0 {
		o.FontSize = def.FontSize
	}
	if o.Fonts == nil {
		if fs, ok := rend.(layout.FontSet); ok {
			o.Fonts = fs
		}
	}
	if o.Logger == nil {
		o.Logger = Logger()
	}
	return o
}

func writeDebug(result *layout.Result, debugPath string) error {
	if err := os.MkdirAll(filepath.Dir(debugPath), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	if err := layout.WriteDebugJSON(result, debugPath); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}
