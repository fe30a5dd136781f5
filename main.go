package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/ByLCY/docxpdf/convert"
	"github.com/ByLCY/docxpdf/dsl"
	"github.com/ByLCY/docxpdf/layout"
	canvasrenderer "github.com/ByLCY/docxpdf/renderer/canvas"
)

const usageLine = "用法: docxpdf [选项] <输入.docx> <输出.pdf>"

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

// config 收集命令行参数的原始取值。
type config struct {
	page       string
	wrap       int
	lineHeight string
	fontSize   string
	imageGap   string
	title      string
	debug      string
	verify     bool
	logLevel   string
	fonts      map[layout.Style]*string
}

// run 解析参数并执行一次转换，返回进程退出码。
func run(args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("docxpdf", flag.ContinueOnError)
	fs.SetOutput(stderr)
	cfg := config{fonts: map[layout.Style]*string{}}
	fs.StringVar(&cfg.page, "page", dsl.DefaultPageSpec, "页面规格，例如 \"A4 landscape margin 15mm\" 或 \"210mm x 297mm\"")
	fs.IntVar(&cfg.wrap, "wrap", layout.DefaultWrapWidth, "每行最多字符数")
	fs.StringVar(&cfg.lineHeight, "line-height", "12mm", "行高，绝对长度或字号倍数（如 1.4x）")
	fs.StringVar(&cfg.fontSize, "font-size", "12pt", "正文字号")
	fs.StringVar(&cfg.imageGap, "image-gap", "10mm", "图片之间的间距")
	fs.StringVar(&cfg.title, "title", convert.DefaultTitle, "PDF 标题模板，可引用 ${title} ${author} ${subject}")
	fs.StringVar(&cfg.debug, "debug", "", "布局调试 JSON 输出路径")
	fs.BoolVar(&cfg.verify, "verify", false, "写入前用 pdfcpu 校验生成的 PDF")
	fs.StringVar(&cfg.logLevel, "log-level", "info", "日志级别：debug/info/warn/error")
	cfg.fonts[layout.StyleRegular] = fs.String("font", "", "常规体 TTF/OTF 路径（默认内置 Go 字体）")
	cfg.fonts[layout.StyleBold] = fs.String("font-bold", "", "粗体字体路径")
	cfg.fonts[layout.StyleItalic] = fs.String("font-italic", "", "斜体字体路径")
	cfg.fonts[layout.StyleBold|layout.StyleItalic] = fs.String("font-bold-italic", "", "粗斜体字体路径")
	fs.Usage = func() {
		fmt.Fprintln(stderr, usageLine)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() != 2 {
		fmt.Fprintln(stderr, usageLine)
		return 2
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.logLevel)); err != nil {
		fmt.Fprintf(stderr, "无效的日志级别 %q\n", cfg.logLevel)
		return 2
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	convert.SetLogger(logger)

	opts, err := cfg.options()
	if err != nil {
		logger.Error("参数错误", "err", err)
		return 2
	}

	input, output := fs.Arg(0), fs.Arg(1)
	if _, err := convert.Convert(input, output, opts); err != nil {
		stage, _ := convert.StageOf(err)
		logger.Error("生成 PDF 失败", "stage", stage, "err", err)
		return 1
	}
	return 0
}

// options 将命令行取值换算为转换配置。
func (c config) options() (convert.Options, error) {
	lo := layout.DefaultOptions()

	g, err := dsl.ParseGeometry(c.page)
	if err != nil {
		return convert.Options{}, err
	}
	lo.Geometry = g
	lo.WrapWidth = c.wrap

	fontSize, err := layout.ParseLength(c.fontSize)
	if err != nil {
		return convert.Options{}, fmt.Errorf("-font-size: %w", err)
	}
	if fontSize.Unit == layout.UnitNone {
		fontSize.Unit = layout.UnitPT
	}
	lo.FontSize = fontSize.ToPT()
	if lo.FontSize <= 0 {
		return convert.Options{}, fmt.Errorf("-font-size 必须为正数：%s", c.fontSize)
	}

	lh, err := layout.ParseLineHeight(c.lineHeight)
	if err != nil {
		return convert.Options{}, fmt.Errorf("-line-height: %w", err)
	}
	lo.LineHeight = lh.Resolve(fontSize, layout.UnitMM)

	gap, err := layout.ParseLength(c.imageGap)
	if err != nil {
		return convert.Options{}, fmt.Errorf("-image-gap: %w", err)
	}
	lo.ImageGap = gap.ToMM()

	if err := lo.Validate(); err != nil {
		return convert.Options{}, err
	}

	ro := canvasrenderer.Options{Fonts: map[layout.Style]canvasrenderer.Resource{}}
	for style, path := range c.fonts {
		if p := strings.TrimSpace(*path); p != "" {
			ro.Fonts[style] = canvasrenderer.Resource{Path: p}
		}
	}
	rend := canvasrenderer.NewRendererWithOptions(ro)
	lo.Fonts = rend

	return convert.Options{
		Layout:    lo,
		Renderer:  rend,
		Title:     c.title,
		DebugPath: c.debug,
		Verify:    c.verify,
	}, nil
}
