package layout

import (
	"fmt"
	"log/slog"
)

// phase 是一次布局过程的阶段：先排全部段落，再在最后一页之后追加全部图片。
type phase int

const (
	phaseIdle phase = iota
	phaseParagraphs
	phaseImages
	phaseDone
)

func (p phase) String() string {
	switch p {
	case phaseParagraphs:
		return "paragraphs"
	case phaseImages:
		return "images"
	case phaseDone:
		return "done"
	default:
		return "idle"
	}
}

// engine 只持有不可变的配置；光标由各布局函数显式传入并返回。
type engine struct {
	opts  Options
	log   *slog.Logger
	phase phase
}

// Build 将段落与图片转换成分页的放置指令。
// 仅在配置或图片尺寸非法时返回错误，校验通过后布局总能完成。
func Build(doc Document, images []ImageAsset, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	for i, img := range images {
		if img.PixelWidth <= 0 || img.PixelHeight <= 0 {
			return nil, fmt.Errorf("layout: 图片 #%d %s 的像素尺寸非法：%dx%d", i, img.Name, img.PixelWidth, img.PixelHeight)
		}
	}

	e := &engine{opts: opts, log: opts.Logger}
	if e.log == nil {
		e.log = discardLogger()
	}

	cur := Cursor{Page: 0, Y: opts.Geometry.Top()}
	var cmds []Command

	e.enter(phaseParagraphs)
	for _, p := range doc.Paragraphs {
		var out []Command
		cur, out = e.layoutParagraph(cur, p)
		cmds = append(cmds, out...)
	}

	// 图片接在正文最后一页之后，不回到第一页。
	e.enter(phaseImages)
	for i, img := range images {
		var cmd Command
		cur, cmd = e.layoutImage(cur, i, img)
		cmds = append(cmds, cmd)
	}
	e.enter(phaseDone)

	return &Result{
		Geometry:  opts.Geometry,
		FontSize:  opts.FontSize,
		PageCount: cur.Page + 1,
		Commands:  cmds,
		Meta:      doc.Meta,
	}, nil
}

func (e *engine) enter(p phase) {
	e.log.Debug("布局阶段切换", "from", e.phase, "to", p)
	e.phase = p
}

func (e *engine) ensureSpace(cur Cursor, h float64) Cursor {
	next, broke := ensureSpace(cur, h, e.opts.Geometry)
	if broke {
		e.log.Debug("换页", "page", next.Page, "item_height_mm", h)
	}
	return next
}

func discardLogger() *slog.Logger { return slog.New(slog.DiscardHandler) }
