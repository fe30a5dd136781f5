package layout

import (
	"strings"
	"unicode/utf8"
)

// WrapWords 把文本按空白切分成词，再贪心地装入行缓冲。
// 追加下一个词会使缓冲长度达到或超过 width 时先输出当前行；
// 单个超长词独占一行，不做断词。每行保留词后的分隔空格。
func WrapWords(text string, width int) []string {
	var (
		lines []string
		buf   strings.Builder
		n     int
	)
	for _, word := range strings.Fields(text) {
		wn := utf8.RuneCountInString(word)
		if n > 0 && n+wn >= width {
			lines = append(lines, buf.String())
			buf.Reset()
			n = 0
		}
		buf.WriteString(word)
		buf.WriteByte(' ')
		n += wn + 1
	}
	if n > 0 {
		lines = append(lines, buf.String())
	}
	return lines
}

// layoutParagraph 依次排版段落内的每个运行，结束后再空一行分隔段落。
func (e *engine) layoutParagraph(cur Cursor, p Paragraph) (Cursor, []Command) {
	var cmds []Command
	for _, run := range p.Runs {
		var out []Command
		cur, out = e.layoutRun(cur, run)
		cmds = append(cmds, out...)
	}
	return advance(cur, e.opts.LineHeight), cmds
}

// layoutRun 将一个运行折成若干行，每行独立做分页检查。
func (e *engine) layoutRun(cur Cursor, run Run) (Cursor, []Command) {
	font := ResolveFont(run.Style, e.opts.Fonts)
	lines := WrapWords(run.Text, e.opts.WrapWidth)
	cmds := make([]Command, 0, len(lines))
	for _, content := range lines {
		var cmd Command
		cur, cmd = e.placeLine(cur, content, font)
		cmds = append(cmds, cmd)
	}
	return cur, cmds
}

func (e *engine) placeLine(cur Cursor, content string, font Style) (Cursor, Command) {
	cur = e.ensureSpace(cur, e.opts.LineHeight)
	cmd := Command{
		Page: cur.Page,
		Text: &TextLine{
			X:       e.opts.Geometry.Margin,
			Y:       cur.Y,
			Font:    font,
			Content: content,
		},
	}
	return advance(cur, e.opts.LineHeight), cmd
}
