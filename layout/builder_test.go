package layout

import (
	"bytes"
	"encoding/json"
	"math"
	"math/rand/v2"
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"
)

// stubFonts 是一个只声明部分字体变体的 FontSet，用于验证回退策略。
type stubFonts map[Style]bool

func (s stubFonts) Has(style Style) bool { return s[style] }

func build(t *testing.T, doc Document, images []ImageAsset, opts Options) *Result {
	t.Helper()
	res, err := Build(doc, images, opts)
	if err != nil {
		t.Fatalf("布局计算失败: %v", err)
	}
	return res
}

func paragraph(texts ...string) Paragraph {
	p := Paragraph{}
	for _, s := range texts {
		p.Runs = append(p.Runs, Run{Text: s})
	}
	return p
}

func textLines(res *Result) []*TextLine {
	var out []*TextLine
	for _, c := range res.Commands {
		if c.Text != nil {
			out = append(out, c.Text)
		}
	}
	return out
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestHelloWorldSingleLine(t *testing.T) {
	doc := Document{Paragraphs: []Paragraph{paragraph("Hello world")}}
	res := build(t, doc, nil, DefaultOptions())

	if len(res.Commands) != 1 {
		t.Fatalf("期望 1 条指令，实际 %d", len(res.Commands))
	}
	cmd := res.Commands[0]
	if cmd.Page != 0 || cmd.Text == nil {
		t.Fatalf("期望第 0 页的文本行，实际 %#v", cmd)
	}
	want := TextLine{X: 20, Y: 277, Font: StyleRegular, Content: "Hello world "}
	if *cmd.Text != want {
		t.Fatalf("文本行不符: got=%#v want=%#v", *cmd.Text, want)
	}
	if res.PageCount != 1 {
		t.Fatalf("期望 1 页，实际 %d", res.PageCount)
	}
}

func TestEmptyDocument(t *testing.T) {
	res := build(t, Document{}, nil, DefaultOptions())
	if len(res.Commands) != 0 {
		t.Fatalf("空文档不应产生指令，实际 %d", len(res.Commands))
	}
	if res.PageCount != 1 {
		t.Fatalf("空文档仍应输出 1 页空白页，实际 %d", res.PageCount)
	}
	if pages := res.Pages(); len(pages) != 1 || len(pages[0]) != 0 {
		t.Fatalf("Pages() 应返回一个空页，实际 %#v", pages)
	}
}

func TestEmptyRunsAndParagraphs(t *testing.T) {
	doc := Document{Paragraphs: []Paragraph{
		{},
		paragraph("", "   \t "),
		paragraph("after"),
	}}
	res := build(t, doc, nil, DefaultOptions())
	lines := textLines(res)
	if len(lines) != 1 {
		t.Fatalf("空运行不应产生行，期望 1 行，实际 %d", len(lines))
	}
	// 两个空段落各自推进一个空行。
	if want := 277.0 - 2*DefaultLineHeight; !approx(lines[0].Y, want) {
		t.Fatalf("空段落之后的行应位于 %g，实际 %g", want, lines[0].Y)
	}
}

func TestParagraphSpacingAndRuns(t *testing.T) {
	doc := Document{Paragraphs: []Paragraph{
		{Runs: []Run{{Text: "first"}, {Text: "second", Style: StyleBold}}},
		paragraph("third"),
	}}
	res := build(t, doc, nil, DefaultOptions())
	lines := textLines(res)
	if len(lines) != 3 {
		t.Fatalf("期望 3 行，实际 %d", len(lines))
	}
	wantY := []float64{277, 265, 241}
	for i, ln := range lines {
		if !approx(ln.Y, wantY[i]) {
			t.Fatalf("第 %d 行 y 期望 %g，实际 %g", i, wantY[i], ln.Y)
		}
	}
	if lines[1].Font != StyleBold {
		t.Fatalf("粗体运行应选择粗体字体，实际 %s", lines[1].Font)
	}
}

func TestWrapWords(t *testing.T) {
	cases := []struct {
		name  string
		text  string
		width int
		want  []string
	}{
		{"empty", "", 10, nil},
		{"whitespace only", " \n\t ", 10, nil},
		{"fits", "ab cd", 10, []string{"ab cd "}},
		{"reach budget flushes", "abcd efgh", 9, []string{"abcd ", "efgh "}},
		{"just below budget", "abc efgh", 9, []string{"abc efgh "}},
		{"long word alone", "tiny enormousword tail", 5, []string{"tiny ", "enormousword ", "tail "}},
		{"leading long word", "enormousword x", 5, []string{"enormousword ", "x "}},
		{"collapses spaces", "a   b\n\nc", 80, []string{"a b c "}},
		{"counts runes", "ééé ééé", 8, []string{"ééé ééé "}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := WrapWords(c.text, c.width)
			if !reflect.DeepEqual(got, c.want) {
				t.Fatalf("WrapWords(%q, %d) = %q, want %q", c.text, c.width, got, c.want)
			}
		})
	}
}

func TestWrapProperties(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	const width = 30
	for iter := 0; iter < 200; iter++ {
		words := make([]string, rng.IntN(40))
		total := 0
		for i := range words {
			words[i] = strings.Repeat("x", 1+rng.IntN(width-1))
			total += len(words[i])
		}
		text := strings.Join(words, " ")
		lines := WrapWords(text, width)

		if minLines := (total + width - 1) / width; len(lines) < minLines {
			t.Fatalf("行数 %d 少于下限 %d", len(lines), minLines)
		}
		for _, ln := range lines {
			body := strings.TrimSuffix(ln, " ")
			if utf8.RuneCountInString(body) >= width && strings.Contains(body, " ") {
				t.Fatalf("多词行长度应小于 %d: %q", width, body)
			}
		}
		if utf8.RuneCountInString(text) < width && len(text) > 0 && len(lines) != 1 {
			t.Fatalf("短于预算的文本应只产生一行，实际 %d", len(lines))
		}
		if got := strings.Fields(strings.Join(lines, "")); !reflect.DeepEqual(got, strings.Fields(text)) && len(words) > 0 {
			t.Fatalf("折行不应丢失或改写单词")
		}
	}
}

func TestParagraphSpillsAcrossPages(t *testing.T) {
	// 每个词 9 个字符，W=80 时每行 8 个词；240 个词正好 30 行。
	word := strings.Repeat("a", 9)
	text := strings.TrimSpace(strings.Repeat(word+" ", 240))
	res := build(t, Document{Paragraphs: []Paragraph{paragraph(text)}}, nil, DefaultOptions())

	if len(res.Commands) != 30 {
		t.Fatalf("期望 30 行，实际 %d", len(res.Commands))
	}
	for i, cmd := range res.Commands {
		wantPage := 0
		if i >= 21 {
			wantPage = 1
		}
		if cmd.Page != wantPage {
			t.Fatalf("第 %d 行应在第 %d 页，实际 %d", i, wantPage, cmd.Page)
		}
	}
	if first := res.Commands[21].Text; !approx(first.Y, 277) {
		t.Fatalf("第二页首行 y 期望 277，实际 %g", first.Y)
	}
	if last := res.Commands[20].Text; !approx(last.Y, 277-20*12) {
		t.Fatalf("第一页末行 y 期望 %g，实际 %g", 277.0-20*12, last.Y)
	}
	if res.PageCount != 2 {
		t.Fatalf("期望 2 页，实际 %d", res.PageCount)
	}
}

func TestImageFitAndAdvance(t *testing.T) {
	scale, height := FitWidth(400, 300, A4.PrintableWidth())
	if !approx(scale, 0.425) || !approx(height, 127.5) {
		t.Fatalf("缩放结果不符: scale=%g height=%g", scale, height)
	}

	e := &engine{opts: DefaultOptions()}
	e.log = discardLogger()
	start := Cursor{Page: 0, Y: 277}
	cur, cmd := e.layoutImage(start, 0, ImageAsset{Name: "word/media/image1.png", PixelWidth: 400, PixelHeight: 300})
	img := cmd.Image
	if img == nil {
		t.Fatalf("期望图片指令")
	}
	if !approx(img.X, 20) || !approx(img.Y, 277-127.5) || !approx(img.Scale, 0.425) {
		t.Fatalf("图片放置不符: %#v", *img)
	}
	if !approx(img.Width, 170) || !approx(img.Height, 127.5) {
		t.Fatalf("图片尺寸不符: %gx%g", img.Width, img.Height)
	}
	if !approx(start.Y-cur.Y, 137.5) || cur.Page != 0 {
		t.Fatalf("光标应下移 137.5，实际 %g (page %d)", start.Y-cur.Y, cur.Page)
	}
}

func TestImageScaleIndependentOfPosition(t *testing.T) {
	asset := ImageAsset{Name: "a", PixelWidth: 400, PixelHeight: 300}
	res := build(t, Document{}, []ImageAsset{asset, asset, asset}, DefaultOptions())
	if len(res.Commands) != 3 {
		t.Fatalf("期望 3 条图片指令，实际 %d", len(res.Commands))
	}
	for i, cmd := range res.Commands {
		if !approx(cmd.Image.Scale, 0.425) {
			t.Fatalf("第 %d 张图片缩放应恒为 0.425，实际 %g", i, cmd.Image.Scale)
		}
	}
	// 第二张放不下（139.5-127.5 < 20），换到第二页顶部。
	if res.Commands[1].Page != 1 || !approx(res.Commands[1].Image.Y, 277-127.5) {
		t.Fatalf("第二张图片应在第 1 页顶部，实际 %#v", res.Commands[1])
	}
}

func TestImagesFollowLastTextPage(t *testing.T) {
	word := strings.Repeat("a", 9)
	text := strings.TrimSpace(strings.Repeat(word+" ", 240))
	asset := ImageAsset{Name: "small", PixelWidth: 170, PixelHeight: 10}
	res := build(t, Document{Paragraphs: []Paragraph{paragraph(text)}}, []ImageAsset{asset}, DefaultOptions())

	last := res.Commands[len(res.Commands)-1]
	if last.Image == nil {
		t.Fatalf("图片应排在全部文本之后")
	}
	if last.Page != 1 {
		t.Fatalf("图片应接在正文最后一页（1），实际 %d", last.Page)
	}
	// 正文在第二页排了 9 行，随后空一行。
	wantTop := 277.0 - 10*12
	if !approx(last.Image.Y+last.Image.Height, wantTop) {
		t.Fatalf("图片顶部期望 %g，实际 %g", wantTop, last.Image.Y+last.Image.Height)
	}
}

// TestOversizedImageIsNotDownscaledByHeight 记录已知限制：按宽度缩放后高于可用区域的图片
// 不会再按高度缩小，在新页顶部照常放置并越过下边距。
func TestOversizedImageIsNotDownscaledByHeight(t *testing.T) {
	tall := ImageAsset{Name: "tall", PixelWidth: 100, PixelHeight: 400}
	res := build(t, Document{Paragraphs: []Paragraph{paragraph("intro")}}, []ImageAsset{tall, tall}, DefaultOptions())

	if len(res.Commands) != 3 {
		t.Fatalf("期望 3 条指令，实际 %d", len(res.Commands))
	}
	first, second := res.Commands[1], res.Commands[2]
	if first.Page != 1 || second.Page != 2 {
		t.Fatalf("超高图片每张应独占一页: pages=%d,%d", first.Page, second.Page)
	}
	if !approx(first.Image.Height, 680) {
		t.Fatalf("高度应为 400*1.7=680，实际 %g", first.Image.Height)
	}
	if first.Image.Y >= A4.Margin {
		t.Fatalf("已知限制：超高图片的底边应越过下边距，实际 y=%g", first.Image.Y)
	}
}

func TestLayoutInvariants(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 5))
	opts := DefaultOptions()
	opts.WrapWidth = 40
	opts.LineHeight = 7

	var doc Document
	for p := 0; p < 60; p++ {
		var para Paragraph
		runs := rng.IntN(4)
		for r := 0; r < runs; r++ {
			words := make([]string, rng.IntN(50))
			for i := range words {
				words[i] = strings.Repeat("w", 1+rng.IntN(12))
			}
			para.Runs = append(para.Runs, Run{Text: strings.Join(words, " "), Style: Style(rng.IntN(4))})
		}
		doc.Paragraphs = append(doc.Paragraphs, para)
	}
	var images []ImageAsset
	for i := 0; i < 8; i++ {
		w := 50 + rng.IntN(800)
		images = append(images, ImageAsset{Name: "img", PixelWidth: w, PixelHeight: 1 + rng.IntN(w)})
	}

	res := build(t, doc, images, opts)
	g := opts.Geometry
	prev := 0
	for i, cmd := range res.Commands {
		if cmd.Page < prev || cmd.Page > prev+1 {
			t.Fatalf("第 %d 条指令页码 %d 不满足单调递增（前一条 %d）", i, cmd.Page, prev)
		}
		prev = cmd.Page
		var y float64
		switch {
		case cmd.Text != nil:
			y = cmd.Text.Y
		case cmd.Image != nil:
			y = cmd.Image.Y
		default:
			t.Fatalf("第 %d 条指令既不是文本也不是图片", i)
		}
		if y < g.Margin-1e-9 || y > g.Top()+1e-9 {
			t.Fatalf("第 %d 条指令 y=%g 超出 [%g, %g]", i, y, g.Margin, g.Top())
		}
	}
	if res.PageCount != prev+1 {
		t.Fatalf("PageCount 应为最后页码加一: %d vs %d", res.PageCount, prev+1)
	}

	again := build(t, doc, images, opts)
	if !reflect.DeepEqual(res, again) {
		t.Fatalf("同样的输入两次布局结果应完全一致")
	}
	var a, b bytes.Buffer
	if err := EncodeDebugJSON(&a, res); err != nil {
		t.Fatalf("编码调试 JSON 失败: %v", err)
	}
	if err := EncodeDebugJSON(&b, again); err != nil {
		t.Fatalf("编码调试 JSON 失败: %v", err)
	}
	if !bytes.Equal(a.Bytes(), b.Bytes()) {
		t.Fatalf("两次布局的 JSON 输出应逐字节一致")
	}
}

func TestEnsureSpace(t *testing.T) {
	g := A4
	cur, broke := ensureSpace(Cursor{Page: 2, Y: 40}, 12, g)
	if broke || cur.Y != 40 || cur.Page != 2 {
		t.Fatalf("40-12 >= 20，不应换页: %#v", cur)
	}
	cur, broke = ensureSpace(Cursor{Page: 2, Y: 31}, 12, g)
	if !broke || cur.Page != 3 || cur.Y != g.Top() {
		t.Fatalf("31-12 < 20，应换到第 3 页顶部: %#v", cur)
	}
	cur, broke = ensureSpace(Cursor{Page: 0, Y: g.Top()}, 1000, g)
	if broke || cur.Page != 0 {
		t.Fatalf("页顶不应再换页: %#v", cur)
	}
}

func TestResolveFont(t *testing.T) {
	full := stubFonts{StyleBold: true, StyleItalic: true, StyleBold | StyleItalic: true}
	noCombo := stubFonts{StyleBold: true, StyleItalic: true}
	italicOnly := stubFonts{StyleItalic: true}
	none := stubFonts{}

	cases := []struct {
		style Style
		fonts FontSet
		want  Style
	}{
		{StyleRegular, full, StyleRegular},
		{StyleBold, full, StyleBold},
		{StyleItalic, full, StyleItalic},
		{StyleBold | StyleItalic, full, StyleBold | StyleItalic},
		{StyleBold | StyleItalic, noCombo, StyleBold},
		{StyleBold | StyleItalic, italicOnly, StyleItalic},
		{StyleBold, italicOnly, StyleRegular},
		{StyleItalic, none, StyleRegular},
		{StyleBold | StyleItalic, nil, StyleBold | StyleItalic},
	}
	for _, c := range cases {
		if got := ResolveFont(c.style, c.fonts); got != c.want {
			t.Fatalf("ResolveFont(%s) = %s, want %s", c.style, got, c.want)
		}
	}

	opts := DefaultOptions()
	opts.Fonts = noCombo
	doc := Document{Paragraphs: []Paragraph{{Runs: []Run{{Text: "both", Style: StyleBold | StyleItalic}}}}}
	res := build(t, doc, nil, opts)
	if got := res.Commands[0].Text.Font; got != StyleBold {
		t.Fatalf("缺少粗斜体时应回退到粗体，实际 %s", got)
	}
}

func TestBuildRejectsInvalidInput(t *testing.T) {
	bad := DefaultOptions()
	bad.Geometry = Geometry{Width: 30, Height: 297, Margin: 20}
	if _, err := Build(Document{}, nil, bad); err == nil {
		t.Fatalf("边距超过页宽时应返回错误")
	}
	bad = DefaultOptions()
	bad.WrapWidth = 0
	if _, err := Build(Document{}, nil, bad); err == nil {
		t.Fatalf("换行宽度为 0 时应返回错误")
	}
	bad = DefaultOptions()
	bad.LineHeight = 0
	if _, err := Build(Document{}, nil, bad); err == nil {
		t.Fatalf("行高为 0 时应返回错误")
	}
	if _, err := Build(Document{}, []ImageAsset{{Name: "zero", PixelWidth: 0, PixelHeight: 10}}, DefaultOptions()); err == nil {
		t.Fatalf("零宽图片应被拒绝")
	}
}

func TestDebugJSONUsesStyleNames(t *testing.T) {
	doc := Document{Paragraphs: []Paragraph{{Runs: []Run{{Text: "x", Style: StyleItalic}}}}}
	res := build(t, doc, nil, DefaultOptions())
	var buf bytes.Buffer
	if err := EncodeDebugJSON(&buf, res); err != nil {
		t.Fatalf("编码调试 JSON 失败: %v", err)
	}
	if !strings.Contains(buf.String(), `"font": "italic"`) {
		t.Fatalf("调试 JSON 应以名称输出字体样式: %s", buf.String())
	}

	var back Result
	if err := json.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Fatalf("调试 JSON 无法读回: %v", err)
	}
	if !reflect.DeepEqual(back.Commands, res.Commands) || back.PageCount != res.PageCount {
		t.Fatalf("读回的指令不符:\n got=%+v\nwant=%+v", back.Commands, res.Commands)
	}

	for _, style := range []Style{StyleRegular, StyleBold, StyleItalic, StyleBold | StyleItalic} {
		text, _ := style.MarshalText()
		var got Style
		if err := got.UnmarshalText(text); err != nil || got != style {
			t.Fatalf("%s 往返失败: got=%v err=%v", style, got, err)
		}
	}
	var bad Style
	if err := bad.UnmarshalText([]byte("heavy")); err == nil {
		t.Fatalf("未知样式名称应返回错误")
	}
}
