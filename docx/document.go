package docx

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/ByLCY/docxpdf/layout"
)

// WordprocessingML 的两个命名空间（过渡版与严格版）。
const (
	nsW       = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	nsWStrict = "http://purl.oclc.org/ooxml/wordprocessingml/main"
	nsMC      = "http://schemas.openxmlformats.org/markup-compatibility/2006"
)

// runState 累积一个 <w:r> 内的文本与样式。
type runState struct {
	text   strings.Builder
	bold   bool
	italic bool
	inProp bool
}

func (r *runState) style() layout.Style {
	var s layout.Style
	if r.bold {
		s |= layout.StyleBold
	}
	if r.italic {
		s |= layout.StyleItalic
	}
	return s
}

// parseDocument 以流式方式读取 word/document.xml，按文档顺序产出段落。
// 表格单元格中的段落并入正文；文本框与 mc:Fallback 的内容会被跳过，避免重复。
func parseDocument(r io.Reader) ([]layout.Paragraph, error) {
	dec := xml.NewDecoder(r)
	var (
		paras []layout.Paragraph
		para  *layout.Paragraph
		run   *runState
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("解析 %s 失败: %w", documentPart, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Space == nsMC && t.Name.Local == "Fallback" {
				if err := dec.Skip(); err != nil {
					return nil, fmt.Errorf("解析 %s 失败: %w", documentPart, err)
				}
				continue
			}
			if !isW(t.Name) {
				continue
			}
			switch t.Name.Local {
			case "txbxContent":
				if err := dec.Skip(); err != nil {
					return nil, fmt.Errorf("解析 %s 失败: %w", documentPart, err)
				}
			case "p":
				if para == nil {
					para = &layout.Paragraph{}
				}
			case "r":
				if para != nil {
					run = &runState{}
				}
			case "rPr":
				if run != nil {
					run.inProp = true
				}
			case "b":
				if run != nil && run.inProp {
					run.bold = onOff(t)
				}
			case "i":
				if run != nil && run.inProp {
					run.italic = onOff(t)
				}
			case "t":
				if run == nil {
					continue
				}
				var s string
				if err := dec.DecodeElement(&s, &t); err != nil {
					return nil, fmt.Errorf("解析 %s 失败: %w", documentPart, err)
				}
				run.text.WriteString(s)
			case "tab":
				if run != nil && !run.inProp {
					run.text.WriteByte('\t')
				}
			case "br", "cr":
				if run != nil {
					run.text.WriteByte(' ')
				}
			}

		case xml.EndElement:
			if !isW(t.Name) {
				continue
			}
			switch t.Name.Local {
			case "rPr":
				if run != nil {
					run.inProp = false
				}
			case "r":
				if run != nil && para != nil {
					para.Runs = append(para.Runs, layout.Run{
						Text:  norm.NFC.String(run.text.String()),
						Style: run.style(),
					})
				}
				run = nil
			case "p":
				if para != nil {
					paras = append(paras, *para)
				}
				para = nil
				run = nil
			}
		}
	}
	return paras, nil
}

func isW(name xml.Name) bool {
	return name.Space == nsW || name.Space == nsWStrict
}

// onOff 读取 <w:b w:val="..."/> 一类开关属性；缺省为开启。
func onOff(el xml.StartElement) bool {
	for _, attr := range el.Attr {
		if attr.Name.Local != "val" {
			continue
		}
		switch strings.ToLower(attr.Value) {
		case "0", "false", "off", "none":
			return false
		}
	}
	return true
}
