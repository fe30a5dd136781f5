package docx

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/ByLCY/docxpdf/layout"
)

// corePropertiesXML 对应 docProps/core.xml，字段按本地名匹配 dc:/cp: 命名空间。
type corePropertiesXML struct {
	Title    string `xml:"title"`
	Subject  string `xml:"subject"`
	Creator  string `xml:"creator"`
	Keywords string `xml:"keywords"`
}

func parseCoreProperties(data []byte) (layout.DocumentMeta, error) {
	var core corePropertiesXML
	if err := xml.Unmarshal(data, &core); err != nil {
		return layout.DocumentMeta{}, fmt.Errorf("解析 %s 失败: %w", corePart, err)
	}
	meta := layout.DocumentMeta{
		Title:   strings.TrimSpace(core.Title),
		Subject: strings.TrimSpace(core.Subject),
		Author:  strings.TrimSpace(core.Creator),
	}
	for _, kw := range strings.FieldsFunc(core.Keywords, func(r rune) bool { return r == ',' || r == ';' }) {
		if kw = strings.TrimSpace(kw); kw != "" {
			meta.Keywords = append(meta.Keywords, kw)
		}
	}
	return meta, nil
}

// appPropertiesXML 对应 docProps/app.xml，Application 是生成原文档的程序。
type appPropertiesXML struct {
	Application string `xml:"Application"`
}

// parseAppProperties 返回生成原文档的程序名，作为 PDF 的 Creator。
func parseAppProperties(data []byte) (string, error) {
	var app appPropertiesXML
	if err := xml.Unmarshal(data, &app); err != nil {
		return "", fmt.Errorf("解析 %s 失败: %w", appPart, err)
	}
	return strings.TrimSpace(app.Application), nil
}
