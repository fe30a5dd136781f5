// Package docx 从 Office Open XML 文档容器中提取段落、文本运行与嵌入图片。
package docx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"

	"github.com/ByLCY/docxpdf/layout"
)

const (
	documentPart = "word/document.xml"
	corePart     = "docProps/core.xml"
	appPart      = "docProps/app.xml"
	contentTypes = "[Content_Types].xml"

	// MediaPrefix 是容器内嵌入媒体所在的目录。
	MediaPrefix = "word/media/"
)

// Content 是从文档中解析出的内容模型。
type Content struct {
	Paragraphs []layout.Paragraph
	Meta       layout.DocumentMeta
}

// Document 将内容转换成布局引擎的输入。
func (c *Content) Document() layout.Document {
	return layout.Document{Paragraphs: c.Paragraphs, Meta: c.Meta}
}

// Reader 提供对 DOCX 容器内部件的访问。
type Reader struct {
	zr     *zip.Reader
	closer io.Closer
}

// Open 打开磁盘上的 DOCX 文件并检查必需部件是否存在。
func Open(path string) (*Reader, error) {
	rc, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("打开 ZIP 容器失败: %w", err)
	}
	r := &Reader{zr: &rc.Reader, closer: rc}
	if err := r.validate(); err != nil {
		rc.Close()
		return nil, err
	}
	return r, nil
}

// NewReader 从内存中的容器字节创建 Reader。
func NewReader(data []byte) (*Reader, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("打开 ZIP 容器失败: %w", err)
	}
	r := &Reader{zr: zr}
	if err := r.validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Parse 解析整个容器的字节内容，返回段落与元信息。
func Parse(data []byte) (*Content, error) {
	r, err := NewReader(data)
	if err != nil {
		return nil, err
	}
	return r.Content()
}

// ExtractImages 打开 path 指向的容器并解码其中的全部嵌入图片。
func ExtractImages(path string) ([]layout.ImageAsset, error) {
	r, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return r.Images()
}

// Close 释放底层文件。
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	err := r.closer.Close()
	r.closer = nil
	return err
}

// Content 解析 word/document.xml 与可选的 docProps/core.xml、docProps/app.xml。
func (r *Reader) Content() (*Content, error) {
	data, err := r.readPart(documentPart)
	if err != nil {
		return nil, err
	}
	paras, err := parseDocument(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	content := &Content{Paragraphs: paras}

	if r.file(corePart) != nil {
		core, err := r.readPart(corePart)
		if err == nil {
			content.Meta, err = parseCoreProperties(core)
		}
		if err != nil {
			// 元信息可选，损坏时忽略。
			logger().Warn("忽略无法解析的文档属性", "part", corePart, "err", err)
		}
	}
	if r.file(appPart) != nil {
		app, err := r.readPart(appPart)
		if err == nil {
			content.Meta.Creator, err = parseAppProperties(app)
		}
		if err != nil {
			logger().Warn("忽略无法解析的文档属性", "part", appPart, "err", err)
		}
	}
	return content, nil
}

func (r *Reader) validate() error {
	for _, name := range []string{contentTypes, documentPart} {
		if r.file(name) == nil {
			return fmt.Errorf("不是有效的 DOCX 容器：缺少 %s", name)
		}
	}
	return nil
}

func (r *Reader) file(name string) *zip.File {
	for _, f := range r.zr.File {
		if f.Name == name {
			return f
		}
	}
	return nil
}

func (r *Reader) readPart(name string) ([]byte, error) {
	f := r.file(name)
	if f == nil {
		return nil, fmt.Errorf("容器中缺少 %s", name)
	}
	return readFile(f)
}

func readFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("打开 %s 失败: %w", f.Name, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("读取 %s 失败: %w", f.Name, err)
	}
	return data, nil
}
