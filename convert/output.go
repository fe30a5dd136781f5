package convert

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// VerifyPDF 用 pdfcpu 读取并校验 PDF，返回页数。
func VerifyPDF(data []byte) (int, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return 0, fmt.Errorf("pdfcpu 校验失败: %w", err)
	}
	return ctx.PageCount, nil
}

// writeFileAtomic 先写入同目录下的临时文件再改名，
// 失败时目标路径保持原状（已有文件不会被截断）。
func writeFileAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("创建临时文件失败: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("写入 PDF 文件失败: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("写入 PDF 文件失败: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("写入 PDF 文件失败: %w", err)
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("设置文件权限失败: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("写入 PDF 文件失败: %w", err)
	}
	return nil
}
