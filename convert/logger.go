package convert

import (
	"log/slog"
	"sync/atomic"

	"github.com/ByLCY/docxpdf/docx"
)

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(slog.DiscardHandler))
}

// SetLogger 设置转换流程的日志器，并同步给 docx 提取器。
// 传入 nil 恢复为静默。
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	loggerPtr.Store(l)
	docx.SetLogger(l)
}

// Logger 返回当前的日志器。
func Logger() *slog.Logger { return loggerPtr.Load() }
