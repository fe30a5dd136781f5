package layout

import (
	"encoding/json"
	"io"
	"os"
)

// EncodeDebugJSON 将布局结果（页面几何与有序指令）以缩进 JSON 写入 w。
func EncodeDebugJSON(w io.Writer, res *Result) error {
	if res == nil {
		return nil
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

// WriteDebugJSON 将布局结果输出为 JSON 文件，便于核对坐标与分页。
func WriteDebugJSON(res *Result, path string) error {
	if res == nil {
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := EncodeDebugJSON(f, res); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
