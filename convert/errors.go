package convert

import (
	"errors"
	"fmt"
)

// Stage 标识转换失败发生的阶段。
type Stage string

const (
	StageInput   Stage = "input"
	StageExtract Stage = "extract"
	StageParse   Stage = "parse"
	StageLayout  Stage = "layout"
	StageEmit    Stage = "emit"
)

// Describe 返回面向用户的阶段说明。
func (s Stage) Describe() string {
	switch s {
	case StageInput:
		return "输入校验"
	case StageExtract:
		return "读取文档容器"
	case StageParse:
		return "解析文档结构"
	case StageLayout:
		return "布局计算"
	case StageEmit:
		return "生成 PDF"
	default:
		return string(s)
	}
}

// ErrInvalidInput 表示输入路径不存在或扩展名不是 .docx。
var ErrInvalidInput = errors.New("无效的输入文件")

// Error 是转换流程对外暴露的唯一错误类型，记录失败阶段与原因。
type Error struct {
	Stage Stage
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s失败: %v", e.Stage.Describe(), e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// StageOf 返回错误链中第一个 *Error 的阶段。
func StageOf(err error) (Stage, bool) {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Stage, true
	}
	return "", false
}

func stageErr(stage Stage, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Stage: stage, Err: err}
}
