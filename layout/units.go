package layout

import (
	"fmt"
	"strconv"
	"strings"
)

// 长度换算：布局内部统一用毫米，字号用 pt；命令行里的长度保留原始单位直到换算。

// Unit 是长度的书写单位。
type Unit int

const (
	UnitNone Unit = iota // 无单位，按毫米处理
	UnitMM
	UnitCM
	UnitIN
	UnitPT
)

// pt 与 mm 的换算系数（1in = 72pt = 25.4mm）。
const (
	PtToMm = 25.4 / 72
	MmToPt = 72 / 25.4
)

var unitSuffixes = []struct {
	suffix string
	unit   Unit
}{{"mm", UnitMM}, {"cm", UnitCM}, {"in", UnitIN}, {"pt", UnitPT}}

func (u Unit) String() string {
	for _, s := range unitSuffixes {
		if s.unit == u {
			return s.suffix
		}
	}
	return ""
}

// millimeters 返回一个单位对应的毫米数。
func (u Unit) millimeters() float64 {
	switch u {
	case UnitCM:
		return 10
	case UnitIN:
		return 25.4
	case UnitPT:
		return PtToMm
	default:
		return 1
	}
}

// Length 是带单位的长度值。
type Length struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

// To 换算到目标单位；同单位时原样返回，避免引入浮点误差。
func (l Length) To(target Unit) float64 {
	if l.Unit == target {
		return l.Value
	}
	return l.Value * l.Unit.millimeters() / target.millimeters()
}

func (l Length) ToMM() float64 { return l.To(UnitMM) }
func (l Length) ToPT() float64 { return l.To(UnitPT) }

func (l Length) String() string {
	return strconv.FormatFloat(l.Value, 'f', -1, 64) + l.Unit.String()
}

// ParseLength 解析 "12pt"、"2.5cm"、"20mm"、"1in" 或不带单位的数字（大小写不敏感）。
func ParseLength(value string) (Length, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return Length{}, fmt.Errorf("长度为空")
	}
	l := Length{Unit: UnitNone}
	for _, s := range unitSuffixes {
		if num, ok := strings.CutSuffix(v, s.suffix); ok {
			l.Unit, v = s.unit, strings.TrimSpace(num)
			break
		}
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return Length{}, fmt.Errorf("无法解析长度 %q: %w", value, err)
	}
	l.Value = f
	return l, nil
}

// LineHeightKind 区分行高是字号倍数还是绝对长度。
type LineHeightKind int

const (
	LineHeightFactor LineHeightKind = iota
	LineHeightAbsolute
)

// LineHeightSpec 保留行高的书写意图：倍数（1.4x）或绝对长度（12mm）。
type LineHeightSpec struct {
	Kind   LineHeightKind `json:"kind"`
	Factor float64        `json:"factor,omitempty"`
	Len    Length         `json:"len,omitempty"`
}

// ParseLineHeight 把以 x 结尾的值当作字号倍数，其余按长度解析。
func ParseLineHeight(value string) (LineHeightSpec, error) {
	v := strings.TrimSpace(value)
	if num, ok := strings.CutSuffix(v, "x"); ok {
		f, err := strconv.ParseFloat(num, 64)
		if err != nil {
			return LineHeightSpec{}, fmt.Errorf("无法解析行高倍数 %q: %w", value, err)
		}
		return LineHeightSpec{Kind: LineHeightFactor, Factor: f}, nil
	}
	l, err := ParseLength(v)
	if err != nil {
		return LineHeightSpec{}, err
	}
	return LineHeightSpec{Kind: LineHeightAbsolute, Len: l}, nil
}

// Resolve 按字号计算目标单位下的行高。
func (s LineHeightSpec) Resolve(fontSize Length, target Unit) float64 {
	if s.Kind == LineHeightAbsolute {
		return s.Len.To(target)
	}
	return fontSize.To(target) * s.Factor
}
