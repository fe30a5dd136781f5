package binding

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ByLCY/docxpdf/layout"
)

var exprPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Interpolate 将文本中的 ${path.to.value} 替换为 data 中的值。
// 支持 ${path|默认值}：路径不存在或取值为空串时使用默认值。
// 既无取值也无默认值时保留原占位符。
func Interpolate(text string, data any) string {
	return exprPattern.ReplaceAllStringFunc(text, func(match string) string {
		groups := exprPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}
		path, fallback, hasFallback := strings.Cut(groups[1], "|")
		path = strings.TrimSpace(path)
		if path == "" {
			return match
		}
		if val, ok := resolvePath(data, path); ok {
			if s := stringify(val); s != "" || !hasFallback {
				return s
			}
		}
		if hasFallback {
			return fallback
		}
		return match
	})
}

// MetaValues 将文档属性展开为可供 Interpolate 使用的键值。
func MetaValues(meta layout.DocumentMeta) map[string]any {
	keywords := make([]any, len(meta.Keywords))
	for i, k := range meta.Keywords {
		keywords[i] = k
	}
	return map[string]any{
		"title":    meta.Title,
		"author":   meta.Author,
		"subject":  meta.Subject,
		"creator":  meta.Creator,
		"keywords": keywords,
	}
}

func stringify(val any) string {
	switch v := val.(type) {
	case string:
		return v
	case []any:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = stringify(item)
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(v)
	}
}

// step 是路径中的一段：键名或数组下标。
type step struct {
	key   string
	index int
	isIdx bool
}

// parsePath 将 "keywords[0]" 或 "a.b[1][2]" 拆成依次访问的步骤。
func parsePath(path string) ([]step, bool) {
	var steps []step
	for _, segment := range strings.Split(path, ".") {
		name, rest, _ := strings.Cut(segment, "[")
		if name != "" {
			steps = append(steps, step{key: name})
		}
		if rest == "" {
			continue
		}
		for _, raw := range strings.Split(strings.TrimSuffix(rest, "]"), "][") {
			idx, err := strconv.Atoi(raw)
			if err != nil {
				return nil, false
			}
			steps = append(steps, step{index: idx, isIdx: true})
		}
	}
	return steps, len(steps) > 0
}

func resolvePath(data any, path string) (any, bool) {
	steps, ok := parsePath(path)
	if !ok || data == nil {
		return nil, false
	}
	current := data
	for _, s := range steps {
		if s.isIdx {
			current, ok = index(current, s.index)
		} else {
			current, ok = lookup(current, s.key)
		}
		if !ok {
			return nil, false
		}
	}
	return current, true
}

func lookup(current any, key string) (any, bool) {
	switch c := current.(type) {
	case map[string]any:
		v, ok := c[key]
		return v, ok
	case map[string]string:
		v, ok := c[key]
		return v, ok
	}
	return nil, false
}

func index(current any, i int) (any, bool) {
	switch c := current.(type) {
	case []any:
		if i >= 0 && i < len(c) {
			return c[i], true
		}
	case []string:
		if i >= 0 && i < len(c) {
			return c[i], true
		}
	}
	return nil, false
}
