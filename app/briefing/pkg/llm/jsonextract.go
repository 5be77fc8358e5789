package llm

import (
	"encoding/json"
	"errors"
	"strings"
)

// ErrNoJSON 文本中找不到 JSON 对象或数组
var ErrNoJSON = errors.New("llm: no json found in text")

// ExtractJSON 从模型输出中取出 JSON 片段：
// 去掉 markdown 代码块，从 '{' 或 '[' 起做括号匹配，返回第一个合法的 JSON。
// 闭合但不合法的片段跳到下一个开括号；遇到未闭合的开括号时
// 退回到“第一个开括号到最后一个同类闭括号”。
func ExtractJSON(text string) (string, error) {
	s := stripFences(strings.TrimSpace(text))

	first := strings.IndexAny(s, "{[")
	if first < 0 {
		return "", ErrNoJSON
	}

	for start := first; start >= 0 && start < len(s); {
		end := matchBracket(s, start)
		if end < 0 {
			// 开括号没有闭合（输出被截断），不能退到内部片段
			break
		}
		if json.Valid([]byte(s[start : end+1])) {
			return s[start : end+1], nil
		}
		next := strings.IndexAny(s[start+1:], "{[")
		if next < 0 {
			break
		}
		start += next + 1
	}

	closer := byte('}')
	if s[first] == '[' {
		closer = ']'
	}
	end := strings.LastIndexByte(s, closer)
	if end <= first {
		return "", ErrNoJSON
	}
	return s[first : end+1], nil
}

// stripFences 取出第一个 ``` 代码块内的内容；没有代码块时原样返回
func stripFences(s string) string {
	open := strings.Index(s, "```")
	if open < 0 {
		return s
	}
	body := s[open+3:]
	// 跳过语言标记，例如 ```json
	if nl := strings.IndexByte(body, '\n'); nl >= 0 && !strings.ContainsAny(body[:nl], "{[") {
		body = body[nl+1:]
	}
	if end := strings.Index(body, "```"); end >= 0 {
		body = body[:end]
	}
	return strings.TrimSpace(body)
}

// matchBracket 返回与 s[start] 匹配的闭合括号下标，考虑字符串与转义；找不到返回 -1
func matchBracket(s string, start int) int {
	var stack []byte
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			stack = append(stack, '}')
		case '[':
			stack = append(stack, ']')
		case '}', ']':
			if len(stack) == 0 || stack[len(stack)-1] != c {
				return -1
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return i
			}
		}
	}
	return -1
}
