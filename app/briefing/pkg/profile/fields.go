package profile

import (
	"bytes"
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// OptString 模型返回的可选字符串：null、缺失、"unknown" 之类都视为空
type OptString string

func (s *OptString) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case string:
		*s = OptString(cleanUnknown(t))
	case float64:
		*s = OptString(strconv.FormatFloat(t, 'f', -1, 64))
	default:
		*s = ""
	}
	return nil
}

// OptInt 模型返回的可选整数：数字、数字字符串（可带逗号、+、~）均可，其余为 0
type OptInt int

var digits = regexp.MustCompile(`\d[\d,]*`)

func (n *OptInt) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*n = 0
		return nil
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case float64:
		*n = OptInt(math.Round(t))
	case string:
		m := digits.FindString(t)
		if m == "" {
			*n = 0
			return nil
		}
		i, err := strconv.Atoi(strings.ReplaceAll(m, ",", ""))
		if err != nil {
			*n = 0
			return nil
		}
		*n = OptInt(i)
	default:
		*n = 0
	}
	return nil
}

func cleanUnknown(s string) string {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "unknown", "n/a", "na", "none", "null", "not available", "-":
		return ""
	}
	return s
}
