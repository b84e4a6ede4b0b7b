package parser

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// MaxRangeSize 单个区间最多展开的桩号数
const MaxRangeSize = 10_000

// ErrRangeTooLarge 区间超出 MaxRangeSize
var ErrRangeTooLarge = errors.New("mast range too large")

// 桩号：非数字前缀 + 数字 + 非数字后缀，例如 "M007"、"12a"
var mastTokenPattern = regexp.MustCompile(`^(\D*)(\d+)(\D*)$`)

// MastToken 解析后的桩号
type MastToken struct {
	Prefix string
	Digits string
	Suffix string
	Number int
}

// ParseMastToken 按 前缀/数字/后缀 拆分桩号
func ParseMastToken(s string) (MastToken, bool) {
	m := mastTokenPattern.FindStringSubmatch(s)
	if m == nil {
		return MastToken{}, false
	}
	n, err := strconv.Atoi(m[2])
	if err != nil {
		return MastToken{}, false
	}
	return MastToken{Prefix: m[1], Digits: m[2], Suffix: m[3], Number: n}, true
}

// ExpandTokens 展开桩号列表
//
// 输入以 ';'、','、空格分隔，例如 "M001, M003-M010; M015"。
// "M003-M010" 形式的区间按最宽的数字位数补零展开；第二部分可省略前后缀。
// 无法解析或前后缀不一致的片段原样保留。结果去重，保留首次出现顺序。
// 区间超过 MaxRangeSize 个桩号时返回 ErrRangeTooLarge。
func ExpandTokens(input string) ([]string, error) {
	result := []string{}
	seen := map[string]bool{}
	add := func(tok string) {
		if seen[tok] {
			return
		}
		seen[tok] = true
		result = append(result, tok)
	}

	for _, tok := range splitTokens(input) {
		expanded, ok, err := expandRange(tok)
		if err != nil {
			return nil, err
		}
		if !ok {
			add(tok)
			continue
		}
		for _, e := range expanded {
			add(e)
		}
	}
	return result, nil
}

func splitTokens(input string) []string {
	fields := strings.FieldsFunc(input, func(r rune) bool {
		return r == ';' || r == ',' || r == ' '
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

// expandRange 展开 "起-止" 区间；不是合法区间时返回 false
func expandRange(tok string) ([]string, bool, error) {
	if strings.Count(tok, "-") != 1 {
		return nil, false, nil
	}
	parts := strings.SplitN(tok, "-", 2)
	if parts[0] == "" || parts[1] == "" {
		return nil, false, nil
	}

	from, ok := ParseMastToken(parts[0])
	if !ok {
		return nil, false, nil
	}
	to, ok := ParseMastToken(parts[1])
	if !ok {
		return nil, false, nil
	}

	if to.Prefix == "" {
		to.Prefix = from.Prefix
	}
	if to.Suffix == "" {
		to.Suffix = from.Suffix
	}
	if from.Prefix != to.Prefix || from.Suffix != to.Suffix {
		return nil, false, nil
	}

	start, end := from.Number, to.Number
	if end < start {
		start, end = end, start
	}
	if end-start >= MaxRangeSize {
		return nil, false, fmt.Errorf("%w: %s (max %d)", ErrRangeTooLarge, tok, MaxRangeSize)
	}
	width := max(len(from.Digits), len(to.Digits))

	out := make([]string, 0, end-start+1)
	for i := start; i <= end; i++ {
		out = append(out, fmt.Sprintf("%s%0*d%s", from.Prefix, width, i, from.Suffix))
	}
	return out, true, nil
}
