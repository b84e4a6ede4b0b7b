package parser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/KKoehn92/Master-Document-Tool/internal/model"
)

// ErrInvalidAnswer 提交的答案无法接受（键或值不合法）
var ErrInvalidAnswer = errors.New("invalid answer")

type answerField struct {
	kind     model.FieldKind
	min, max int
	masts    bool
}

// NormalizeAnswers 将表单提交的原始值转为 AnswerMap
//
// 键为问题行号（字符串形式）。布尔值转为 "Ja"/"Nein"，数字转为十进制字符串。
// 数值字段须为 Min..Max 内的整数（Max 缺省为 NumberFieldMax），空值视为未填。
// 地基桩号字段须能展开。勾选类字段未提交时记为 "Nein"，其他字段缺省为空串。
// 所有校验错误均包装 ErrInvalidAnswer。
func NormalizeAnswers(questions []model.Question, raw map[string]any) (model.AnswerMap, error) {
	fields := map[int]answerField{}
	for _, q := range questions {
		f := answerField{kind: q.Kind, min: q.Min, max: q.Max}
		if f.max == 0 {
			f.max = NumberFieldMax
		}
		fields[q.Key] = f
		for _, opt := range q.Options {
			fields[opt.CheckKey] = answerField{kind: model.FieldYesNo}
			fields[opt.MastsKey] = answerField{kind: model.FieldText, masts: true}
		}
	}

	answers := model.AnswerMap{}
	for k, v := range raw {
		key, err := model.ParseAnswerKey(k)
		if err != nil {
			return nil, fmt.Errorf("%w: key %q: %w", ErrInvalidAnswer, k, err)
		}
		s, err := answerString(v)
		if err != nil {
			return nil, fmt.Errorf("%w %d: %w", ErrInvalidAnswer, key, err)
		}
		f := fields[key]
		switch {
		case f.kind == model.FieldYesNo:
			s = model.BoolAnswer(isTruthy(s))
		case f.kind == model.FieldNumber:
			if s, err = numberAnswer(s, f.min, f.max); err != nil {
				return nil, fmt.Errorf("%w %d: %w", ErrInvalidAnswer, key, err)
			}
		case f.masts:
			if _, err := ExpandTokens(s); err != nil {
				return nil, fmt.Errorf("%w %d: %w", ErrInvalidAnswer, key, err)
			}
		}
		answers[key] = s
	}

	for key, f := range fields {
		if _, ok := answers[key]; ok {
			continue
		}
		if f.kind == model.FieldYesNo {
			answers[key] = model.AnswerNo
		}
	}
	return answers, nil
}

// numberAnswer 校验整数范围，返回规范化的十进制串
func numberAnswer(s string, lo, hi int) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return "", fmt.Errorf("not a whole number: %q", s)
	}
	if n < lo || n > hi {
		return "", fmt.Errorf("%d out of range %d..%d", n, lo, hi)
	}
	return strconv.Itoa(n), nil
}

func answerString(v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "", nil
	case string:
		return x, nil
	case bool:
		return model.BoolAnswer(x), nil
	case int:
		return strconv.Itoa(x), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	default:
		return "", fmt.Errorf("unsupported value type %T", v)
	}
}

func isTruthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ja", "true", "1", "x", "yes", "on":
		return true
	default:
		return false
	}
}
