package utils

import (
	"errors"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/purell"
)

var ErrEmptyURL = errors.New("empty page url")

// 只认开头的协议，查询串里的 "://" 不算
var schemePrefix = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.-]*://`)

const urlFlags = purell.FlagLowercaseScheme |
	purell.FlagLowercaseHost |
	purell.FlagRemoveDefaultPort |
	purell.FlagRemoveEmptyQuerySeparator |
	purell.FlagRemoveTrailingSlash |
	purell.FlagRemoveDotSegments |
	purell.FlagRemoveDuplicateSlashes |
	purell.FlagRemoveFragment |
	purell.FlagRemoveWWW |
	purell.FlagSortQuery

// NormalizeURL 把页面地址规范化为分区键使用的形式：
// 去掉协议、主机小写、去掉末尾斜杠与片段、查询参数排序
func NormalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrEmptyURL
	}
	if !schemePrefix.MatchString(raw) {
		raw = "http://" + strings.TrimPrefix(raw, "//")
	}

	normalized, err := purell.NormalizeURLString(raw, urlFlags)
	if err != nil {
		return "", err
	}
	normalized = schemePrefix.ReplaceAllString(normalized, "")
	if normalized == "" {
		return "", ErrEmptyURL
	}
	return normalized, nil
}
