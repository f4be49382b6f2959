package util

import (
	"strconv"
)

// MustParseInt 将字符串转换为整数，解析失败时返回 def
func MustParseInt(s string, def int) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

// Pagination 规范化分页参数
func Pagination(pageStr, limitStr string) (page, limit int) {
	page = MustParseInt(pageStr, 1)
	limit = MustParseInt(limitStr, DefaultPageSize)
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return page, limit
}
