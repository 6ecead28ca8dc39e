package api

import (
	"errors"
	"strconv"
	"strings"
)

// normalizeAmount 归一化自由格式的金额输入：
// 剔除所有非数字字符后按整数（最小货币单位）解析，
// 如 "50.000"、"Rp 50,000" 均归一化为 50000。
// 剔除后为空视为非法输入
func normalizeAmount(raw string) (int64, error) {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}

	digits := b.String()
	if digits == "" {
		return 0, errors.New("金额必须包含数字")
	}

	amount, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, errors.New("金额超出可表示范围")
	}
	return amount, nil
}
