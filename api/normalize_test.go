package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeAmount(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}{
		{"千分位点号", "50.000", 50000, false},
		{"千分位逗号", "50,000", 50000, false},
		{"带货币前缀", "Rp 1.250.000", 1250000, false},
		{"纯数字", "99", 99, false},
		{"零", "0", 0, false},
		{"负号被剔除", "-500", 500, false},
		{"空字符串", "", 0, true},
		{"纯文字", "abc", 0, true},
		{"仅符号", "-.,", 0, true},
		{"溢出", "99999999999999999999999", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := normalizeAmount(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
