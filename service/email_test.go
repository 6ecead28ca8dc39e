package service

import (
	"strings"
	"testing"

	"moneybook/config"

	"github.com/stretchr/testify/assert"
)

func TestSendPasswordResetEmail_Disabled(t *testing.T) {
	svc := NewEmailService(&config.EmailConfig{Enabled: false})

	err := svc.SendPasswordResetEmail("user@example.com", "测试用户", "http://localhost/reset?token=abc")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "未启用")
}

func TestGenerateResetEmailBody(t *testing.T) {
	svc := NewEmailService(&config.EmailConfig{Enabled: true})

	body := svc.generateResetEmailBody("小明", "http://localhost/reset?token=abc123")
	assert.True(t, strings.Contains(body, "小明"))
	assert.True(t, strings.Contains(body, "http://localhost/reset?token=abc123"))
	assert.True(t, strings.Contains(body, "30 分钟"))
}
