package config

// SafeErrorMessage 生产（release）模式下隐藏内部错误详情，仅返回兜底文案；
// 开发模式（或配置未初始化时）返回原始错误便于排查
func SafeErrorMessage(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	if GlobalConfig != nil && GlobalConfig.Server.Mode == "release" {
		return fallback
	}
	return err.Error()
}
