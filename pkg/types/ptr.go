package types

// StringPtr 返回字符串指针（用于构造用户配置）
func StringPtr(s string) *string { return &s }

// BoolPtr 返回布尔指针
func BoolPtr(b bool) *bool { return &b }

// IntPtr 返回整型指针
func IntPtr(i int) *int { return &i }

// Int64Ptr 返回 int64 指针
func Int64Ptr(i int64) *int64 { return &i }
