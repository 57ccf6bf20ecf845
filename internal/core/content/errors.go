package content

import "errors"

// ErrNotFound 本地与网络中均不存在该内容
var ErrNotFound = errors.New("内容不存在")
