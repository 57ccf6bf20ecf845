// Package configs 随二进制分发的示例配置
package configs

import _ "embed"

// Sample 单节点示例配置，与 configs/casnode.json 相同
//
//go:embed casnode.json
var Sample []byte
