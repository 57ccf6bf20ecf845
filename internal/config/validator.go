package config

import (
	"fmt"
	"net"
	"strings"

	ma "github.com/multiformats/go-multiaddr"
	"go.uber.org/multierr"

	logconfig "github.com/weisyn/casnode/internal/config/log"
)

// ValidationError 配置验证错误
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("配置验证失败 [%s]: %s", e.Field, e.Message)
}

// Validate 启动前校验合并后的配置
//
// 只校验会导致节点无法启动的项；可降级的项（如非法时长）已在各 New 中回退默认值。
func (p *Provider) Validate() error {
	var errs []error

	if strings.TrimSpace(p.storage.RootPath) == "" {
		errs = append(errs, &ValidationError{Field: "storage.root_path", Message: "存储根目录不能为空"})
	}
	if p.storage.MaxObjectSize <= 0 {
		errs = append(errs, &ValidationError{Field: "storage.max_object_size", Message: "对象大小上限必须为正数"})
	}

	if len(p.node.Host.ListenAddresses) == 0 {
		errs = append(errs, &ValidationError{Field: "node.host.listen_addresses", Message: "至少需要一个监听地址"})
	}
	for _, addr := range p.node.Host.ListenAddresses {
		if err := validateListenAddress(addr); err != nil {
			errs = append(errs, &ValidationError{Field: "node.host.listen_addresses", Message: err.Error()})
		}
	}
	if p.node.Identity.Persist && strings.TrimSpace(p.node.Identity.KeyFile) == "" && p.node.Identity.PrivateKey == "" {
		errs = append(errs, &ValidationError{Field: "node.identity.key_file", Message: "启用身份持久化时必须指定密钥文件"})
	}

	if p.api.HTTP.Enabled {
		if _, _, err := net.SplitHostPort(p.api.HTTP.Address); err != nil {
			errs = append(errs, &ValidationError{Field: "api.http.address", Message: err.Error()})
		}
	}

	if !logconfig.IsValidLevel(p.log.Level) {
		errs = append(errs, &ValidationError{Field: "log.level", Message: fmt.Sprintf("未知日志级别 %q", p.log.Level)})
	}

	return multierr.Combine(errs...)
}

// validateListenAddress 接受 multiaddr（/ip4/..）或 host:port
func validateListenAddress(addr string) error {
	if strings.HasPrefix(addr, "/") {
		if _, err := ma.NewMultiaddr(addr); err != nil {
			return fmt.Errorf("非法 multiaddr %q: %w", addr, err)
		}
		return nil
	}
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return fmt.Errorf("非法监听地址 %q: %w", addr, err)
	}
	return nil
}
