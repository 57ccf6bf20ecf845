package host

import (
	"fmt"
	"net"
	"strings"

	ma "github.com/multiformats/go-multiaddr"
	manet "github.com/multiformats/go-multiaddr/net"
)

// ParseListenAddrs 将配置中的监听地址转换为 multiaddr
//
// 接受两种形式：
//   - multiaddr：/ip4/0.0.0.0/tcp/4000
//   - host:port：127.0.0.1:4000，转换为 /ip4/127.0.0.1/tcp/4000
func ParseListenAddrs(addrs []string) ([]ma.Multiaddr, error) {
	out := make([]ma.Multiaddr, 0, len(addrs))
	for _, raw := range addrs {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		m, err := parseListenAddr(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("未配置有效的监听地址")
	}
	return out, nil
}

func parseListenAddr(raw string) (ma.Multiaddr, error) {
	if strings.HasPrefix(raw, "/") {
		m, err := ma.NewMultiaddr(raw)
		if err != nil {
			return nil, fmt.Errorf("非法 multiaddr %q: %w", raw, err)
		}
		return m, nil
	}

	host, port, err := net.SplitHostPort(raw)
	if err != nil {
		return nil, fmt.Errorf("非法监听地址 %q: %w", raw, err)
	}
	if host == "" {
		host = "0.0.0.0"
	}
	tcpAddr, err := net.ResolveTCPAddr("tcp", net.JoinHostPort(host, port))
	if err != nil {
		return nil, fmt.Errorf("解析监听地址 %q: %w", raw, err)
	}
	m, err := manet.FromNetAddr(tcpAddr)
	if err != nil {
		return nil, fmt.Errorf("转换监听地址 %q: %w", raw, err)
	}
	return m, nil
}
