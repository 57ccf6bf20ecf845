package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/weisyn/casnode/internal/cli/commands"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "\n❌ 程序发生严重错误: %v\n", r)
			os.Exit(1)
		}
	}()

	// 客户端命令在 Ctrl+C 时取消进行中的请求；start 自行处理信号
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	root := commands.NewRootCommand(commands.Streams{})
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		cancel()
		os.Exit(1)
	}
}
