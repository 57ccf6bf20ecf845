// Package commands casnode 命令行
//
// start 在前台运行节点；其余子命令是本地节点 HTTP API 的薄客户端。
package commands

import (
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/weisyn/casnode/internal/app/version"
	"github.com/weisyn/casnode/internal/cli/client"
	"github.com/weisyn/casnode/internal/cli/output"
)

// EnvAPIAddress 客户端命令默认访问的节点地址
const EnvAPIAddress = "CASNODE_API"

const defaultAPIAddress = "127.0.0.1:8080"

// Streams 命令的输入输出
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// globalFlags 全局标志
type globalFlags struct {
	API     string
	Output  string
	Timeout time.Duration
}

// root 命令共享状态
type root struct {
	streams   Streams
	flags     globalFlags
	client    *client.Client
	formatter *output.Formatter
}

// NewRootCommand 创建根命令
func NewRootCommand(streams Streams) *cobra.Command {
	if streams.In == nil {
		streams.In = os.Stdin
	}
	if streams.Out == nil {
		streams.Out = os.Stdout
	}
	if streams.Err == nil {
		streams.Err = os.Stderr
	}
	r := &root{streams: streams}

	apiDefault := defaultAPIAddress
	if v := os.Getenv(EnvAPIAddress); v != "" {
		apiDefault = v
	}

	cmd := &cobra.Command{
		Use:           "casnode",
		Short:         "内容寻址的点对点存储节点",
		Version:       version.GetVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			format, err := output.ParseFormat(r.flags.Output)
			if err != nil {
				return err
			}
			r.formatter = output.NewFormatter(format, streams.Out, streams.Err)
			r.client = client.New(r.flags.API, r.flags.Timeout)
			return nil
		},
	}
	cmd.SetIn(streams.In)
	cmd.SetOut(streams.Out)
	cmd.SetErr(streams.Err)

	cmd.PersistentFlags().StringVar(&r.flags.API, "api", apiDefault, "节点 HTTP API 地址（环境变量 "+EnvAPIAddress+"）")
	cmd.PersistentFlags().StringVar(&r.flags.Output, "output", string(output.FormatTable), "输出格式: table|json")
	cmd.PersistentFlags().DurationVar(&r.flags.Timeout, "timeout", 2*time.Minute, "单次请求超时")

	cmd.AddCommand(
		newStartCommand(r),
		newPutCommand(r),
		newGetCommand(r),
		newFilesCommand(r),
		newHoldersCommand(r),
		newPeersCommand(r),
		newInfoCommand(r),
		newVersionCommand(r),
	)
	return cmd
}
