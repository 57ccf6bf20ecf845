package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/weisyn/casnode/internal/app"
	"github.com/weisyn/casnode/internal/app/version"
	"github.com/weisyn/casnode/internal/cli/client"
	"github.com/weisyn/casnode/internal/cli/output"
)

func isNotFound(err error) bool {
	return errors.Is(err, client.ErrNotFound)
}

func newStartCommand(r *root) *cobra.Command {
	var (
		configPath string
		noAPI      bool
	)
	cmd := &cobra.Command{
		Use:   "start",
		Short: "在前台运行节点",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := []app.Option{app.WithConfigFile(configPath)}
			if noAPI {
				opts = append(opts, app.WithoutAPI())
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			a, err := app.Start(ctx, opts...)
			if err != nil {
				return err
			}

			info, err := a.Node().Info(ctx)
			if err == nil {
				box := pterm.DefaultBox.WithTitle("casnode " + version.GetVersion()).Sprintf(
					"节点ID:  %s\n监听:    %s\n存储:    %s（%d 个对象）",
					info.PeerID, strings.Join(info.ListenAddrs, ", "), info.StorageRoot, info.ObjectCount)
				fmt.Fprintln(r.streams.Err, box)
			}
			r.formatter.Success("节点已启动，按 Ctrl+C 停止")
			return a.Wait(ctx)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "配置文件路径（默认 $"+app.EnvConfigPath+" 或 "+app.DefaultConfigPath+"）")
	cmd.Flags().BoolVar(&noAPI, "no-api", false, "不启动 HTTP API")
	return cmd
}

func newPeersCommand(r *root) *cobra.Command {
	return &cobra.Command{
		Use:   "peers",
		Short: "列出活跃节点",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			peers, err := r.client.Peers(cmd.Context())
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(peers))
			for _, p := range peers {
				rows = append(rows, []string{p.ID, strings.Join(p.Addrs, " "), p.LastSeen.Format(time.RFC3339)})
			}
			return r.formatter.Table([]string{"PEER", "ADDRS", "LAST SEEN"}, rows, peers)
		},
	}
}

func newInfoCommand(r *root) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "查看节点概况",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := r.client.Info(cmd.Context())
			if err != nil {
				return err
			}
			return r.formatter.KeyValues([][2]string{
				{"peer_id", info.PeerID.String()},
				{"version", info.Version},
				{"listen_addrs", strings.Join(info.ListenAddrs, ", ")},
				{"storage_root", info.StorageRoot},
				{"objects", strconv.Itoa(info.ObjectCount)},
				{"stored_bytes", strconv.FormatInt(info.StoredBytes, 10)},
				{"active_peers", strconv.Itoa(info.ActivePeers)},
				{"connected_peers", strconv.Itoa(info.ConnectedPeers)},
				{"uptime", info.Uptime},
			}, info)
		},
	}
}

func newVersionCommand(r *root) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "显示版本信息",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if r.formatter.Format() == output.FormatJSON {
				return r.formatter.JSON(version.GetBuildInfo())
			}
			_, err := fmt.Fprintln(r.streams.Out, version.GetFullVersion())
			return err
		},
	}
}
