package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/weisyn/casnode/internal/cli/client"
	"github.com/weisyn/casnode/pkg/types"
)

func newPutCommand(r *root) *cobra.Command {
	return &cobra.Command{
		Use:   "put <file|->",
		Short: "上传文件，输出内容标识符",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				src  io.Reader
				name string
			)
			if args[0] == "-" {
				src, name = r.streams.In, "stdin"
			} else {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("打开文件失败: %w", err)
				}
				defer f.Close()
				src, name = f, filepath.Base(args[0])
			}

			res, err := r.client.Upload(cmd.Context(), src, name)
			if err != nil {
				return err
			}
			if !res.Stored {
				r.formatter.Info("内容已存在")
			}
			return r.formatter.KeyValues([][2]string{
				{"id", res.ID.String()},
				{"size", strconv.FormatInt(res.Size, 10)},
				{"content_type", res.ContentType},
				{"created_at", res.CreatedAt.Format(time.RFC3339)},
			}, res)
		},
	}
}

func newGetCommand(r *root) *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "按内容标识符下载（本地缺失时由节点向网络查询）",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := types.ParseContentID(args[0])
			if err != nil {
				return err
			}

			if outPath == "" || outPath == "-" {
				_, err := r.client.Download(cmd.Context(), id, r.streams.Out)
				return notFoundHint(err, id)
			}

			// 先写临时文件，校验通过后再改名，避免留下不完整的输出
			tmp := outPath + ".part"
			f, err := os.Create(tmp)
			if err != nil {
				return fmt.Errorf("创建输出文件失败: %w", err)
			}
			n, err := r.client.Download(cmd.Context(), id, f)
			if closeErr := f.Close(); err == nil {
				err = closeErr
			}
			if err != nil {
				_ = os.Remove(tmp)
				return notFoundHint(err, id)
			}
			if err := os.Rename(tmp, outPath); err != nil {
				_ = os.Remove(tmp)
				return fmt.Errorf("写入输出文件失败: %w", err)
			}
			r.formatter.Success("已保存 %s（%d 字节）", outPath, n)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "输出文件（默认写到标准输出）")
	return cmd
}

func notFoundHint(err error, id types.ContentID) error {
	if err != nil && isNotFound(err) {
		return fmt.Errorf("%s: %w", id, client.ErrNotFound)
	}
	return err
}

func newFilesCommand(r *root) *cobra.Command {
	var page, pageSize int
	cmd := &cobra.Command{
		Use:     "files",
		Aliases: []string{"ls"},
		Short:   "列出本节点存储的对象",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			objects, meta, err := r.client.List(cmd.Context(), page, pageSize)
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(objects))
			for _, o := range objects {
				rows = append(rows, []string{o.ID.String(), strconv.FormatInt(o.Size, 10), o.CreatedAt.Format(time.RFC3339)})
			}
			if err := r.formatter.Table([]string{"ID", "SIZE", "CREATED"}, rows, objects); err != nil {
				return err
			}
			if meta != nil && meta.HasNext {
				r.formatter.Info("第 %d/%d 页，共 %d 个对象，使用 --page %d 查看下一页",
					meta.Page, meta.TotalPages, meta.TotalItems, meta.Page+1)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&page, "page", 0, "页码（从 1 开始）")
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "每页条数（默认 100，上限 1000）")
	return cmd
}

func newHoldersCommand(r *root) *cobra.Command {
	return &cobra.Command{
		Use:   "holders <id>",
		Short: "查看已公告持有某内容的节点",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := types.ParseContentID(args[0])
			if err != nil {
				return err
			}
			holders, err := r.client.Holders(cmd.Context(), id)
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(holders))
			for _, h := range holders {
				rows = append(rows, []string{h.Peer.String(), h.LastAnnounced.Format(time.RFC3339)})
			}
			return r.formatter.Table([]string{"PEER", "LAST ANNOUNCED"}, rows, holders)
		},
	}
}
