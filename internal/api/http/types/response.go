package types

import (
	"time"

	"github.com/weisyn/casnode/pkg/types"
)

// SuccessResponse 统一成功响应格式
type SuccessResponse struct {
	Data       interface{} `json:"data"`
	Pagination *PageMeta   `json:"pagination,omitempty"`
	RequestID  string      `json:"request_id,omitempty"`
}

// NewSuccessResponse 创建成功响应
func NewSuccessResponse(data interface{}) *SuccessResponse {
	return &SuccessResponse{Data: data}
}

// WithPagination 附加分页信息
func (r *SuccessResponse) WithPagination(meta *PageMeta) *SuccessResponse {
	r.Pagination = meta
	return r
}

// WithRequestID 添加请求ID
func (r *SuccessResponse) WithRequestID(requestID string) *SuccessResponse {
	r.RequestID = requestID
	return r
}

// UploadResult 上传结果
type UploadResult struct {
	ID          types.ContentID `json:"id"`
	Size        int64           `json:"size"`
	CreatedAt   time.Time       `json:"created_at"`
	Stored      bool            `json:"stored"` // false 表示内容已存在
	Filename    string          `json:"filename,omitempty"`
	ContentType string          `json:"content_type"`
}

// ObjectView 对象列表条目
type ObjectView struct {
	ID        types.ContentID `json:"id"`
	Size      int64           `json:"size"`
	CreatedAt time.Time       `json:"created_at"`
}

// NewObjectViews 转换对象列表
func NewObjectViews(objects []types.ObjectInfo) []ObjectView {
	out := make([]ObjectView, 0, len(objects))
	for _, o := range objects {
		out = append(out, ObjectView{ID: o.ID, Size: o.Size, CreatedAt: o.CreatedAt})
	}
	return out
}

// PeerView 活跃节点
type PeerView struct {
	ID        string    `json:"id"`
	Addrs     []string  `json:"addrs"`
	FirstSeen time.Time `json:"first_seen"`
	LastSeen  time.Time `json:"last_seen"`
	State     string    `json:"state"`
}

// NewPeerViews 转换节点记录
func NewPeerViews(records []types.PeerRecord) []PeerView {
	out := make([]PeerView, 0, len(records))
	for _, r := range records {
		out = append(out, PeerView{
			ID:        r.ID.String(),
			Addrs:     r.AddrStrings(),
			FirstSeen: r.FirstSeen,
			LastSeen:  r.LastSeen,
			State:     string(r.State),
		})
	}
	return out
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status      string `json:"status"` // ok, degraded
	ReadOnly    bool   `json:"read_only"`
	PeerID      string `json:"peer_id"`
	ActivePeers int    `json:"active_peers"`
	Uptime      string `json:"uptime"`
}
