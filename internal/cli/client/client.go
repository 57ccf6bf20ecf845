// Package client 节点 HTTP API 的薄客户端
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	apitypes "github.com/weisyn/casnode/internal/api/http/types"
	"github.com/weisyn/casnode/internal/core/node"
	"github.com/weisyn/casnode/pkg/types"
)

// ErrNotFound 节点与网络中都不存在该内容
var ErrNotFound = errors.New("内容不存在")

// APIError 节点返回的非 2xx 响应
type APIError struct {
	Status    int
	Code      string
	Message   string
	RequestID string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("http %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("http %d %s: %s", e.Status, e.Code, e.Message)
}

// Is 404 视为 ErrNotFound
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}

// Client 节点 API 客户端
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New 创建客户端；baseURL 形如 http://127.0.0.1:8080，缺少协议时补 http://
func New(baseURL string, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = 2 * time.Minute
	}
	if !strings.Contains(baseURL, "://") {
		baseURL = "http://" + baseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// BaseURL 节点地址
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("请求节点失败: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		return nil, decodeError(resp)
	}
	return resp, nil
}

func decodeError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	apiErr := &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	var parsed apitypes.ErrorResponse
	if json.Unmarshal(body, &parsed) == nil && parsed.Error.Code != "" {
		apiErr.Code = parsed.Error.Code
		apiErr.Message = parsed.Error.Message
		apiErr.RequestID = parsed.Error.RequestID
	}
	return apiErr
}

// getJSON 读取 {"data": ...} 包装的响应
func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return decodeData(resp.Body, out)
}

func decodeData(r io.Reader, out interface{}) error {
	envelope := apitypes.SuccessResponse{Data: out}
	if err := json.NewDecoder(r).Decode(&envelope); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Upload 以 multipart 上传内容
func (c *Client) Upload(ctx context.Context, r io.Reader, filename string) (*apitypes.UploadResult, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		part, err := mw.CreateFormFile("file", filename)
		if err == nil {
			_, err = io.Copy(part, r)
		}
		if err == nil {
			err = mw.Close()
		}
		_ = pw.CloseWithError(err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/content", pr)
	if err != nil {
		_ = pr.Close()
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.do(req)
	if err != nil {
		_ = pr.CloseWithError(err)
		return nil, err
	}
	defer resp.Body.Close()

	var result apitypes.UploadResult
	if err := decodeData(resp.Body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Download 下载内容并写入 w，返回写入字节数
func (c *Client) Download(ctx context.Context, id types.ContentID, w io.Writer) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/content/"+id.String(), nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	resp, err := c.do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	// 节点已校验过哈希；此处边写边算，防止传输中被截断或篡改
	h := types.NewHasher()
	n, err := io.Copy(io.MultiWriter(w, h), resp.Body)
	if err != nil {
		return n, fmt.Errorf("读取响应失败: %w", err)
	}
	if got := h.Sum(); got != id {
		return n, fmt.Errorf("内容校验失败: 期望 %s 实际 %s", id, got)
	}
	return n, nil
}

// List 分页列出本节点存储的对象，page/pageSize 为 0 时使用服务端默认值
func (c *Client) List(ctx context.Context, page, pageSize int) ([]apitypes.ObjectView, *apitypes.PageMeta, error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if pageSize > 0 {
		q.Set("page_size", strconv.Itoa(pageSize))
	}
	path := "/api/v1/content"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := c.do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	var out []apitypes.ObjectView
	envelope := apitypes.SuccessResponse{Data: &out}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, nil, fmt.Errorf("decode response: %w", err)
	}
	return out, envelope.Pagination, nil
}


// Holders 已知持有者
func (c *Client) Holders(ctx context.Context, id types.ContentID) ([]types.Holder, error) {
	var out []types.Holder
	if err := c.getJSON(ctx, "/api/v1/content/"+id.String()+"/holders", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Peers 活跃节点
func (c *Client) Peers(ctx context.Context) ([]apitypes.PeerView, error) {
	var out []apitypes.PeerView
	if err := c.getJSON(ctx, "/api/v1/node/peers", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Info 节点概况
func (c *Client) Info(ctx context.Context) (*node.Info, error) {
	var out node.Info
	if err := c.getJSON(ctx, "/api/v1/node/info", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health 健康检查（不带 data 包装）
func (c *Client) Health(ctx context.Context) (*apitypes.HealthResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out apitypes.HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &out, nil
}
