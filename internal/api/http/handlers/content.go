package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	apitypes "github.com/weisyn/casnode/internal/api/http/types"
	"github.com/weisyn/casnode/internal/core/cas"
	"github.com/weisyn/casnode/internal/core/content"
	logiface "github.com/weisyn/casnode/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/casnode/pkg/interfaces/infrastructure/writegate"
	"github.com/weisyn/casnode/pkg/types"
	"github.com/weisyn/casnode/pkg/utils"
)

// multipart 上传使用的表单字段
const formFileField = "file"

// ContentHandlers 内容上传下载
type ContentHandlers struct {
	content       *content.Service
	maxObjectSize int64
	logger        logiface.Logger
}

// NewContentHandlers 创建内容处理器
func NewContentHandlers(svc *content.Service, maxObjectSize int64, logger logiface.Logger) *ContentHandlers {
	return &ContentHandlers{content: svc, maxObjectSize: maxObjectSize, logger: logger}
}

// RegisterRoutes 注册 /api/v1/content 路由
func (h *ContentHandlers) RegisterRoutes(group *gin.RouterGroup) {
	group.POST("", h.Upload)
	group.GET("", h.List)
	group.GET("/:id", h.Download)
	group.HEAD("/:id", h.Head)
	group.GET("/:id/holders", h.Holders)
}

// Upload 上传负载：原始请求体，或 multipart 的 file 字段
func (h *ContentHandlers) Upload(c *gin.Context) {
	payload, filename, err := h.readPayload(c)
	if err != nil {
		if errors.Is(err, cas.ErrObjectTooLarge) {
			respondError(c, http.StatusRequestEntityTooLarge, apitypes.ErrPayloadTooLarge, err.Error(),
				gin.H{"max_bytes": h.maxObjectSize})
			return
		}
		respondError(c, http.StatusBadRequest, apitypes.ErrInvalidArgument, err.Error(), nil)
		return
	}

	info, created, err := h.content.Upload(c.Request.Context(), payload)
	switch {
	case errors.Is(err, cas.ErrObjectTooLarge):
		respondError(c, http.StatusRequestEntityTooLarge, apitypes.ErrPayloadTooLarge, err.Error(),
			gin.H{"max_bytes": h.maxObjectSize})
		return
	case errors.Is(err, writegate.ErrReadOnly):
		respondError(c, http.StatusServiceUnavailable, apitypes.ErrServiceUnavailable, err.Error(), nil)
		return
	case errors.Is(err, cas.ErrStorageIO):
		h.logErrorf("上传写入失败: %v", err)
		respondError(c, http.StatusInternalServerError, apitypes.ErrStorageIO, "failed to persist content", nil)
		return
	case err != nil:
		h.logErrorf("上传失败: %v", err)
		respondError(c, http.StatusInternalServerError, apitypes.ErrInternal, err.Error(), nil)
		return
	}

	respondOK(c, http.StatusOK, apitypes.UploadResult{
		ID:          info.ID,
		Size:        info.Size,
		CreatedAt:   info.CreatedAt,
		Stored:      created,
		Filename:    filename,
		ContentType: utils.DetectMimeType(payload, filename),
	})
}

// readPayload 读取上传内容，超过上限返回 cas.ErrObjectTooLarge
func (h *ContentHandlers) readPayload(c *gin.Context) ([]byte, string, error) {
	var (
		src      io.Reader = c.Request.Body
		filename string
	)
	mediaType, _, _ := mime.ParseMediaType(c.GetHeader("Content-Type"))
	if strings.HasPrefix(mediaType, "multipart/") {
		fh, err := c.FormFile(formFileField)
		if err != nil {
			return nil, "", fmt.Errorf("missing multipart field %q: %w", formFileField, err)
		}
		if h.maxObjectSize > 0 && fh.Size > h.maxObjectSize {
			return nil, "", fmt.Errorf("%w: %d bytes", cas.ErrObjectTooLarge, fh.Size)
		}
		f, err := fh.Open()
		if err != nil {
			return nil, "", err
		}
		defer f.Close()
		src, filename = f, fh.Filename
	}

	if h.maxObjectSize > 0 {
		src = io.LimitReader(src, h.maxObjectSize+1)
	}
	payload, err := io.ReadAll(src)
	if err != nil {
		return nil, "", fmt.Errorf("read body: %w", err)
	}
	if h.maxObjectSize > 0 && int64(len(payload)) > h.maxObjectSize {
		return nil, "", fmt.Errorf("%w: more than %d bytes", cas.ErrObjectTooLarge, h.maxObjectSize)
	}
	return payload, filename, nil
}

// Download 下载内容，本地未命中时经网络解析
func (h *ContentHandlers) Download(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	data, err := h.content.Download(c.Request.Context(), id)
	switch {
	case errors.Is(err, content.ErrNotFound):
		respondError(c, http.StatusNotFound, apitypes.ErrNotFound, "content not found", gin.H{"id": id})
		return
	case err != nil:
		h.logErrorf("下载 %s 失败: %v", id, err)
		respondError(c, http.StatusInternalServerError, apitypes.ErrInternal, err.Error(), nil)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.dat"`, id))
	c.Header("X-Content-ID", id.String())
	c.Data(http.StatusOK, "application/octet-stream", data)
}

// Head 仅检查本地是否持有
func (h *ContentHandlers) Head(c *gin.Context) {
	id, err := types.ParseContentID(c.Param("id"))
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	info, ok, err := h.content.Stat(c.Request.Context(), id)
	switch {
	case err != nil:
		c.Status(http.StatusInternalServerError)
	case !ok:
		c.Status(http.StatusNotFound)
	default:
		c.Header("Content-Length", fmt.Sprint(info.Size))
		c.Header("X-Content-ID", id.String())
		c.Status(http.StatusOK)
	}
}

// List 分页列出本地对象（?page=&page_size=）
func (h *ContentHandlers) List(c *gin.Context) {
	var q apitypes.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondError(c, http.StatusBadRequest, apitypes.ErrInvalidArgument, err.Error(), nil)
		return
	}
	objects, err := h.content.List(c.Request.Context())
	if err != nil {
		h.logErrorf("列出对象失败: %v", err)
		respondError(c, http.StatusInternalServerError, apitypes.ErrStorageIO, err.Error(), nil)
		return
	}
	start, end := q.Window(len(objects))
	respondPage(c, apitypes.NewObjectViews(objects[start:end]), apitypes.NewPageMeta(q, len(objects)))
}

// Holders 已知的网络持有者
func (h *ContentHandlers) Holders(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	holders := h.content.Holders(id)
	if holders == nil {
		holders = []types.Holder{}
	}
	respondOK(c, http.StatusOK, holders)
}

func parseID(c *gin.Context) (types.ContentID, bool) {
	id, err := types.ParseContentID(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, apitypes.ErrInvalidArgument, err.Error(), gin.H{"id": c.Param("id")})
		return types.ContentID{}, false
	}
	return id, true
}

func (h *ContentHandlers) logErrorf(format string, args ...interface{}) {
	if h.logger != nil {
		h.logger.Errorf(format, args...)
	}
}
