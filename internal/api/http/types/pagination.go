package types

const (
	// DefaultPageSize 对象列表默认每页条数
	DefaultPageSize = 100
	// MaxPageSize 对象列表每页上限
	MaxPageSize = 1000
)

// ListQuery 对象列表分页参数，page 从 1 开始
type ListQuery struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=1000"`
}

// Normalize 填充缺省值
func (q ListQuery) Normalize() ListQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = DefaultPageSize
	}
	if q.PageSize > MaxPageSize {
		q.PageSize = MaxPageSize
	}
	return q
}

// Window 返回 total 条记录中本页的 [start, end) 下标
func (q ListQuery) Window(total int) (int, int) {
	q = q.Normalize()
	start := (q.Page - 1) * q.PageSize
	if start > total {
		start = total
	}
	end := start + q.PageSize
	if end > total {
		end = total
	}
	return start, end
}

// PageMeta 分页元数据
type PageMeta struct {
	Page       int  `json:"page"`
	PageSize   int  `json:"page_size"`
	TotalItems int  `json:"total_items"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
}

// NewPageMeta 根据分页参数和总数构造元数据
func NewPageMeta(q ListQuery, total int) *PageMeta {
	q = q.Normalize()
	pages := (total + q.PageSize - 1) / q.PageSize
	if pages < 1 {
		pages = 1
	}
	return &PageMeta{
		Page:       q.Page,
		PageSize:   q.PageSize,
		TotalItems: total,
		TotalPages: pages,
		HasNext:    q.Page < pages,
	}
}
