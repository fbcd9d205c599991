package domain

const (
	RoleUser  = "user"
	RoleAdmin = "admin"

	UserActive    = "active"
	UserSuspended = "suspended"
)

// Pagination carries paging params and totals.
type Pagination struct {
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
	Total    int `json:"total"`
}

// MaxPage bounds the page number so offsets stay small.
const MaxPage = 10000

// NewPagination clamps page/size into sane bounds.
func NewPagination(page, size, defaultSize, maxSize int) Pagination {
	if page < 1 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}
	if size < 1 {
		size = defaultSize
	}
	if size > maxSize {
		size = maxSize
	}
	return Pagination{Page: page, PageSize: size}
}

func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// Page is a paginated result set.
type Page[T any] struct {
	Items      []T        `json:"items"`
	Pagination Pagination `json:"pagination"`
}

// RequestContext carries authenticated user info.
type RequestContext struct {
	UserID int64  `json:"userId"`
	Role   string `json:"role"`
}

func (r RequestContext) IsAdmin() bool {
	return r.Role == RoleAdmin
}
