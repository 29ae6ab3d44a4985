package pagination

const (
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 50
	// MaxLimit caps how many rows any list query can request.
	MaxLimit = 100
	// DefaultPageSize applies to page/page_size style listings.
	DefaultPageSize = 20
)

// Params holds offset pagination inputs from controllers or services.
type Params struct {
	Limit  int
	Offset int
}

// Normalize clamps limit and offset into their accepted ranges.
func (p Params) Normalize() Params {
	return Params{Limit: NormalizeLimit(p.Limit), Offset: NormalizeOffset(p.Offset)}
}

// NormalizeLimit enforces the configured default and maximum limits.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// NormalizeOffset rejects negative offsets.
func NormalizeOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}

// Page converts 1-based page/page_size into a limit/offset pair.
func Page(page, pageSize int) Params {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxLimit {
		pageSize = MaxLimit
	}
	return Params{Limit: pageSize, Offset: (page - 1) * pageSize}
}

// HasMore reports whether rows remain past the current page.
func HasMore(total int64, p Params) bool {
	return int64(p.Offset+p.Limit) < total
}
