package pagination

import (
	"encoding/base64"
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

type Pagination struct {
	PageToken string `form:"page_token"`
	PageSize  int    `form:"page_size,default=50" validate:"gte=1,lte=250"`
}

type Cursor struct {
	ID        string `json:"id,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

type PageInfo struct {
	NextPageToken string `json:"next_page_token"`
	HasMore       bool   `json:"has_more"`
}

func EncodeCursor(data Cursor) (string, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

func DecodeCursor(data string) (*Cursor, error) {
	b, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, err
	}

	var cursor Cursor
	if err := json.Unmarshal(b, &cursor); err != nil {
		return nil, err
	}

	return &cursor, nil
}

// Apply constrains stmt to the requested page. One extra row is fetched so the
// caller can detect a following page.
func Apply(stmt *gorm.DB, page Pagination) *gorm.DB {
	return ApplyColumn(stmt, page, "created_at")
}

// ApplyColumn is Apply with an explicit cursor column, for queries where a
// join makes the bare column name ambiguous.
func ApplyColumn(stmt *gorm.DB, page Pagination, column string) *gorm.DB {
	size := Limit(page)
	if page.PageToken != "" {
		if cursor, err := DecodeCursor(page.PageToken); err == nil && cursor.CreatedAt != "" {
			// bind a typed timestamp so each dialect formats it itself
			if ts, perr := time.Parse(time.RFC3339Nano, cursor.CreatedAt); perr == nil {
				stmt = stmt.Where(column+" < ?", ts)
			} else {
				stmt = stmt.Where(column+" < ?", cursor.CreatedAt)
			}
		}
	}
	return stmt.Limit(size + 1)
}

// Limit normalizes the requested page size.
func Limit(page Pagination) int {
	size := page.PageSize
	if size <= 0 {
		size = 50
	}
	if size > 250 {
		size = 250
	}
	return size
}

// BuildCursorPageInfo derives page info from a result that may carry the extra
// lookahead row fetched by Apply.
func BuildCursorPageInfo[T any](data []*T, limit int, extractCursor func(*T) string) *PageInfo {
	if len(data) == 0 {
		return &PageInfo{HasMore: false}
	}
	if limit <= 0 {
		limit = 50
	}

	hasMore := false
	if len(data) > limit {
		hasMore = true
		data = data[:limit]
	}

	return &PageInfo{
		HasMore:       hasMore,
		NextPageToken: extractCursor(data[len(data)-1]),
	}
}
