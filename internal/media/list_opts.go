package media

import (
	"github.com/desertthunder/bcx/internal/connection"
	"github.com/desertthunder/bcx/internal/models"
)

// ListOpts narrow and order a finder page. The zero value asks for the
// server defaults.
type ListOpts struct {
	// Fields selects entity fields; the essential set is always added.
	Fields []string
	// VideoFields selects fields of videos embedded in playlists.
	VideoFields []string

	PageSize     int
	PageNumber   int
	SortBy       models.SortBy
	SortOrder    models.SortOrder
	GetItemCount bool
}

// params renders o for a command whose field selection key is fieldsKey.
func (o *ListOpts) params(fieldsKey string) connection.Params {
	p := connection.Params{}
	if o == nil {
		return p
	}
	if len(o.Fields) > 0 {
		p[fieldsKey] = o.Fields
	}
	if len(o.VideoFields) > 0 && fieldsKey != videoFieldsKey {
		p[videoFieldsKey] = o.VideoFields
	}
	if o.PageSize > 0 {
		p["page_size"] = o.PageSize
	}
	if o.PageNumber > 0 {
		p["page_number"] = o.PageNumber
	}
	if o.SortBy != "" {
		p["sort_by"] = string(o.SortBy)
	}
	if o.SortOrder != "" {
		p["sort_order"] = string(o.SortOrder)
	}
	if o.GetItemCount {
		p["get_item_count"] = true
	}
	return p
}
