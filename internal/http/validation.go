package http

import (
	"fmt"
	"net/url"
	"time"

	"directory-sync-service/internal/service"
)

// dateLayout — формат дат в query-параметрах фильтра.
const dateLayout = "2006-01-02"

// ParseFilterSpec собирает критерии фильтра из query-параметров списка
// пользователей. Верхняя граница диапазона включает весь день.
func ParseFilterSpec(q url.Values) (service.FilterSpec, error) {
	spec := service.FilterSpec{
		Text:        q.Get("search"),
		Status:      q.Get("status"),
		AccountType: q.Get("type"),
	}

	if raw := q.Get("active_from"); raw != "" {
		from, err := time.Parse(dateLayout, raw)
		if err != nil {
			return spec, service.ErrBadRequest("active_from must match YYYY-MM-DD")
		}
		spec.ActiveFrom = from
	}
	if raw := q.Get("active_to"); raw != "" {
		to, err := time.Parse(dateLayout, raw)
		if err != nil {
			return spec, service.ErrBadRequest("active_to must match YYYY-MM-DD")
		}
		spec.ActiveTo = to.Add(24*time.Hour - time.Second)
	}

	return spec, nil
}

// ValidateSelectionRequest — тело запроса PUT /selection.
func ValidateSelectionRequest(req selectionRequest) error {
	if len(req.AccountIDs) == 0 {
		return service.ErrBadRequest("account_ids must not be empty")
	}
	for i, id := range req.AccountIDs {
		if id == "" {
			return service.ErrBadRequest(fmt.Sprintf("account_ids[%d] must not be empty", i))
		}
	}
	return nil
}

// ValidateBulkRequest — тело запроса POST /bulk.
func ValidateBulkRequest(req bulkRequest) error {
	switch service.BulkAction(req.Action) {
	case service.ActionDeactivate, service.ActionReactivate:
		return nil
	case service.ActionAddToGroup, service.ActionRemoveFromGroup:
		if req.GroupName == "" {
			return service.ErrBadRequest("group_name is required for group actions")
		}
		return nil
	default:
		return service.ErrBadRequest("action must be one of: deactivate, reactivate, add_group, remove_group")
	}
}
