// Package http реализует HTTP-обработчики и DTO поверх доменных сервисов.
package http

import (
	"directory-sync-service/internal/model"
	"directory-sync-service/internal/service"
)

type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// fetchFailureResponse отдаётся при сбое выгрузки: счётчики уже
// зафиксированного частичного результата пристраиваются к телу ошибки.
type fetchFailureResponse struct {
	Error  errorBody           `json:"error"`
	Result service.FetchResult `json:"result"`
}

type validateTokenResponse struct {
	User string `json:"user"`
}

type resolveOrgResponse struct {
	OrgID   string `json:"org_id"`
	OrgName string `json:"org_name"`
}

type usersResponse struct {
	Schema model.Schema `json:"schema"`
	Count  int          `json:"count"`
	Users  []model.User `json:"users"`
}

type userProductsResponse struct {
	AccountID string                     `json:"account_id"`
	Products  []model.ProductEntitlement `json:"products"`
}

type groupsResponse struct {
	Count  int           `json:"count"`
	Groups []model.Group `json:"groups"`
}

type groupMembersResponse struct {
	Group   string       `json:"group"`
	Count   int          `json:"count"`
	Members []model.User `json:"members"`
}

type productsResponse struct {
	Count    int             `json:"count"`
	Products []model.Product `json:"products"`
}

type selectionRequest struct {
	AccountIDs []string `json:"account_ids"`
}

type selectionResponse struct {
	Count int          `json:"count"`
	Users []model.User `json:"users"`
}

// missingSelectionResponse перечисляет идентификаторы, которых нет в снапшоте;
// выборка в этом случае не меняется.
type missingSelectionResponse struct {
	Error   errorBody `json:"error"`
	Missing []string  `json:"missing"`
}

type bulkRequest struct {
	Action    string `json:"action"`
	GroupName string `json:"group_name"`
}
