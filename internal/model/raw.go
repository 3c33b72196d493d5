package model

import "strings"

// Сырые формы записей двух схем источника. Нормализация — явное отображение
// по варианту схемы, без утиного прощупывания полей.

// RawStandardUser — запись пользователя Standard API.
type RawStandardUser struct {
	AccountID    string `json:"accountId"`
	DisplayName  string `json:"displayName"`
	EmailAddress string `json:"emailAddress"`
	AccountType  string `json:"accountType"`
	Active       bool   `json:"active"`
}

// RawOrgUser — запись пользователя Organization API.
type RawOrgUser struct {
	AccountID     string             `json:"account_id"`
	Name          string             `json:"name"`
	Email         string             `json:"email"`
	AccountType   string             `json:"account_type"`
	AccountStatus string             `json:"account_status"`
	LastActive    string             `json:"last_active"`
	ProductAccess []RawProductAccess `json:"product_access"`
}

// RawProductAccess — запись продуктового доступа в ответе Organization API.
type RawProductAccess struct {
	Name       string `json:"name"`
	Key        string `json:"key"`
	URL        string `json:"url"`
	LastActive string `json:"last_active"`
}

// RawGroup — запись группы Standard API.
type RawGroup struct {
	GroupID     string `json:"groupId"`
	Name        string `json:"name"`
	MemberCount int    `json:"memberCount"`
}

// NormalizeStandardUser отображает запись Standard-схемы в каноническую.
// Standard API не отдаёт данные активности: last_active остаётся
// отсутствующим, продуктовые доступы — пустыми.
func NormalizeStandardUser(r RawStandardUser) User {
	return NormalizeUser(User{
		AccountID:   r.AccountID,
		Name:        r.DisplayName,
		Email:       r.EmailAddress,
		AccountType: r.AccountType,
		Active:      r.Active,
	})
}

// NormalizeOrgUser отображает запись Org-схемы в каноническую, сохраняя
// исходный account_status для схемо-зависимой фильтрации.
func NormalizeOrgUser(r RawOrgUser) User {
	u := User{
		AccountID:   r.AccountID,
		Name:        r.Name,
		Email:       r.Email,
		AccountType: r.AccountType,
		Active:      strings.EqualFold(r.AccountStatus, "active"),
		RawStatus:   r.AccountStatus,
		LastActive:  ParseLastActive(r.LastActive),
	}
	for _, p := range r.ProductAccess {
		u.ProductAccess = append(u.ProductAccess, ProductEntitlement{
			Name:       p.Name,
			Key:        p.Key,
			URL:        p.URL,
			LastActive: ParseLastActive(p.LastActive),
		})
	}
	return NormalizeUser(u)
}

// NormalizeGroup отображает запись группы в каноническую.
func NormalizeGroup(r RawGroup) Group {
	return Group{
		GroupID:     r.GroupID,
		Name:        r.Name,
		MemberCount: r.MemberCount,
	}
}
