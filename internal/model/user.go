// Package model описывает каноническую модель каталога: пользователей, группы
// и продуктовые доступы, не зависящие от схемы конкретного источника.
package model

import "strings"

// Schema обозначает активную схему источника. В одном снапшоте записи всегда
// принадлежат ровно одной схеме.
type Schema string

const (
	// SchemaStandard — Standard API сайта (offset-пагинация, без last_active).
	SchemaStandard Schema = "standard"
	// SchemaOrg — Organization API (cursor-пагинация, полные данные активности).
	SchemaOrg Schema = "org"
)

// Известные типы учётных записей.
const (
	AccountTypeAtlassian = "atlassian"
	AccountTypeApp       = "app"
	AccountTypeCustomer  = "customer"
)

// NoEmail — сентинел для отсутствующего адреса; пустой email никогда не
// пробрасывается дальше как есть.
const NoEmail = "(No email)"

// User описывает каноническую запись пользователя каталога.
type User struct {
	AccountID   string `json:"account_id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	AccountType string `json:"account_type"`
	Active      bool   `json:"active"`
	// RawStatus хранит исходное строковое значение статуса схемы Org
	// (account_status); для Standard-схемы поле пустое.
	RawStatus     string               `json:"account_status,omitempty"`
	LastActive    LastActive           `json:"last_active"`
	ProductAccess []ProductEntitlement `json:"product_access,omitempty"`
}

// StatusLabel возвращает отображаемый статус учётной записи с учётом схемы.
func (u User) StatusLabel(schema Schema) string {
	if schema == SchemaOrg {
		return u.RawStatus
	}
	if u.Active {
		return "Active"
	}
	return "Inactive"
}

// NormalizeEmail приводит адрес к каноническому виду: пустое значение
// заменяется сентинелом NoEmail, непустое возвращается без изменений.
func NormalizeEmail(email string) string {
	if strings.TrimSpace(email) == "" {
		return NoEmail
	}
	return email
}

// SuspiciousEmail сообщает, выглядит ли непустой адрес неполным (нет «@»).
// Такие значения сохраняются, но заслуживают предупреждения в логе.
func SuspiciousEmail(email string) bool {
	return email != "" && email != NoEmail && !strings.Contains(email, "@")
}

// NormalizeUser повторно применяет правила нормализации к канонической записи.
// Для уже нормализованной записи результат совпадает со входом.
func NormalizeUser(u User) User {
	u.Email = NormalizeEmail(u.Email)
	return u
}
