package service

import (
	"strings"
	"time"

	"directory-sync-service/internal/model"
)

// FilterSpec — набор условий фильтрации пользователей. Все заданные условия
// объединяются логическим И; незаданное условие всегда истинно.
type FilterSpec struct {
	// Text — подстрочный поиск без учёта регистра по имени, email и
	// account_id.
	Text string
	// Status трактуется в зависимости от схемы: для Org сравнивается с
	// сырым account_status без учёта регистра, для Standard допустимы
	// только Active/Inactive поверх булева флага. Словари значений двух
	// схем не совпадают и не сводятся к общему перечислению.
	Status string
	// AccountType сравнивается точно.
	AccountType string
	// ActiveFrom/ActiveTo — включительный диапазон последней активности;
	// нулевое время означает отсутствие границы.
	ActiveFrom time.Time
	ActiveTo   time.Time
}

// IsZero сообщает, что ни одно условие не задано.
func (f FilterSpec) IsZero() bool {
	return f.Text == "" && f.Status == "" && f.AccountType == "" &&
		f.ActiveFrom.IsZero() && f.ActiveTo.IsZero()
}

// FilterUsers применяет фильтр к снапшоту, сохраняя исходный порядок записей.
func FilterUsers(schema model.Schema, users []model.User, spec FilterSpec) []model.User {
	if spec.IsZero() {
		return users
	}
	out := make([]model.User, 0, len(users))
	for _, u := range users {
		if matchUser(schema, u, spec) {
			out = append(out, u)
		}
	}
	return out
}

func matchUser(schema model.Schema, u model.User, spec FilterSpec) bool {
	if spec.Text != "" {
		term := strings.ToLower(spec.Text)
		if !strings.Contains(strings.ToLower(u.Name), term) &&
			!strings.Contains(strings.ToLower(u.Email), term) &&
			!strings.Contains(strings.ToLower(u.AccountID), term) {
			return false
		}
	}

	if spec.Status != "" {
		if schema == model.SchemaOrg {
			if !strings.EqualFold(u.RawStatus, spec.Status) {
				return false
			}
		} else {
			if strings.EqualFold(spec.Status, "Active") && !u.Active {
				return false
			}
			if strings.EqualFold(spec.Status, "Inactive") && u.Active {
				return false
			}
		}
	}

	if spec.AccountType != "" && u.AccountType != spec.AccountType {
		return false
	}

	if !spec.ActiveFrom.IsZero() || !spec.ActiveTo.IsZero() {
		// Запись без разобранной метки активности не проходит ни один
		// диапазон: отсутствие данных — не совпадение со всем подряд.
		if !u.LastActive.Valid {
			return false
		}
		if !spec.ActiveFrom.IsZero() && u.LastActive.Time.Before(spec.ActiveFrom) {
			return false
		}
		if !spec.ActiveTo.IsZero() && u.LastActive.Time.After(spec.ActiveTo) {
			return false
		}
	}

	return true
}

// FilterGroups фильтрует группы подстрочным поиском по имени и идентификатору.
func FilterGroups(groups []model.Group, term string) []model.Group {
	if term == "" {
		return groups
	}
	term = strings.ToLower(term)
	out := make([]model.Group, 0, len(groups))
	for _, g := range groups {
		if strings.Contains(strings.ToLower(g.Name), term) ||
			strings.Contains(strings.ToLower(g.GroupID), term) {
			out = append(out, g)
		}
	}
	return out
}

// FilterProducts фильтрует продукты подстрочным поиском по имени, URL и
// пользователям продукта.
func FilterProducts(products []model.Product, term string) []model.Product {
	if term == "" {
		return products
	}
	term = strings.ToLower(term)
	out := make([]model.Product, 0, len(products))
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), term) ||
			strings.Contains(strings.ToLower(p.URL), term) ||
			anyProductUser(p.Users, term) {
			out = append(out, p)
		}
	}
	return out
}

func anyProductUser(users []model.ProductUser, term string) bool {
	for _, u := range users {
		if strings.Contains(strings.ToLower(u.Name), term) ||
			strings.Contains(strings.ToLower(u.Email), term) {
			return true
		}
	}
	return false
}
