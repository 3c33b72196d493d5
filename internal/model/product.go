package model

// ProductEntitlement описывает доступ пользователя к продукту.
// Для целей агрегации продукт идентифицируется парой (Name, URL).
type ProductEntitlement struct {
	Name       string     `json:"name"`
	Key        string     `json:"key"`
	URL        string     `json:"url"`
	LastActive LastActive `json:"last_active"`
}

// ProductKey — составной ключ продукта: одинаковые имена с разными URL —
// это разные продукты.
type ProductKey struct {
	Name string
	URL  string
}

// NeverActive — метка отсутствия активности в продукте.
const NeverActive = "Never"

// ProductUser — денормализованная сводка пользователя внутри продукта.
type ProductUser struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	AccountID string `json:"account_id"`
	Status    string `json:"status"`
	// LastActive — активность в продукте в формате отображения,
	// NeverActive при её отсутствии.
	LastActive string `json:"last_active"`
}

// Product — производная сущность «продукт → пользователи». Строится целиком
// заново при каждой агрегации.
type Product struct {
	Name  string        `json:"name"`
	Key   string        `json:"key"`
	URL   string        `json:"url"`
	Users []ProductUser `json:"users"`
}

// MostRecentActivity возвращает самую позднюю активность среди пользователей
// продукта либо NeverActive, если активности не было.
func (p Product) MostRecentActivity() string {
	most := ""
	for _, u := range p.Users {
		if u.LastActive != NeverActive && u.LastActive > most {
			most = u.LastActive
		}
	}
	if most == "" {
		return NeverActive
	}
	return most
}
