package service

import (
	"sort"

	"directory-sync-service/internal/model"
)

// AggregateProducts строит производное представление «продукт → пользователи»
// сканированием продуктовых доступов снапшота. Представление каждый раз
// пересчитывается целиком и никогда не обновляется инкрементально. Продукты
// отсортированы по имени, пользователи внутри продукта — по имени.
func AggregateProducts(schema model.Schema, users []model.User) []model.Product {
	byKey := make(map[model.ProductKey]*model.Product)

	for _, u := range users {
		status := u.StatusLabel(schema)
		for _, pa := range u.ProductAccess {
			key := model.ProductKey{Name: pa.Name, URL: pa.URL}
			p, ok := byKey[key]
			if !ok {
				p = &model.Product{Name: pa.Name, Key: pa.Key, URL: pa.URL}
				byKey[key] = p
			}
			p.Users = append(p.Users, model.ProductUser{
				Name:       u.Name,
				Email:      u.Email,
				AccountID:  u.AccountID,
				Status:     status,
				LastActive: productActivityLabel(pa.LastActive),
			})
		}
	}

	out := make([]model.Product, 0, len(byKey))
	for _, p := range byKey {
		sort.Slice(p.Users, func(i, j int) bool {
			return p.Users[i].Name < p.Users[j].Name
		})
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out
}

// productActivityLabel форматирует активность в продукте; нечитаемое значение
// сохраняется как есть, отсутствующее отображается как NeverActive.
func productActivityLabel(la model.LastActive) string {
	if la.IsZero() {
		return model.NeverActive
	}
	return la.Format()
}
