package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"directory-sync-service/internal/model"
	"directory-sync-service/internal/service"
)

func TestAggregateProducts_Empty(t *testing.T) {
	assert.Empty(t, service.AggregateProducts(model.SchemaOrg, nil))
	assert.Empty(t, service.AggregateProducts(model.SchemaOrg, []model.User{
		{AccountID: "1", Name: "Alice"},
	}), "пользователь без доступов не порождает продуктов")
}

func TestAggregateProducts_MergesByNameAndURL(t *testing.T) {
	users := []model.User{
		{
			AccountID: "1", Name: "Alice", Email: "alice@example.com", RawStatus: "active",
			ProductAccess: []model.ProductEntitlement{
				{Name: "Jira Software", Key: "jira-software", URL: "one.atlassian.net", LastActive: model.ParseLastActive("2024-03-01T10:00:00Z")},
			},
		},
		{
			AccountID: "2", Name: "Bob", Email: "bob@example.com", RawStatus: "active",
			ProductAccess: []model.ProductEntitlement{
				// Тот же (name, url) — тот же продукт.
				{Name: "Jira Software", Key: "jira-software", URL: "one.atlassian.net", LastActive: model.ParseLastActive("2024-01-01T00:00:00Z")},
				// То же имя, другой URL — другой продукт.
				{Name: "Jira Software", Key: "jira-software", URL: "two.atlassian.net"},
			},
		},
	}

	products := service.AggregateProducts(model.SchemaOrg, users)
	require.Len(t, products, 2)

	// Продукты отсортированы по имени, при равенстве порядок по ключу карты
	// не важен — находим нужный по URL.
	var one, two model.Product
	for _, p := range products {
		switch p.URL {
		case "one.atlassian.net":
			one = p
		case "two.atlassian.net":
			two = p
		}
	}

	require.Len(t, one.Users, 2)
	assert.Equal(t, "Alice", one.Users[0].Name, "пользователи продукта отсортированы по имени")
	assert.Equal(t, "Bob", one.Users[1].Name)
	assert.Equal(t, "active", one.Users[0].Status)
	assert.Equal(t, "2024-03-01 10:00:00", one.MostRecentActivity())

	require.Len(t, two.Users, 1)
	assert.Equal(t, model.NeverActive, two.Users[0].LastActive)
	assert.Equal(t, model.NeverActive, two.MostRecentActivity())
}

func TestAggregateProducts_MalformedActivityPreserved(t *testing.T) {
	users := []model.User{
		{
			AccountID: "1", Name: "Alice",
			ProductAccess: []model.ProductEntitlement{
				{Name: "Jira", URL: "one", LastActive: model.ParseLastActive("garbage-date")},
			},
		},
	}

	products := service.AggregateProducts(model.SchemaStandard, users)
	require.Len(t, products, 1)
	// Нечитаемое значение не выбрасывается, а сохраняется как есть.
	assert.Equal(t, "garbage-date", products[0].Users[0].LastActive)
}
