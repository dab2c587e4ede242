package store

import "expensebook/internal/core"

// DefaultCategories is the set seeded on first run.
func DefaultCategories() []core.Category {
	return []core.Category{
		{ID: "subscription", Name: "Subscriptions", Color: "#8B5CF6", Icon: core.IconFilm},
		{ID: "food", Name: "Food & Dining", Color: "#F59E0B", Icon: core.IconUtensils},
		{ID: "transportation", Name: "Transportation", Color: "#10B981", Icon: core.IconCar},
		{ID: "housing", Name: "Housing", Color: "#3B82F6", Icon: core.IconHome},
		{ID: "shopping", Name: "Shopping", Color: "#EC4899", Icon: core.IconShoppingCart},
		{ID: "entertainment", Name: "Entertainment", Color: "#6366F1", Icon: core.IconFilm},
		{ID: "education", Name: "Education", Color: "#0EA5E9", Icon: core.IconBookOpen},
		{ID: "travel", Name: "Travel", Color: "#F97316", Icon: core.IconPlane},
		{ID: "other", Name: "Other", Color: core.DefaultColor, Icon: core.IconWallet},
	}
}
