package model

// Category represents a menu category. Products reference their category by
// name, not by ID, so renaming or deleting a category must be propagated to
// every referencing product in the same atomic batch.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ToFields converts the category into the document field map stored remotely.
// The ID is held by the document itself, never inside the fields.
func (c Category) ToFields() map[string]any {
	return map[string]any{
		"name": c.Name,
	}
}

// CategoryFromFields builds a Category from a stored document.
func CategoryFromFields(id string, fields map[string]any) Category {
	return Category{
		ID:   id,
		Name: stringField(fields, "name"),
	}
}

func stringField(fields map[string]any, key string) string {
	if v, ok := fields[key].(string); ok {
		return v
	}
	return ""
}

func floatField(fields map[string]any, key string) float64 {
	switch v := fields[key].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	}
	return 0
}
