package model

// Product represents a dish on the menu. CategoryName is a denormalized copy
// of the owning category's name at the time of the last write.
type Product struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Price        float64 `json:"price"`
	Description  string  `json:"description"`
	ImageURL     string  `json:"imageUrl"`
	CategoryName string  `json:"categoryName"`
}

// ToFields converts the product into the document field map stored remotely.
func (p Product) ToFields() map[string]any {
	return map[string]any{
		"name":         p.Name,
		"price":        p.Price,
		"description":  p.Description,
		"imageUrl":     p.ImageURL,
		"categoryName": p.CategoryName,
	}
}

// ProductFromFields builds a Product from a stored document.
func ProductFromFields(id string, fields map[string]any) Product {
	return Product{
		ID:           id,
		Name:         stringField(fields, "name"),
		Price:        floatField(fields, "price"),
		Description:  stringField(fields, "description"),
		ImageURL:     stringField(fields, "imageUrl"),
		CategoryName: stringField(fields, "categoryName"),
	}
}
