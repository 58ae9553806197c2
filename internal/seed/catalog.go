// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package seed

import "attrcatalog/internal/models"

// CategoryDef is one node of the demo category tree.
type CategoryDef struct {
	Slug     string
	Name     string
	Children []CategoryDef
}

// AttributeDef is one demo attribute. An attribute without LinkTo is
// global.
type AttributeDef struct {
	Slug   string
	Name   string
	Type   models.AttributeType
	LinkTo []string
}

func leaves(names ...string) []CategoryDef {
	out := make([]CategoryDef, 0, len(names)/2)
	for i := 0; i+1 < len(names); i += 2 {
		out = append(out, CategoryDef{Slug: names[i], Name: names[i+1]})
	}
	return out
}

// Categories is the demo grocery tree.
var Categories = []CategoryDef{
	{
		Slug: "food-and-beverages",
		Name: "Food and Beverages",
		Children: []CategoryDef{
			{Slug: "beverages", Name: "Beverages", Children: leaves(
				"coffee", "Coffee",
				"tea", "Tea",
				"juices", "Juices",
				"soft-drinks", "Soft Drinks",
				"water", "Water",
			)},
			{Slug: "snacks", Name: "Snacks", Children: leaves(
				"chips", "Chips",
				"nuts-and-seeds", "Nuts and Seeds",
				"biscuits-and-cookies", "Biscuits and Cookies",
				"chocolate-and-confectionery", "Chocolate and Confectionery",
			)},
			{Slug: "dairy-and-eggs", Name: "Dairy and Eggs", Children: leaves(
				"milk", "Milk",
				"yogurt", "Yogurt",
				"cheese", "Cheese",
				"eggs", "Eggs",
				"butter-and-cream", "Butter and Cream",
			)},
			{Slug: "bakery", Name: "Bakery", Children: leaves(
				"bread", "Bread",
				"buns-and-rolls", "Buns and Rolls",
				"cakes-and-pastries", "Cakes and Pastries",
			)},
			{Slug: "cooking-essentials", Name: "Cooking Essentials", Children: leaves(
				"flour-and-grains", "Flour and Grains",
				"rice-and-pulses", "Rice and Pulses",
				"oils-and-ghee", "Oils and Ghee",
				"spices-and-seasonings", "Spices and Seasonings",
				"sauces-and-condiments", "Sauces and Condiments",
			)},
			{Slug: "frozen-and-ready-to-eat", Name: "Frozen and Ready to Eat", Children: leaves(
				"frozen-vegetables", "Frozen Vegetables",
				"frozen-snacks", "Frozen Snacks",
				"ready-meals", "Ready Meals",
				"ice-cream", "Ice Cream",
			)},
		},
	},
}

// Attributes is the demo attribute set. Some links target inner
// categories so their descendants inherit the attribute.
var Attributes = []AttributeDef{
	{Slug: "sku", Name: "SKU", Type: models.AttributeTypeText},
	{Slug: "brand", Name: "Brand", Type: models.AttributeTypeText},
	{Slug: "gtin", Name: "GTIN", Type: models.AttributeTypeText},
	{Slug: "mrp", Name: "MRP", Type: models.AttributeTypeNumber},

	{Slug: "volume-ml", Name: "Volume ml", Type: models.AttributeTypeNumber, LinkTo: []string{"beverages", "juices", "soft-drinks", "water"}},
	{Slug: "flavor", Name: "Flavor", Type: models.AttributeTypeText, LinkTo: []string{"beverages", "juices", "soft-drinks"}},
	{Slug: "sugar-free", Name: "Sugar Free", Type: models.AttributeTypeBoolean, LinkTo: []string{"beverages", "soft-drinks"}},

	{Slug: "coffee-bean-type", Name: "Bean Type", Type: models.AttributeTypeText, LinkTo: []string{"coffee"}},
	{Slug: "coffee-roast", Name: "Roast Level", Type: models.AttributeTypeText, LinkTo: []string{"coffee"}},
	{Slug: "coffee-grind", Name: "Grind", Type: models.AttributeTypeText, LinkTo: []string{"coffee"}},
	{Slug: "coffee-origin", Name: "Country of Origin", Type: models.AttributeTypeText, LinkTo: []string{"coffee"}},
	{Slug: "caffeine-level", Name: "Caffeine Level", Type: models.AttributeTypeText, LinkTo: []string{"coffee"}},
	{Slug: "pack-size-g", Name: "Pack Size g", Type: models.AttributeTypeNumber, LinkTo: []string{"coffee"}},

	{Slug: "tea-type", Name: "Tea Type", Type: models.AttributeTypeText, LinkTo: []string{"tea"}},
	{Slug: "tea-origin", Name: "Country of Origin", Type: models.AttributeTypeText, LinkTo: []string{"tea"}},
	{Slug: "tea-pack-size-g", Name: "Pack Size g", Type: models.AttributeTypeNumber, LinkTo: []string{"tea"}},

	{Slug: "net-weight-g", Name: "Net Weight g", Type: models.AttributeTypeNumber, LinkTo: []string{"snacks", "chips", "biscuits-and-cookies", "chocolate-and-confectionery", "nuts-and-seeds"}},
	{Slug: "is-veg", Name: "Vegetarian", Type: models.AttributeTypeBoolean, LinkTo: []string{"snacks"}},
	{Slug: "allergens", Name: "Allergens", Type: models.AttributeTypeText, LinkTo: []string{"snacks", "biscuits-and-cookies", "chocolate-and-confectionery", "nuts-and-seeds"}},

	{Slug: "fat-percentage", Name: "Fat Percentage", Type: models.AttributeTypeNumber, LinkTo: []string{"milk", "yogurt", "cheese", "butter-and-cream"}},
	{Slug: "storage", Name: "Storage", Type: models.AttributeTypeText, LinkTo: []string{"dairy-and-eggs", "frozen-and-ready-to-eat"}},
}
