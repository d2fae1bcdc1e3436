package cmd

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	productResponse "github.com/Alturino/storefront/product/response"
)

// seedProducts mirrors the seed migration so the memory driver serves the same catalog.
var seedProducts = []productResponse.Product{
	{
		ID:          uuid.MustParse("0b6c1d5e-2f1a-4c55-9a57-6f3f1d1b9a01"),
		Name:        "Classic Tee",
		Price:       decimal.RequireFromString("12.50"),
		Category:    "clothes",
		Image:       "/images/classic-tee.jpg",
		Description: "Cotton crew neck tee",
	},
	{
		ID:          uuid.MustParse("0b6c1d5e-2f1a-4c55-9a57-6f3f1d1b9a02"),
		Name:        "Runner Sneakers",
		Price:       decimal.RequireFromString("59.90"),
		Category:    "shoes",
		Image:       "/images/runner.jpg",
		Description: "Lightweight running shoes",
	},
	{
		ID:          uuid.MustParse("0b6c1d5e-2f1a-4c55-9a57-6f3f1d1b9a03"),
		Name:        "Steel Watch",
		Price:       decimal.RequireFromString("120.00"),
		Category:    "watches",
		Image:       "/images/steel-watch.jpg",
		Description: "Stainless steel wrist watch",
	},
}
