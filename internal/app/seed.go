package app

import (
	"context"

	"go.uber.org/zap"

	"storefront/internal/models"
	"storefront/internal/services"
)

// DefaultOptions is the option catalog a fresh store is seeded with.
var DefaultOptions = []models.Option{
	{Name: "Color", Values: []string{"Black", "White", "Silver", "Space Gray", "Gold", "Rose Gold", "Blue", "Red", "Green", "Midnight Green", "Starlight", "Midnight"}},
	{Name: "Storage", Values: []string{"64GB", "128GB", "256GB", "512GB", "1TB", "2TB"}},
	{Name: "RAM", Values: []string{"4GB", "8GB", "16GB", "32GB", "64GB", "128GB"}},
	{Name: "Processor", Values: []string{"Intel Core i5", "Intel Core i7", "Intel Core i9", "AMD Ryzen 5", "AMD Ryzen 7", "AMD Ryzen 9", "Apple M1", "Apple M2", "Apple M3", "Snapdragon 8 Gen 2"}},
	{Name: "Screen Size", Values: []string{"11-inch", "13-inch", "14-inch", "15-inch", "16-inch", "24-inch", "27-inch", "32-inch"}},
	{Name: "Condition", Values: []string{"New", "Manufacturer Refurbished", "Seller Refurbished", "Used"}},
	{Name: "Graphics Card", Values: []string{"NVIDIA GeForce RTX 3060", "NVIDIA GeForce RTX 3070", "NVIDIA GeForce RTX 3080", "NVIDIA GeForce RTX 4070", "NVIDIA GeForce RTX 4080", "NVIDIA GeForce RTX 4090", "AMD Radeon RX 6700 XT", "AMD Radeon RX 6800 XT", "Integrated Graphics", "Apple M-series GPU"}},
	{Name: "Connectivity", Values: []string{"Wi-Fi", "Wi-Fi + Cellular", "Bluetooth", "NFC"}},
}

// SeedOptions upserts options by name and reports how many were created.
func SeedOptions(ctx context.Context, svc *services.OptionService, options []models.Option, log *zap.Logger) (int, error) {
	created := 0
	for _, o := range options {
		o.Values = append([]string(nil), o.Values...)
		stored, isNew, err := svc.UpsertByName(ctx, o)
		if err != nil {
			return created, err
		}
		if isNew {
			created++
			log.Info("created option", zap.String("name", stored.Name), zap.Int("values", len(stored.Values)))
		} else {
			log.Info("updated option", zap.String("name", stored.Name), zap.Int("values", len(stored.Values)))
		}
	}
	return created, nil
}
