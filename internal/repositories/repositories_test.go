package repositories_test

import (
	"context"
	"fmt"
	"testing"

	"storefront/internal/models"
	"storefront/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Option{}, &models.Product{}, &models.Admin{}))
	return db
}

func discount(f float64) *float64 { return &f }

func sampleProduct() *models.Product {
	return &models.Product{
		Name:          "Phone X",
		Slug:          "phone-x",
		OptionOrder:   []string{"Color"},
		Specification: datatypes.JSON(`{"screen":"6.1in"}`),
		Variants: []models.Variant{
			{ID: "v1", Attributes: []models.Attribute{{OptionID: "o1", OptionName: "Color", Value: "Black"}}, Price: 10, Stock: 2, Discount: discount(8), SKU: "PX-B"},
			{ID: "v2", Attributes: []models.Attribute{{OptionID: "o1", OptionName: "Color", Value: "White"}}, Price: 11, Stock: 0},
		},
	}
}

func productRepos(t *testing.T) map[string]repositories.ProductRepository {
	return map[string]repositories.ProductRepository{
		"gorm": repositories.NewGORMProductRepository(openSQLite(t)),
		"mock": repositories.NewMockProductRepository(),
	}
}

func TestProductRepositories_RoundTripVariants(t *testing.T) {
	for name, repo := range productRepos(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			p := sampleProduct()
			require.NoError(t, repo.Create(ctx, p))
			require.NotEmpty(t, p.ID)

			got, err := repo.GetBySlug(ctx, "phone-x")
			require.NoError(t, err)
			assert.Equal(t, p.ID, got.ID)
			assert.Equal(t, p.Variants, got.Variants)
			assert.Equal(t, []string{"Color"}, got.OptionOrder)
			assert.JSONEq(t, `{"screen":"6.1in"}`, string(got.Specification))

			got.Variants = got.Variants[:1]
			got.Variants[0].Price = 15
			require.NoError(t, repo.Update(ctx, got))

			again, err := repo.GetByID(ctx, p.ID)
			require.NoError(t, err)
			require.Len(t, again.Variants, 1)
			assert.Equal(t, 15.0, again.Variants[0].Price)
			assert.Equal(t, "PX-B", again.Variants[0].SKU)

			require.NoError(t, repo.Delete(ctx, p.ID))
			_, err = repo.GetByID(ctx, p.ID)
			assert.ErrorIs(t, err, repositories.ErrNotFound)
		})
	}
}

func TestProductRepositories_MissingProduct(t *testing.T) {
	for name, repo := range productRepos(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			err := repo.Update(ctx, &models.Product{ID: "nope", Name: "Ghost", Slug: "ghost"})
			assert.ErrorIs(t, err, repositories.ErrNotFound)
			assert.ErrorIs(t, repo.Delete(ctx, "nope"), repositories.ErrNotFound)
			_, err = repo.GetBySlug(ctx, "ghost")
			assert.ErrorIs(t, err, repositories.ErrNotFound)
		})
	}
}

func TestMockProductRepository_ReturnsCopies(t *testing.T) {
	repo := repositories.NewMockProductRepository()
	ctx := context.Background()
	p := sampleProduct()
	require.NoError(t, repo.Create(ctx, p))

	p.Variants[0].Attributes[0].Value = "Mutated"
	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Black", got.Variants[0].Attributes[0].Value)
}

func TestOptionRepositories(t *testing.T) {
	repos := map[string]repositories.OptionRepository{
		"gorm": repositories.NewGORMOptionRepository(openSQLite(t)),
		"mock": repositories.NewMockOptionRepository(),
	}
	for name, repo := range repos {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			color := &models.Option{Name: "Color", Values: []string{"Black", "White"}}
			storage := &models.Option{Name: "Storage", Values: []string{"128GB"}}
			require.NoError(t, repo.Create(ctx, storage))
			require.NoError(t, repo.Create(ctx, color))
			assert.Error(t, repo.Create(ctx, &models.Option{Name: "Color", Values: []string{"Red"}}))

			all, err := repo.GetAll(ctx)
			require.NoError(t, err)
			require.Len(t, all, 2)
			assert.Equal(t, "Color", all[0].Name)

			color.Values = append(color.Values, "Blue")
			require.NoError(t, repo.Update(ctx, color))
			got, err := repo.GetByName(ctx, "Color")
			require.NoError(t, err)
			assert.Equal(t, []string{"Black", "White", "Blue"}, got.Values)

			require.NoError(t, repo.Delete(ctx, storage.ID))
			_, err = repo.GetByID(ctx, storage.ID)
			assert.ErrorIs(t, err, repositories.ErrNotFound)
		})
	}
}

func TestAdminRepositories(t *testing.T) {
	repos := map[string]repositories.AdminRepository{
		"gorm": repositories.NewGORMAdminRepository(openSQLite(t)),
		"mock": repositories.NewMockAdminRepository(),
	}
	for name, repo := range repos {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			n, err := repo.Count(ctx)
			require.NoError(t, err)
			assert.Zero(t, n)

			admin := &models.Admin{Username: "root", Email: "root@example.com", Password: "hash"}
			require.NoError(t, repo.Create(ctx, admin))

			n, err = repo.Count(ctx)
			require.NoError(t, err)
			assert.Equal(t, int64(1), n)

			byName, err := repo.GetByUsername(ctx, "root")
			require.NoError(t, err)
			assert.Equal(t, admin.ID, byName.ID)

			_, err = repo.GetByEmail(ctx, "nobody@example.com")
			assert.ErrorIs(t, err, repositories.ErrNotFound)
		})
	}
}

func TestMockCartRepository(t *testing.T) {
	repo := repositories.NewMockCartRepository()
	ctx := context.Background()

	cart := &models.Cart{}
	require.NoError(t, repo.Create(ctx, cart))
	cart.Items = append(cart.Items, models.CartItem{ProductID: "p1", Quantity: 2, LineTotal: 20})
	cart.Total = 20
	require.NoError(t, repo.Save(ctx, cart))

	got, err := repo.GetByID(ctx, cart.ID)
	require.NoError(t, err)
	assert.Len(t, got.Items, 1)
	assert.Equal(t, 20.0, got.Total)

	assert.ErrorIs(t, repo.Save(ctx, &models.Cart{ID: "missing"}), repositories.ErrNotFound)
}
