package memoryrepo

import (
	"fmt"

	"github.com/shopspring/decimal"

	"furnistock/internal/domain"
)

// Mesmo catálogo semeado pela migração 00002_seed_catalog.sql.
var (
	tableCatalog = map[domain.VariantKind]struct {
		colors    []string
		materials map[string]string // material -> preço
	}{
		domain.KindDiningTable: {colors: []string{"brown", "gray"}, materials: map[string]string{"wood": "450.00", "metal": "520.00"}},
		domain.KindWorkDesk:    {colors: []string{"black", "white"}, materials: map[string]string{"wood": "380.00", "glass": "410.00"}},
		domain.KindCoffeeTable: {colors: []string{"gray", "red"}, materials: map[string]string{"glass": "220.00", "plastic": "95.00"}},
	}
	chairCatalog = map[domain.VariantKind]struct {
		colors    []string
		basePrice string
	}{
		domain.KindWorkChair:   {colors: []string{"red", "white"}, basePrice: "150.00"},
		domain.KindGamingChair: {colors: []string{"black", "blue"}, basePrice: "260.00"},
	}
)

// SeedCatalog carrega o catálogo padrão com a quantidade inicial informada em cada linha.
// Usado quando STORE_DRIVER=memory.
func SeedCatalog(r *StockRepository, quantity int) error {
	for _, kind := range domain.Kinds() {
		switch kind.Family() {
		case domain.FamilyTable:
			entry := tableCatalog[kind]
			for _, color := range entry.colors {
				for _, material := range []string{"wood", "metal", "glass", "plastic"} {
					price, ok := entry.materials[material]
					if !ok {
						continue
					}
					m := material
					if _, err := r.Add(domain.StockItem{
						Kind:        kind,
						Name:        fmt.Sprintf("%s %s %s", kind, color, material),
						Description: fmt.Sprintf("%s em %s, cor %s", kind, material, color),
						Color:       color,
						Material:    &m,
						Price:       decimal.RequireFromString(price),
						Quantity:    quantity,
					}); err != nil {
						return err
					}
				}
			}
		case domain.FamilyChair:
			entry := chairCatalog[kind]
			base := decimal.RequireFromString(entry.basePrice)
			for _, color := range entry.colors {
				for _, adjustable := range []bool{true, false} {
					for _, armrest := range []bool{true, false} {
						a, h := adjustable, armrest
						price := base
						if a {
							price = price.Add(decimal.NewFromInt(40))
						}
						if h {
							price = price.Add(decimal.NewFromInt(25))
						}
						if _, err := r.Add(domain.StockItem{
							Kind:         kind,
							Name:         fmt.Sprintf("%s %s", kind, color),
							Description:  fmt.Sprintf("%s cor %s, ajustável=%t, braços=%t", kind, color, a, h),
							Color:        color,
							IsAdjustable: &a,
							HasArmrest:   &h,
							Price:        price,
							Quantity:     quantity,
						}); err != nil {
							return err
						}
					}
				}
			}
		}
	}
	return nil
}
