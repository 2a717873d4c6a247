package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockItem é a linha persistida que representa uma configuração comprável (tipo + atributos + preço)
// e a quantidade em mãos. Invariante: Quantity >= 0.
//
// Material só existe para mesas; IsAdjustable e HasArmrest só existem para cadeiras.
type StockItem struct {
	ID           int64           `json:"id"`
	Kind         VariantKind     `json:"variant_kind"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Color        string          `json:"color"`
	Dimensions   Dimensions      `json:"dimensions"`
	Material     *string         `json:"material,omitempty"`
	IsAdjustable *bool           `json:"is_adjustable,omitempty"`
	HasArmrest   *bool           `json:"has_armrest,omitempty"`
	Price        decimal.Decimal `json:"price"`
	Quantity     int             `json:"quantity"`
	Version      int             `json:"version"` // Para Controle de Concorrência Otimista (OCC)
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// Matches aplica a regra de resolução: mesmo tipo, dimensões canônicas do tipo
// e igualdade exata em cada atributo obrigatório.
func (s StockItem) Matches(d Descriptor) bool {
	if s.Kind != d.Kind || s.Color != d.Color || s.Dimensions != d.Dimensions() {
		return false
	}
	switch {
	case d.Table != nil:
		return s.Material != nil && *s.Material == d.Table.Material
	case d.Chair != nil:
		return s.IsAdjustable != nil && *s.IsAdjustable == d.Chair.IsAdjustable &&
			s.HasArmrest != nil && *s.HasArmrest == d.Chair.HasArmrest
	}
	return false
}

// PriceRange é uma faixa fechada [Min, Max] validada por NewPriceRange,
// ou aberta acima (NoMax) quando criada por NewMinPriceRange.
type PriceRange struct {
	Min   decimal.Decimal
	Max   decimal.Decimal
	NoMax bool
}

// Contains informa se min <= price <= max.
func (r PriceRange) Contains(price decimal.Decimal) bool {
	return price.GreaterThanOrEqual(r.Min) && (r.NoMax || price.LessThanOrEqual(r.Max))
}

// StockAdjustedEvent é emitido depois que um ajuste foi confirmado (commit).
type StockAdjustedEvent struct {
	ItemID      int64       `json:"item_id"`
	Kind        VariantKind `json:"variant_kind"`
	Direction   Direction   `json:"direction"`
	Quantity    int         `json:"quantity"`
	NewQuantity int         `json:"new_quantity"`
	LowStock    bool        `json:"low_stock"`
	OccurredAt  time.Time   `json:"occurred_at"`
}
