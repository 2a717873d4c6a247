package domain

import (
	"strconv"

	"github.com/shopspring/decimal"

	apperror "furnistock/internal/errors"
)

// Column é o nome de uma coluna da linha de estoque aceita pelas consultas ad-hoc.
// O valor é sempre um nome de coluna real: nunca vem direto da requisição.
type Column string

const (
	ColumnID           Column = "id"
	ColumnKind         Column = "variant_kind"
	ColumnName         Column = "name"
	ColumnDescription  Column = "description"
	ColumnColor        Column = "color"
	ColumnHigh         Column = "high"
	ColumnDepth        Column = "depth"
	ColumnWidth        Column = "width"
	ColumnMaterial     Column = "material"
	ColumnIsAdjustable Column = "is_adjustable"
	ColumnHasArmrest   Column = "has_armrest"
	ColumnPrice        Column = "price"
	ColumnQuantity     Column = "quantity"
)

type columnType int

const (
	columnText columnType = iota
	columnInt
	columnBool
	columnDecimal
	columnKind
)

var columnTypes = map[Column]columnType{
	ColumnID:           columnInt,
	ColumnKind:         columnKind,
	ColumnName:         columnText,
	ColumnDescription:  columnText,
	ColumnColor:        columnText,
	ColumnHigh:         columnInt,
	ColumnDepth:        columnInt,
	ColumnWidth:        columnInt,
	ColumnMaterial:     columnText,
	ColumnIsAdjustable: columnBool,
	ColumnHasArmrest:   columnBool,
	ColumnPrice:        columnDecimal,
	ColumnQuantity:     columnInt,
}

// Aliases em camelCase, iguais aos nomes de atributo da fábrica.
var columnAliases = map[string]Column{
	"variantKind":    ColumnKind,
	AttrIsAdjustable: ColumnIsAdjustable,
	AttrHasArmrest:   ColumnHasArmrest,
}

// ParseColumn valida o nome contra a lista fechada de colunas.
func ParseColumn(name string) (Column, error) {
	if _, ok := columnTypes[Column(name)]; ok {
		return Column(name), nil
	}
	if c, ok := columnAliases[name]; ok {
		return c, nil
	}
	return "", apperror.NewUnknownColumnError(name)
}

// Valid informa se c pertence à lista fechada de colunas.
func (c Column) Valid() bool {
	_, ok := columnTypes[c]
	return ok
}

// ParseValue converte o valor textual para o tipo da coluna.
// Texto é usado como veio, sem normalização de caixa.
func (c Column) ParseValue(raw string) (interface{}, error) {
	switch columnTypes[c] {
	case columnInt:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, apperror.NewInvalidAttributeTypeError(string(c), "inteiro", raw)
		}
		return n, nil
	case columnBool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, apperror.NewInvalidAttributeTypeError(string(c), "booleano", raw)
		}
		return b, nil
	case columnDecimal:
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, apperror.NewInvalidAttributeTypeError(string(c), "decimal", raw)
		}
		return d, nil
	case columnKind:
		k, ok := ParseVariantKind(raw)
		if !ok {
			return nil, apperror.NewUnknownVariantKindError(raw)
		}
		return k, nil
	default:
		return raw, nil
	}
}

// ColumnEquals compara a coluna da linha com um valor já convertido por ParseValue.
// Colunas ausentes para o tipo (ex.: material de cadeira) nunca casam.
func (s StockItem) ColumnEquals(c Column, value interface{}) bool {
	switch c {
	case ColumnID:
		v, ok := value.(int64)
		return ok && s.ID == v
	case ColumnKind:
		v, ok := value.(VariantKind)
		return ok && s.Kind == v
	case ColumnName:
		return value == s.Name
	case ColumnDescription:
		return value == s.Description
	case ColumnColor:
		return value == s.Color
	case ColumnHigh:
		v, ok := value.(int64)
		return ok && int64(s.Dimensions.High) == v
	case ColumnDepth:
		v, ok := value.(int64)
		return ok && int64(s.Dimensions.Depth) == v
	case ColumnWidth:
		v, ok := value.(int64)
		return ok && int64(s.Dimensions.Width) == v
	case ColumnMaterial:
		return s.Material != nil && value == *s.Material
	case ColumnIsAdjustable:
		return s.IsAdjustable != nil && value == *s.IsAdjustable
	case ColumnHasArmrest:
		return s.HasArmrest != nil && value == *s.HasArmrest
	case ColumnPrice:
		v, ok := value.(decimal.Decimal)
		return ok && s.Price.Equal(v)
	case ColumnQuantity:
		v, ok := value.(int64)
		return ok && int64(s.Quantity) == v
	}
	return false
}

// NewPriceRange falha com InvalidRange quando min > max.
func NewPriceRange(min, max decimal.Decimal) (PriceRange, error) {
	if min.GreaterThan(max) {
		return PriceRange{}, apperror.NewInvalidRangeError(min.String(), max.String())
	}
	return PriceRange{Min: min, Max: max}, nil
}

// NewMinPriceRange cria a faixa [min, +inf).
func NewMinPriceRange(min decimal.Decimal) PriceRange {
	return PriceRange{Min: min, NoMax: true}
}
