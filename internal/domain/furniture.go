package domain

import (
	"math"
	"strings"

	apperror "furnistock/internal/errors"
)

// VariantKind identifica uma das cinco categorias de móveis do catálogo.
// O conjunto é fechado: não existe registro dinâmico de novos tipos.
type VariantKind string

const (
	KindDiningTable VariantKind = "DiningTable"
	KindWorkDesk    VariantKind = "WorkDesk"
	KindCoffeeTable VariantKind = "CoffeeTable"
	KindWorkChair   VariantKind = "WorkChair"
	KindGamingChair VariantKind = "GamingChair"
)

// Family agrupa os tipos que compartilham o mesmo conjunto de atributos.
type Family int

const (
	FamilyTable Family = iota + 1 // color + material
	FamilyChair                   // color + isAdjustable + hasArmrest
)

// Nomes dos atributos aceitos pela fábrica de variantes.
const (
	AttrColor        = "color"
	AttrMaterial     = "material"
	AttrIsAdjustable = "isAdjustable"
	AttrHasArmrest   = "hasArmrest"
)

// Dimensions são fixas por tipo (alto x profundidade x largura, em cm).
// Não são escolhidas pelo cliente; entram apenas no filtro de resolução.
type Dimensions struct {
	High  int `json:"high"`
	Depth int `json:"depth"`
	Width int `json:"width"`
}

type kindInfo struct {
	family     Family
	dimensions Dimensions
	legacyName string // grafia UPPER_SNAKE aceita pela fábrica
}

var kindTable = map[VariantKind]kindInfo{
	KindDiningTable: {family: FamilyTable, dimensions: Dimensions{High: 100, Depth: 50, Width: 60}, legacyName: "DINING_TABLE"},
	KindWorkDesk:    {family: FamilyTable, dimensions: Dimensions{High: 120, Depth: 55, Width: 65}, legacyName: "WORK_DESK"},
	KindCoffeeTable: {family: FamilyTable, dimensions: Dimensions{High: 130, Depth: 60, Width: 70}, legacyName: "COFFEE_TABLE"},
	KindWorkChair:   {family: FamilyChair, dimensions: Dimensions{High: 140, Depth: 65, Width: 75}, legacyName: "WORK_CHAIR"},
	KindGamingChair: {family: FamilyChair, dimensions: Dimensions{High: 150, Depth: 70, Width: 80}, legacyName: "GAMING_CHAIR"},
}

var requiredAttributes = map[Family][]string{
	FamilyTable: {AttrColor, AttrMaterial},
	FamilyChair: {AttrColor, AttrIsAdjustable, AttrHasArmrest},
}

// Kinds retorna os tipos suportados em ordem estável.
func Kinds() []VariantKind {
	return []VariantKind{KindDiningTable, KindWorkDesk, KindCoffeeTable, KindWorkChair, KindGamingChair}
}

// ParseVariantKind aceita o nome PascalCase ("DiningTable") ou a grafia UPPER_SNAKE ("DINING_TABLE").
// Qualquer outra grafia é rejeitada.
func ParseVariantKind(name string) (VariantKind, bool) {
	if _, ok := kindTable[VariantKind(name)]; ok {
		return VariantKind(name), true
	}
	for kind, info := range kindTable {
		if info.legacyName == name {
			return kind, true
		}
	}
	return "", false
}

func (k VariantKind) Valid() bool {
	_, ok := kindTable[k]
	return ok
}

func (k VariantKind) Family() Family {
	return kindTable[k].family
}

// Dimensions retorna as dimensões canônicas do tipo.
func (k VariantKind) Dimensions() Dimensions {
	return kindTable[k].dimensions
}

// RequiredAttributes retorna o conjunto de atributos que distingue as linhas de estoque do tipo.
func (k VariantKind) RequiredAttributes() []string {
	attrs := requiredAttributes[k.Family()]
	out := make([]string, len(attrs))
	copy(out, attrs)
	return out
}

// TableAttributes são os atributos de tipos de mesa (DiningTable, WorkDesk, CoffeeTable).
type TableAttributes struct {
	Material string `json:"material"`
}

// ChairAttributes são os atributos de tipos de cadeira (WorkChair, GamingChair).
type ChairAttributes struct {
	IsAdjustable bool `json:"isAdjustable"`
	HasArmrest   bool `json:"hasArmrest"`
}

// Descriptor é a descrição validada de uma variante pedida, produzida por NewDescriptor.
// Exatamente um de Table/Chair é preenchido, conforme a família do tipo.
// Nunca carrega preço nem quantidade: esses pertencem à linha de estoque.
type Descriptor struct {
	Kind  VariantKind      `json:"kind"`
	Color string           `json:"color"`
	Table *TableAttributes `json:"table,omitempty"`
	Chair *ChairAttributes `json:"chair,omitempty"`
}

// Validate confere que o tipo existe e que o grupo de atributos preenchido é o da família do tipo.
// Descritores vindos de NewDescriptor sempre passam.
func (d Descriptor) Validate() error {
	if !d.Kind.Valid() {
		return apperror.NewUnknownVariantKindError(string(d.Kind))
	}
	switch d.Kind.Family() {
	case FamilyTable:
		if d.Table == nil {
			return apperror.NewMissingAttributeError(string(d.Kind), AttrMaterial)
		}
	case FamilyChair:
		if d.Chair == nil {
			return apperror.NewMissingAttributeError(string(d.Kind), AttrIsAdjustable)
		}
	}
	if d.Table != nil && d.Chair != nil {
		return apperror.NewValidationError("descritor com atributos de mesa e de cadeira")
	}
	return nil
}

// Dimensions retorna as dimensões canônicas usadas no filtro de resolução.
func (d Descriptor) Dimensions() Dimensions {
	return d.Kind.Dimensions()
}

// Attributes retorna exatamente o conjunto de atributos obrigatórios do tipo.
func (d Descriptor) Attributes() map[string]interface{} {
	attrs := map[string]interface{}{AttrColor: d.Color}
	switch {
	case d.Table != nil:
		attrs[AttrMaterial] = d.Table.Material
	case d.Chair != nil:
		attrs[AttrIsAdjustable] = d.Chair.IsAdjustable
		attrs[AttrHasArmrest] = d.Chair.HasArmrest
	}
	return attrs
}

// MaxQuantity é o maior valor da coluna quantity (INTEGER no PostgreSQL).
const MaxQuantity = math.MaxInt32

// Direction é o sentido do ajuste de quantidade.
type Direction string

const (
	DirectionReserve Direction = "reserve" // diminui o estoque (carrinho, checkout)
	DirectionRelease Direction = "release" // aumenta o estoque (cancelamento, reposição)
)

// ParseDirection aceita "reserve" ou "release" (sem diferenciar maiúsculas).
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(strings.ToLower(strings.TrimSpace(s))); d {
	case DirectionReserve, DirectionRelease:
		return d, nil
	}
	return "", apperror.NewInvalidDirectionError(s)
}

// Sign retorna -1 para Reserve e +1 para Release.
func (d Direction) Sign() int {
	if d == DirectionReserve {
		return -1
	}
	return 1
}

// AdjustmentRequest é consumida pelo ajustador de estoque e descartada em seguida.
type AdjustmentRequest struct {
	Descriptor Descriptor
	Quantity   int
	Direction  Direction
}

// Delta é a variação com sinal aplicada à coluna quantity.
func (r AdjustmentRequest) Delta() int {
	return r.Direction.Sign() * r.Quantity
}
