package memoryrepo

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"furnistock/internal/domain"
	"furnistock/internal/errors"
)

// StockRepository guarda as linhas de estoque em memória.
// O mutex serializa o ler-modificar-escrever de ApplyDelta, o mesmo efeito do FOR UPDATE no PostgreSQL.
type StockRepository struct {
	mu     sync.RWMutex
	items  map[int64]*domain.StockItem
	nextID int64
}

func NewStockRepository() *StockRepository {
	return &StockRepository{
		items:  make(map[int64]*domain.StockItem),
		nextID: 1,
	}
}

// Add insere uma linha nova com id gerado e retorna a cópia armazenada.
// Dimensões vazias recebem as canônicas do tipo.
func (r *StockRepository) Add(item domain.StockItem) (domain.StockItem, error) {
	if !item.Kind.Valid() {
		return domain.StockItem{}, errors.NewUnknownVariantKindError(string(item.Kind))
	}
	if item.Quantity < 0 {
		return domain.StockItem{}, errors.NewValidationError("quantidade inicial negativa")
	}
	if item.Dimensions == (domain.Dimensions{}) {
		item.Dimensions = item.Kind.Dimensions()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	item.ID = r.nextID
	r.nextID++
	now := time.Now().UTC()
	item.Version = 1
	item.CreatedAt = now
	item.UpdatedAt = now
	r.items[item.ID] = cloneItem(&item)
	return item, nil
}

func (r *StockRepository) Resolve(_ context.Context, d domain.Descriptor) (domain.StockItem, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, item := range r.sortedLocked() {
		if item.Matches(d) {
			return *cloneItem(item), true, nil
		}
	}
	return domain.StockItem{}, false, nil
}

func (r *StockRepository) ApplyDelta(ctx context.Context, id int64, delta int) (domain.StockItem, error) {
	if err := ctx.Err(); err != nil {
		return domain.StockItem{}, errors.NewDBError("contexto encerrado antes do ajuste", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[id]
	if !ok {
		return domain.StockItem{}, errors.NewNotFoundError(fmt.Sprintf("Linha de estoque %d não existe.", id))
	}
	if delta > 0 && item.Quantity > domain.MaxQuantity-delta {
		return domain.StockItem{}, errors.NewQuantityLimitError(item.Quantity, delta, domain.MaxQuantity)
	}
	newQuantity := item.Quantity + delta
	if newQuantity < 0 {
		return domain.StockItem{}, errors.NewInsufficientStockError(item.Quantity, -delta)
	}
	item.Quantity = newQuantity
	item.Version++
	item.UpdatedAt = time.Now().UTC()
	return *cloneItem(item), nil
}

func (r *StockRepository) FindByID(_ context.Context, id int64) (domain.StockItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	if !ok {
		return domain.StockItem{}, errors.NewNotFoundError(fmt.Sprintf("Linha de estoque %d não existe.", id))
	}
	return *cloneItem(item), nil
}

func (r *StockRepository) FindByColumn(_ context.Context, column domain.Column, value interface{}) ([]domain.StockItem, error) {
	if !column.Valid() {
		return nil, errors.NewUnknownColumnError(string(column))
	}
	return r.filter(func(item *domain.StockItem) bool {
		return item.ColumnEquals(column, value)
	}), nil
}

func (r *StockRepository) FindByPriceRange(_ context.Context, pr domain.PriceRange) ([]domain.StockItem, error) {
	return r.filter(func(item *domain.StockItem) bool {
		return pr.Contains(item.Price)
	}), nil
}

func (r *StockRepository) filter(keep func(*domain.StockItem) bool) []domain.StockItem {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []domain.StockItem{}
	for _, item := range r.sortedLocked() {
		if keep(item) {
			out = append(out, *cloneItem(item))
		}
	}
	return out
}

// sortedLocked devolve as linhas por id crescente. Exige o lock de leitura.
func (r *StockRepository) sortedLocked() []*domain.StockItem {
	out := make([]*domain.StockItem, 0, len(r.items))
	for _, item := range r.items {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func cloneItem(item *domain.StockItem) *domain.StockItem {
	if item == nil {
		return nil
	}
	clone := *item
	if item.Material != nil {
		m := *item.Material
		clone.Material = &m
	}
	if item.IsAdjustable != nil {
		a := *item.IsAdjustable
		clone.IsAdjustable = &a
	}
	if item.HasArmrest != nil {
		h := *item.HasArmrest
		clone.HasArmrest = &h
	}
	return &clone
}
