package inventoryservice_test

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"furnistock/internal/domain"
	apperror "furnistock/internal/errors"
	"furnistock/internal/pkg/logger"
	"furnistock/internal/service/inventoryservice"
)

// MockStockRepository é uma implementação mock da interface StockRepository
type MockStockRepository struct {
	mock.Mock
}

func (m *MockStockRepository) Resolve(ctx context.Context, d domain.Descriptor) (domain.StockItem, bool, error) {
	args := m.Called(ctx, d)
	return args.Get(0).(domain.StockItem), args.Bool(1), args.Error(2)
}

func (m *MockStockRepository) ApplyDelta(ctx context.Context, id int64, delta int) (domain.StockItem, error) {
	args := m.Called(ctx, id, delta)
	return args.Get(0).(domain.StockItem), args.Error(1)
}

func (m *MockStockRepository) FindByID(ctx context.Context, id int64) (domain.StockItem, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.StockItem), args.Error(1)
}

func (m *MockStockRepository) FindByColumn(ctx context.Context, column domain.Column, value interface{}) ([]domain.StockItem, error) {
	args := m.Called(ctx, column, value)
	items, _ := args.Get(0).([]domain.StockItem)
	return items, args.Error(1)
}

func (m *MockStockRepository) FindByPriceRange(ctx context.Context, r domain.PriceRange) ([]domain.StockItem, error) {
	args := m.Called(ctx, r)
	items, _ := args.Get(0).([]domain.StockItem)
	return items, args.Error(1)
}

// MockPublisher registra os eventos publicados.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishStockAdjusted(ctx context.Context, event domain.StockAdjustedEvent) error {
	return m.Called(ctx, event).Error(0)
}

func newService(repo *MockStockRepository, opts inventoryservice.Options) *inventoryservice.Service {
	if opts.RetryBase == 0 {
		opts.RetryBase = time.Millisecond
	}
	return inventoryservice.NewService(repo, logger.NewNopLogger(), opts)
}

func brownWoodTable() domain.Descriptor {
	return domain.Descriptor{
		Kind:  domain.KindDiningTable,
		Color: "brown",
		Table: &domain.TableAttributes{Material: "wood"},
	}
}

func stockRow(id int64, quantity int) domain.StockItem {
	material := "wood"
	return domain.StockItem{
		ID:         id,
		Kind:       domain.KindDiningTable,
		Color:      "brown",
		Dimensions: domain.KindDiningTable.Dimensions(),
		Material:   &material,
		Price:      decimal.RequireFromString("450.00"),
		Quantity:   quantity,
		Version:    1,
	}
}

// TestAdjust_Reserve_Success testa uma reserva bem-sucedida e a publicação do evento.
func TestAdjust_Reserve_Success(t *testing.T) {
	mockRepo := new(MockStockRepository)
	publisher := new(MockPublisher)
	svc := newService(mockRepo, inventoryservice.Options{Publisher: publisher, LowStockThreshold: 8})

	d := brownWoodTable()
	updated := stockRow(7, 7)
	updated.Version = 2

	mockRepo.On("Resolve", mock.Anything, d).Return(stockRow(7, 10), true, nil).Once()
	mockRepo.On("ApplyDelta", mock.Anything, int64(7), -3).Return(updated, nil).Once()
	publisher.On("PublishStockAdjusted", mock.Anything, mock.MatchedBy(func(e domain.StockAdjustedEvent) bool {
		return e.ItemID == 7 && e.Direction == domain.DirectionReserve && e.Quantity == 3 && e.NewQuantity == 7 && e.LowStock
	})).Return(nil).Once()

	result, err := svc.Reserve(context.Background(), d, 3)

	require.NoError(t, err)
	assert.Equal(t, 7, result.Quantity)
	assert.Equal(t, 2, result.Version)
	mockRepo.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

// TestAdjust_Release_AddsToStock testa que Release envia delta positivo.
func TestAdjust_Release_AddsToStock(t *testing.T) {
	mockRepo := new(MockStockRepository)
	svc := newService(mockRepo, inventoryservice.Options{})

	d := brownWoodTable()
	mockRepo.On("Resolve", mock.Anything, d).Return(stockRow(1, 0), true, nil).Once()
	mockRepo.On("ApplyDelta", mock.Anything, int64(1), 5).Return(stockRow(1, 5), nil).Once()

	result, err := svc.Release(context.Background(), d, 5)

	require.NoError(t, err)
	assert.Equal(t, 5, result.Quantity)
	mockRepo.AssertExpectations(t)
}

// TestAdjust_Fail_NotFound testa que descritor sem linha falha com ItemNotFound e não altera nada.
func TestAdjust_Fail_NotFound(t *testing.T) {
	mockRepo := new(MockStockRepository)
	svc := newService(mockRepo, inventoryservice.Options{MaxRetries: 3})

	d := brownWoodTable()
	mockRepo.On("Resolve", mock.Anything, d).Return(domain.StockItem{}, false, nil).Once()

	_, err := svc.Reserve(context.Background(), d, 1)

	require.Error(t, err)
	assert.True(t, apperror.IsReason(err, apperror.ReasonItemNotFound))
	mockRepo.AssertNotCalled(t, "ApplyDelta", mock.Anything, mock.Anything, mock.Anything)
	mockRepo.AssertExpectations(t)
}

// TestAdjust_Fail_InsufficientStock testa que falta de estoque não é re-tentada.
func TestAdjust_Fail_InsufficientStock(t *testing.T) {
	mockRepo := new(MockStockRepository)
	publisher := new(MockPublisher)
	svc := newService(mockRepo, inventoryservice.Options{MaxRetries: 3, Publisher: publisher})

	d := brownWoodTable()
	mockRepo.On("Resolve", mock.Anything, d).Return(stockRow(1, 0), true, nil).Once()
	mockRepo.On("ApplyDelta", mock.Anything, int64(1), -1).
		Return(domain.StockItem{}, apperror.NewInsufficientStockError(0, 1)).Once()

	_, err := svc.Reserve(context.Background(), d, 1)

	require.Error(t, err)
	assert.True(t, apperror.IsReason(err, apperror.ReasonInsufficientStock))
	var conflict *apperror.ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, 0, conflict.Available)
	assert.Equal(t, 1, conflict.Requested)
	mockRepo.AssertExpectations(t)
	publisher.AssertNotCalled(t, "PublishStockAdjusted", mock.Anything, mock.Anything)
}

// TestAdjust_RetriesPersistenceFailure testa que PersistenceFailure é re-tentada e pode ter sucesso.
func TestAdjust_RetriesPersistenceFailure(t *testing.T) {
	mockRepo := new(MockStockRepository)
	svc := newService(mockRepo, inventoryservice.Options{MaxRetries: 2})

	d := brownWoodTable()
	mockRepo.On("Resolve", mock.Anything, d).Return(stockRow(1, 10), true, nil).Twice()
	mockRepo.On("ApplyDelta", mock.Anything, int64(1), -2).
		Return(domain.StockItem{}, apperror.NewDBError("Linha de estoque modificada por outra transação", nil)).Once()
	mockRepo.On("ApplyDelta", mock.Anything, int64(1), -2).Return(stockRow(1, 8), nil).Once()

	result, err := svc.Reserve(context.Background(), d, 2)

	require.NoError(t, err)
	assert.Equal(t, 8, result.Quantity)
	mockRepo.AssertExpectations(t)
}

// TestAdjust_Fail_RetriesExhausted testa que a falha de persistência é devolvida depois do limite.
func TestAdjust_Fail_RetriesExhausted(t *testing.T) {
	mockRepo := new(MockStockRepository)
	svc := newService(mockRepo, inventoryservice.Options{MaxRetries: 2})

	d := brownWoodTable()
	mockRepo.On("Resolve", mock.Anything, d).Return(stockRow(1, 10), true, nil)
	mockRepo.On("ApplyDelta", mock.Anything, int64(1), -2).
		Return(domain.StockItem{}, apperror.NewDBError("Falha ao commitar transação", errors.New("connection reset")))

	_, err := svc.Reserve(context.Background(), d, 2)

	require.Error(t, err)
	assert.True(t, apperror.IsReason(err, apperror.ReasonPersistenceFailure))
	mockRepo.AssertNumberOfCalls(t, "ApplyDelta", 3)
}

// TestAdjust_Fail_InvalidInput testa validações feitas antes de qualquer acesso ao repositório.
func TestAdjust_Fail_InvalidInput(t *testing.T) {
	tests := []struct {
		name   string
		req    domain.AdjustmentRequest
		reason apperror.Reason
	}{
		{"quantidade zero", domain.AdjustmentRequest{Descriptor: brownWoodTable(), Quantity: 0, Direction: domain.DirectionReserve}, apperror.ReasonInvalidQuantity},
		{"quantidade negativa", domain.AdjustmentRequest{Descriptor: brownWoodTable(), Quantity: -4, Direction: domain.DirectionRelease}, apperror.ReasonInvalidQuantity},
		{"direção inválida", domain.AdjustmentRequest{Descriptor: brownWoodTable(), Quantity: 1, Direction: "sideways"}, apperror.ReasonInvalidDirection},
		{"tipo inválido", domain.AdjustmentRequest{Descriptor: domain.Descriptor{Kind: "Sofa"}, Quantity: 1, Direction: domain.DirectionReserve}, apperror.ReasonUnknownVariantKind},
		{"quantidade acima do máximo", domain.AdjustmentRequest{Descriptor: brownWoodTable(), Quantity: domain.MaxQuantity + 1, Direction: domain.DirectionRelease}, apperror.ReasonInvalidQuantity},
		{"mesa sem material", domain.AdjustmentRequest{Descriptor: domain.Descriptor{Kind: domain.KindDiningTable, Color: "brown"}, Quantity: 1, Direction: domain.DirectionReserve}, apperror.ReasonMissingAttribute},
		{"cadeira sem regulagem", domain.AdjustmentRequest{Descriptor: domain.Descriptor{Kind: domain.KindWorkChair, Color: "black"}, Quantity: 1, Direction: domain.DirectionRelease}, apperror.ReasonMissingAttribute},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockStockRepository)
			svc := newService(mockRepo, inventoryservice.Options{})

			_, err := svc.Adjust(context.Background(), tt.req)

			require.Error(t, err)
			assert.Equal(t, tt.reason, apperror.ReasonOf(err))
			mockRepo.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything)
		})
	}
}

// TestRelease_HugeQuantityRejected testa que uma liberação maior que a coluna suporta
// é recusada antes de qualquer acesso ao repositório.
func TestRelease_HugeQuantityRejected(t *testing.T) {
	mockRepo := new(MockStockRepository)
	svc := newService(mockRepo, inventoryservice.Options{})

	_, err := svc.Release(context.Background(), brownWoodTable(), math.MaxInt)

	require.Error(t, err)
	assert.Equal(t, apperror.ReasonInvalidQuantity, apperror.ReasonOf(err))
	assert.False(t, apperror.IsRetryable(err))
	mockRepo.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything)
	mockRepo.AssertNotCalled(t, "ApplyDelta", mock.Anything, mock.Anything, mock.Anything)
}

// TestAdjust_QuantityLimitFromRepositoryIsNotRetried testa que o limite detectado
// dentro da transação volta como INVALID_QUANTITY, sem nova tentativa.
func TestAdjust_QuantityLimitFromRepositoryIsNotRetried(t *testing.T) {
	mockRepo := new(MockStockRepository)
	svc := newService(mockRepo, inventoryservice.Options{})

	d := brownWoodTable()
	mockRepo.On("Resolve", mock.Anything, d).Return(stockRow(1, domain.MaxQuantity), true, nil).Once()
	mockRepo.On("ApplyDelta", mock.Anything, int64(1), 1).
		Return(domain.StockItem{}, apperror.NewQuantityLimitError(domain.MaxQuantity, 1, domain.MaxQuantity)).Once()

	_, err := svc.Release(context.Background(), d, 1)

	require.Error(t, err)
	assert.Equal(t, apperror.ReasonInvalidQuantity, apperror.ReasonOf(err))
	mockRepo.AssertNumberOfCalls(t, "ApplyDelta", 1)
}

// TestAdjust_PublisherFailureKeepsAdjustment testa que falha na publicação não desfaz o ajuste.
func TestAdjust_PublisherFailureKeepsAdjustment(t *testing.T) {
	mockRepo := new(MockStockRepository)
	publisher := new(MockPublisher)
	svc := newService(mockRepo, inventoryservice.Options{Publisher: publisher})

	d := brownWoodTable()
	mockRepo.On("Resolve", mock.Anything, d).Return(stockRow(1, 10), true, nil).Once()
	mockRepo.On("ApplyDelta", mock.Anything, int64(1), -1).Return(stockRow(1, 9), nil).Once()
	publisher.On("PublishStockAdjusted", mock.Anything, mock.Anything).Return(errors.New("broker indisponível")).Once()

	result, err := svc.Reserve(context.Background(), d, 1)

	require.NoError(t, err)
	assert.Equal(t, 9, result.Quantity)
	publisher.AssertExpectations(t)
}

func TestResolve(t *testing.T) {
	mockRepo := new(MockStockRepository)
	svc := newService(mockRepo, inventoryservice.Options{})
	d := brownWoodTable()

	mockRepo.On("Resolve", mock.Anything, d).Return(stockRow(3, 10), true, nil).Once()
	item, found, err := svc.Resolve(context.Background(), d)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, int64(3), item.ID)

	mockRepo.On("Resolve", mock.Anything, d).Return(domain.StockItem{}, false, nil).Once()
	_, found, err = svc.Resolve(context.Background(), d)
	require.NoError(t, err)
	assert.False(t, found)

	mockRepo.On("Resolve", mock.Anything, d).Return(domain.StockItem{}, false, apperror.NewDBError("Falha ao resolver descritor", errors.New("timeout"))).Once()
	_, _, err = svc.Resolve(context.Background(), d)
	assert.True(t, apperror.IsReason(err, apperror.ReasonPersistenceFailure))
}

// TestResolve_MalformedDescriptor testa que descritores sem o grupo de atributos
// da família são recusados igualmente, sem consultar o repositório.
func TestResolve_MalformedDescriptor(t *testing.T) {
	tests := []struct {
		name   string
		d      domain.Descriptor
		reason apperror.Reason
	}{
		{"mesa sem grupo de mesa", domain.Descriptor{Kind: domain.KindDiningTable, Color: "brown"}, apperror.ReasonMissingAttribute},
		{"cadeira sem grupo de cadeira", domain.Descriptor{Kind: domain.KindGamingChair, Color: "black"}, apperror.ReasonMissingAttribute},
		{"mesa com grupo de cadeira", domain.Descriptor{Kind: domain.KindCoffeeTable, Color: "gray", Chair: &domain.ChairAttributes{IsAdjustable: true}}, apperror.ReasonMissingAttribute},
		{"os dois grupos", domain.Descriptor{
			Kind:  domain.KindDiningTable,
			Color: "brown",
			Table: &domain.TableAttributes{Material: "wood"},
			Chair: &domain.ChairAttributes{IsAdjustable: true},
		}, apperror.ReasonInvalidInput},
		{"tipo desconhecido", domain.Descriptor{Kind: "Sofa"}, apperror.ReasonUnknownVariantKind},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockStockRepository)
			svc := newService(mockRepo, inventoryservice.Options{})

			_, found, err := svc.Resolve(context.Background(), tt.d)

			require.Error(t, err)
			assert.False(t, found)
			assert.Equal(t, tt.reason, apperror.ReasonOf(err))
			mockRepo.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything)
		})
	}
}

func TestCheckAvailability(t *testing.T) {
	mockRepo := new(MockStockRepository)
	svc := newService(mockRepo, inventoryservice.Options{})
	d := brownWoodTable()

	mockRepo.On("Resolve", mock.Anything, d).Return(stockRow(1, 4), true, nil)

	ok, err := svc.CheckAvailability(context.Background(), d, 4)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.CheckAvailability(context.Background(), d, 5)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = svc.CheckAvailability(context.Background(), d, 0)
	assert.True(t, apperror.IsReason(err, apperror.ReasonInvalidQuantity))
	mockRepo.AssertNotCalled(t, "ApplyDelta", mock.Anything, mock.Anything, mock.Anything)
}

func TestQueryByColumn(t *testing.T) {
	mockRepo := new(MockStockRepository)
	svc := newService(mockRepo, inventoryservice.Options{})

	mockRepo.On("FindByColumn", mock.Anything, domain.ColumnColor, "brown").
		Return([]domain.StockItem{stockRow(1, 10), stockRow(2, 3)}, nil).Once()
	items, err := svc.QueryByColumn(context.Background(), "color", "brown")
	require.NoError(t, err)
	assert.Len(t, items, 2)

	mockRepo.On("FindByColumn", mock.Anything, domain.ColumnColor, "purple").Return(nil, nil).Once()
	items, err = svc.QueryByColumn(context.Background(), "color", "purple")
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)

	mockRepo.On("FindByColumn", mock.Anything, domain.ColumnIsAdjustable, true).Return([]domain.StockItem{}, nil).Once()
	_, err = svc.QueryByColumn(context.Background(), "isAdjustable", "true")
	require.NoError(t, err)

	_, err = svc.QueryByColumn(context.Background(), "price; DROP TABLE stock_items", "1")
	assert.True(t, apperror.IsReason(err, apperror.ReasonUnknownColumn))

	_, err = svc.QueryByColumn(context.Background(), "quantity", "dez")
	assert.True(t, apperror.IsReason(err, apperror.ReasonInvalidAttributeType))

	mockRepo.AssertExpectations(t)
}

func TestQueryByPriceRange(t *testing.T) {
	mockRepo := new(MockStockRepository)
	svc := newService(mockRepo, inventoryservice.Options{})

	min, max := decimal.RequireFromString("100"), decimal.RequireFromString("500")
	mockRepo.On("FindByPriceRange", mock.Anything, domain.PriceRange{Min: min, Max: max}).
		Return([]domain.StockItem{stockRow(1, 10)}, nil).Once()

	items, err := svc.QueryByPriceRange(context.Background(), min, max)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	_, err = svc.QueryByPriceRange(context.Background(), max, min)
	assert.True(t, apperror.IsReason(err, apperror.ReasonInvalidRange))
	mockRepo.AssertExpectations(t)
}

func TestQueryByMinPrice(t *testing.T) {
	mockRepo := new(MockStockRepository)
	svc := newService(mockRepo, inventoryservice.Options{})

	min := decimal.RequireFromString("500")
	mockRepo.On("FindByPriceRange", mock.Anything, domain.PriceRange{Min: min, NoMax: true}).
		Return([]domain.StockItem{stockRow(4, 2), stockRow(5, 1)}, nil).Once()

	items, err := svc.QueryByMinPrice(context.Background(), min)
	require.NoError(t, err)
	assert.Len(t, items, 2)

	mockRepo.On("FindByPriceRange", mock.Anything, domain.PriceRange{Min: decimal.RequireFromString("10000"), NoMax: true}).
		Return(nil, nil).Once()
	items, err = svc.QueryByMinPrice(context.Background(), decimal.RequireFromString("10000"))
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
	mockRepo.AssertExpectations(t)
}

func TestGetItem(t *testing.T) {
	mockRepo := new(MockStockRepository)
	svc := newService(mockRepo, inventoryservice.Options{})

	mockRepo.On("FindByID", mock.Anything, int64(99)).Return(domain.StockItem{}, apperror.NewNotFoundError("Linha de estoque 99 não existe.")).Once()

	_, err := svc.GetItem(context.Background(), 99)
	assert.True(t, apperror.IsReason(err, apperror.ReasonItemNotFound))
}
