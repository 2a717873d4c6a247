package inventoryservice

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/shopspring/decimal"

	"furnistock/internal/domain"
	apperror "furnistock/internal/errors"
	"furnistock/internal/pkg/logger"
	"furnistock/internal/pkg/metrics"
)

// StockRepository define o contrato que o Serviço de Inventário espera da camada de Persistência.
type StockRepository interface {
	// Resolve devolve a linha de menor id que casa com o descritor; found=false não é erro.
	Resolve(ctx context.Context, d domain.Descriptor) (item domain.StockItem, found bool, err error)
	// ApplyDelta altera a quantidade numa transação de uma única linha; nunca deixa quantity < 0.
	ApplyDelta(ctx context.Context, id int64, delta int) (domain.StockItem, error)
	FindByID(ctx context.Context, id int64) (domain.StockItem, error)
	FindByColumn(ctx context.Context, column domain.Column, value interface{}) ([]domain.StockItem, error)
	FindByPriceRange(ctx context.Context, r domain.PriceRange) ([]domain.StockItem, error)
}

// EventPublisher recebe os ajustes já confirmados.
type EventPublisher interface {
	PublishStockAdjusted(ctx context.Context, event domain.StockAdjustedEvent) error
}

// Options configura o serviço. Valores zero recebem padrões em NewService.
type Options struct {
	// MaxRetries limita as re-tentativas automáticas de PersistenceFailure (0 desliga).
	MaxRetries uint64
	// RetryBase é o primeiro intervalo do backoff exponencial.
	RetryBase time.Duration
	// LowStockThreshold marca o evento como low_stock quando a nova quantidade fica <= limite.
	LowStockThreshold int
	Publisher         EventPublisher
	Metrics           metrics.Recorder
}

// Service é o objeto de inventário criado uma vez no main.go e injetado em quem precisar.
// Não guarda estado entre chamadas: toda operação relê o repositório.
type Service struct {
	repo       StockRepository
	logger     logger.Logger
	publisher  EventPublisher
	metrics    metrics.Recorder
	maxRetries uint64
	retryBase  time.Duration
	lowStock   int
}

// NewService cria e retorna uma nova instância do Serviço de Inventário.
func NewService(repo StockRepository, log logger.Logger, opts Options) *Service {
	if opts.RetryBase <= 0 {
		opts.RetryBase = 50 * time.Millisecond
	}
	if opts.Publisher == nil {
		opts.Publisher = nopPublisher{}
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.Nop{}
	}
	return &Service{
		repo:       repo,
		logger:     log,
		publisher:  opts.Publisher,
		metrics:    opts.Metrics,
		maxRetries: opts.MaxRetries,
		retryBase:  opts.RetryBase,
		lowStock:   opts.LowStockThreshold,
	}
}

// Resolve encontra a linha de estoque do descritor. A ausência é um resultado normal (found=false).
func (s *Service) Resolve(ctx context.Context, d domain.Descriptor) (domain.StockItem, bool, error) {
	if err := d.Validate(); err != nil {
		return domain.StockItem{}, false, err
	}

	item, found, err := s.repo.Resolve(ctx, d)
	if err != nil {
		s.metrics.QueryCompleted("resolve", outcomeOf(err), 0)
		return domain.StockItem{}, false, err
	}
	if !found {
		s.metrics.QueryCompleted("resolve", "not_found", 0)
		return domain.StockItem{}, false, nil
	}
	s.metrics.QueryCompleted("resolve", "success", 1)
	return item, true, nil
}

// Reserve diminui o estoque da variante (carrinho, checkout).
func (s *Service) Reserve(ctx context.Context, d domain.Descriptor, quantity int) (domain.StockItem, error) {
	return s.Adjust(ctx, domain.AdjustmentRequest{Descriptor: d, Quantity: quantity, Direction: domain.DirectionReserve})
}

// Release aumenta o estoque da variante (cancelamento, reposição). Não há limite superior.
func (s *Service) Release(ctx context.Context, d domain.Descriptor, quantity int) (domain.StockItem, error) {
	return s.Adjust(ctx, domain.AdjustmentRequest{Descriptor: d, Quantity: quantity, Direction: domain.DirectionRelease})
}

// Adjust resolve o descritor e aplica o ajuste numa transação de uma única linha.
//
// Falhas: ItemNotFound, InsufficientStock (nunca re-tentadas) e PersistenceFailure,
// re-tentada até MaxRetries vezes com backoff exponencial. Em qualquer falha a linha fica inalterada.
func (s *Service) Adjust(ctx context.Context, req domain.AdjustmentRequest) (domain.StockItem, error) {
	if err := validateAdjustment(req); err != nil {
		return domain.StockItem{}, err
	}

	direction := string(req.Direction)
	log := s.logger.With(map[string]interface{}{
		"kind":      req.Descriptor.Kind,
		"color":     req.Descriptor.Color,
		"direction": direction,
		"quantity":  req.Quantity,
	})
	log.Debug("Iniciando ajuste de estoque no serviço.", nil)

	start := time.Now()
	var (
		adjusted domain.StockItem
		attempt  int
	)
	backoff := retry.WithMaxRetries(s.maxRetries, retry.NewExponential(s.retryBase))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		if attempt > 1 {
			s.metrics.AdjustmentRetried(direction)
			log.Warn("Re-tentando ajuste após falha de persistência.", map[string]interface{}{"attempt": attempt})
		}

		item, err := s.adjustOnce(ctx, req)
		if err != nil {
			if apperror.IsRetryable(err) {
				return retry.RetryableError(err)
			}
			return err
		}
		adjusted = item
		return nil
	})
	if err != nil {
		if _, typed := err.(apperror.AppError); !typed {
			// ctx cancelado entre tentativas: a última transação já foi desfeita.
			err = apperror.NewDBError("Ajuste de estoque interrompido", err)
		}
		s.metrics.AdjustmentCompleted(direction, outcomeOf(err), time.Since(start))
		if apperror.IsRetryable(err) {
			log.Error("Falha de persistência ao ajustar estoque.", err)
		} else {
			log.Info("Ajuste de estoque rejeitado.", map[string]interface{}{"reason": apperror.ReasonOf(err)})
		}
		return domain.StockItem{}, err
	}

	s.metrics.AdjustmentCompleted(direction, "success", time.Since(start))
	log.Info("Estoque ajustado com sucesso.", map[string]interface{}{
		"item_id":      adjusted.ID,
		"new_quantity": adjusted.Quantity,
		"attempts":     attempt,
	})
	s.publish(ctx, req, adjusted)
	return adjusted, nil
}

func (s *Service) adjustOnce(ctx context.Context, req domain.AdjustmentRequest) (domain.StockItem, error) {
	item, found, err := s.repo.Resolve(ctx, req.Descriptor)
	if err != nil {
		return domain.StockItem{}, err
	}
	if !found {
		return domain.StockItem{}, apperror.NewNotFoundError(fmt.Sprintf(
			"nenhuma linha de estoque para %s cor %q", req.Descriptor.Kind, req.Descriptor.Color))
	}
	return s.repo.ApplyDelta(ctx, item.ID, req.Delta())
}

// publish não transforma um ajuste confirmado em falha: erros só são registrados.
func (s *Service) publish(ctx context.Context, req domain.AdjustmentRequest, item domain.StockItem) {
	event := domain.StockAdjustedEvent{
		ItemID:      item.ID,
		Kind:        item.Kind,
		Direction:   req.Direction,
		Quantity:    req.Quantity,
		NewQuantity: item.Quantity,
		LowStock:    item.Quantity <= s.lowStock,
		OccurredAt:  time.Now().UTC(),
	}
	if err := s.publisher.PublishStockAdjusted(ctx, event); err != nil {
		s.logger.Error("Falha ao publicar evento de ajuste; o ajuste permanece confirmado.", err)
	}
}

// CheckAvailability informa se a variante tem pelo menos amount unidades. Somente leitura.
func (s *Service) CheckAvailability(ctx context.Context, d domain.Descriptor, amount int) (bool, error) {
	if amount <= 0 {
		return false, apperror.NewInvalidQuantityError(amount)
	}
	item, found, err := s.Resolve(ctx, d)
	if err != nil || !found {
		return false, err
	}
	return item.Quantity >= amount, nil
}

// GetItem busca uma linha pelo id.
func (s *Service) GetItem(ctx context.Context, id int64) (domain.StockItem, error) {
	return s.repo.FindByID(ctx, id)
}

// QueryByColumn retorna as linhas cuja coluna é exatamente igual ao valor.
// Coluna fora da lista fechada falha com UnknownColumn; nenhuma linha é uma lista vazia.
func (s *Service) QueryByColumn(ctx context.Context, columnName, value string) ([]domain.StockItem, error) {
	column, err := domain.ParseColumn(columnName)
	if err != nil {
		s.metrics.QueryCompleted("by_column", outcomeOf(err), 0)
		return nil, err
	}
	typed, err := column.ParseValue(value)
	if err != nil {
		s.metrics.QueryCompleted("by_column", outcomeOf(err), 0)
		return nil, err
	}

	items, err := s.repo.FindByColumn(ctx, column, typed)
	if err != nil {
		s.metrics.QueryCompleted("by_column", outcomeOf(err), 0)
		return nil, err
	}
	s.metrics.QueryCompleted("by_column", "success", len(items))
	return nonNil(items), nil
}

// QueryByPriceRange retorna as linhas com min <= price <= max; min > max falha com InvalidRange.
func (s *Service) QueryByPriceRange(ctx context.Context, min, max decimal.Decimal) ([]domain.StockItem, error) {
	pr, err := domain.NewPriceRange(min, max)
	if err != nil {
		s.metrics.QueryCompleted("by_price_range", outcomeOf(err), 0)
		return nil, err
	}

	items, err := s.repo.FindByPriceRange(ctx, pr)
	if err != nil {
		s.metrics.QueryCompleted("by_price_range", outcomeOf(err), 0)
		return nil, err
	}
	s.metrics.QueryCompleted("by_price_range", "success", len(items))
	return nonNil(items), nil
}

// QueryByMinPrice retorna as linhas com price >= min, sem limite superior.
func (s *Service) QueryByMinPrice(ctx context.Context, min decimal.Decimal) ([]domain.StockItem, error) {
	items, err := s.repo.FindByPriceRange(ctx, domain.NewMinPriceRange(min))
	if err != nil {
		s.metrics.QueryCompleted("by_price_range", outcomeOf(err), 0)
		return nil, err
	}
	s.metrics.QueryCompleted("by_price_range", "success", len(items))
	return nonNil(items), nil
}

func validateAdjustment(req domain.AdjustmentRequest) error {
	if err := req.Descriptor.Validate(); err != nil {
		return err
	}
	if req.Quantity <= 0 || req.Quantity > domain.MaxQuantity {
		return apperror.NewInvalidQuantityError(req.Quantity)
	}
	if req.Direction != domain.DirectionReserve && req.Direction != domain.DirectionRelease {
		return apperror.NewInvalidDirectionError(string(req.Direction))
	}
	return nil
}

func outcomeOf(err error) string {
	return strings.ToLower(string(apperror.ReasonOf(err)))
}

func nonNil(items []domain.StockItem) []domain.StockItem {
	if items == nil {
		return []domain.StockItem{}
	}
	return items
}

type nopPublisher struct{}

func (nopPublisher) PublishStockAdjusted(context.Context, domain.StockAdjustedEvent) error { return nil }
