package inventory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"furnistock/internal/domain"
	apperror "furnistock/internal/errors"
	"furnistock/internal/pkg/logger"
	"furnistock/internal/pkg/middleware"
)

// InventoryService define o contrato que o Handler espera da camada de Serviço.
type InventoryService interface {
	Resolve(ctx context.Context, d domain.Descriptor) (domain.StockItem, bool, error)
	Adjust(ctx context.Context, req domain.AdjustmentRequest) (domain.StockItem, error)
	CheckAvailability(ctx context.Context, d domain.Descriptor, amount int) (bool, error)
	GetItem(ctx context.Context, id int64) (domain.StockItem, error)
	QueryByColumn(ctx context.Context, column, value string) ([]domain.StockItem, error)
	QueryByPriceRange(ctx context.Context, min, max decimal.Decimal) ([]domain.StockItem, error)
	QueryByMinPrice(ctx context.Context, min decimal.Decimal) ([]domain.StockItem, error)
}

// Handler agrupa todos os métodos de Handler de inventário.
type Handler struct {
	Service InventoryService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc InventoryService, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Logger:  log,
	}
}

// variantRequest é o corpo comum: tipo + atributos livres, validados pela fábrica de variantes.
type variantRequest struct {
	Kind       string                 `json:"kind"`
	Attributes map[string]interface{} `json:"attributes"`
}

type availabilityRequest struct {
	variantRequest
	Amount int `json:"amount"`
}

type adjustRequest struct {
	variantRequest
	Quantity  int    `json:"quantity"`
	Direction string `json:"direction"`
}

type resolveResponse struct {
	Found bool              `json:"found"`
	Item  *domain.StockItem `json:"item,omitempty"`
}

type availabilityResponse struct {
	Available bool `json:"available"`
}

type itemsResponse struct {
	Items []domain.StockItem `json:"items"`
	Count int                `json:"count"`
}

// handleServiceResponse processa erros de serviço e envia respostas padronizadas ao cliente.
func (h *Handler) handleServiceResponse(w http.ResponseWriter, r *http.Request, data interface{}, err error, successStatus int) {
	if err == nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(successStatus)
		if data != nil {
			if jsonErr := json.NewEncoder(w).Encode(data); jsonErr != nil {
				h.Logger.Error("Falha ao codificar JSON de resposta", jsonErr)
			}
		}
		return
	}

	// TRATAMENTO DE ERROS
	resp := domain.NewErrorResponse(err)
	fields := map[string]interface{}{
		"path":       r.URL.Path,
		"reason":     resp.Reason,
		"request_id": middleware.GetRequestID(r.Context()),
	}
	if resp.Code >= http.StatusInternalServerError {
		h.Logger.Error(fmt.Sprintf("Erro de Servidor: %s", resp.Category), err)
	} else {
		h.Logger.Debug(fmt.Sprintf("Requisição rejeitada com status %d. Categoria: %s", resp.Code, resp.Category), fields)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.Code)
	json.NewEncoder(w).Encode(resp)
}

// decodeVariant lê o corpo JSON em dst e constrói o descritor validado.
func (h *Handler) decodeVariant(r *http.Request, dst interface{}, v *variantRequest) (domain.Descriptor, error) {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return domain.Descriptor{}, apperror.NewValidationError("Payload inválido. Verifique o formato JSON.")
	}
	return domain.NewDescriptor(v.Kind, v.Attributes)
}

// ResolveHandler lida com POST /v1/inventory/resolve. Variante sem linha responde found=false.
func (h *Handler) ResolveHandler(w http.ResponseWriter, r *http.Request) {
	var body variantRequest
	d, err := h.decodeVariant(r, &body, &body)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	item, found, err := h.Service.Resolve(r.Context(), d)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}
	resp := resolveResponse{Found: found}
	if found {
		resp.Item = &item
	}
	h.handleServiceResponse(w, r, resp, nil, http.StatusOK)
}

// AvailabilityHandler lida com POST /v1/inventory/availability.
func (h *Handler) AvailabilityHandler(w http.ResponseWriter, r *http.Request) {
	var body availabilityRequest
	d, err := h.decodeVariant(r, &body, &body.variantRequest)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	available, err := h.Service.CheckAvailability(r.Context(), d, body.Amount)
	h.handleServiceResponse(w, r, availabilityResponse{Available: available}, err, http.StatusOK)
}

// AdjustHandler lida com POST /v1/inventory/adjust (reserve ou release).
func (h *Handler) AdjustHandler(w http.ResponseWriter, r *http.Request) {
	var body adjustRequest
	d, err := h.decodeVariant(r, &body, &body.variantRequest)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}
	direction, err := domain.ParseDirection(body.Direction)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	h.adjust(w, r, domain.AdjustmentRequest{Descriptor: d, Quantity: body.Quantity, Direction: direction})
}

// RestockHandler lida com POST /v1/inventory/restock: sempre Release, restrito a gerentes pelo roteador.
func (h *Handler) RestockHandler(w http.ResponseWriter, r *http.Request) {
	var body adjustRequest
	d, err := h.decodeVariant(r, &body, &body.variantRequest)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	h.adjust(w, r, domain.AdjustmentRequest{Descriptor: d, Quantity: body.Quantity, Direction: domain.DirectionRelease})
}

func (h *Handler) adjust(w http.ResponseWriter, r *http.Request, req domain.AdjustmentRequest) {
	if claims, ok := middleware.GetUserClaimsFromContext(r.Context()); ok {
		h.Logger.Info("Ajuste de estoque solicitado.", map[string]interface{}{
			"subject":   claims.Subject,
			"role":      claims.Role,
			"kind":      req.Descriptor.Kind,
			"direction": req.Direction,
			"quantity":  req.Quantity,
		})
	}

	item, err := h.Service.Adjust(r.Context(), req)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}
	h.handleServiceResponse(w, r, item, nil, http.StatusOK)
}

// GetItemHandler lida com GET /v1/inventory/items/{id}.
func (h *Handler) GetItemHandler(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError(fmt.Sprintf("id inválido: %q", raw)), http.StatusOK)
		return
	}

	item, err := h.Service.GetItem(r.Context(), id)
	h.handleServiceResponse(w, r, item, err, http.StatusOK)
}

// QueryByColumnHandler lida com GET /v1/inventory/items?column=&value=.
func (h *Handler) QueryByColumnHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if !q.Has("column") {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("parâmetro column é obrigatório"), http.StatusOK)
		return
	}

	items, err := h.Service.QueryByColumn(r.Context(), q.Get("column"), q.Get("value"))
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}
	h.handleServiceResponse(w, r, itemsResponse{Items: items, Count: len(items)}, nil, http.StatusOK)
}

// QueryByPriceRangeHandler lida com GET /v1/inventory/items/price?min=&max=.
// Sem min a faixa começa em 0; sem max não há teto.
func (h *Handler) QueryByPriceRangeHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	min := decimal.Zero
	if raw := q.Get("min"); raw != "" {
		parsed, err := decimal.NewFromString(raw)
		if err != nil {
			h.handleServiceResponse(w, r, nil, apperror.NewInvalidAttributeTypeError("min", "decimal", raw), http.StatusOK)
			return
		}
		min = parsed
	}

	var (
		items []domain.StockItem
		err   error
	)
	if raw := q.Get("max"); raw != "" {
		max, parseErr := decimal.NewFromString(raw)
		if parseErr != nil {
			h.handleServiceResponse(w, r, nil, apperror.NewInvalidAttributeTypeError("max", "decimal", raw), http.StatusOK)
			return
		}
		items, err = h.Service.QueryByPriceRange(r.Context(), min, max)
	} else {
		items, err = h.Service.QueryByMinPrice(r.Context(), min)
	}
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}
	h.handleServiceResponse(w, r, itemsResponse{Items: items, Count: len(items)}, nil, http.StatusOK)
}
