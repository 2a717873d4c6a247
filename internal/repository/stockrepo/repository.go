package stockrepo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"furnistock/internal/domain"
	"furnistock/internal/errors"
	"furnistock/internal/pkg/logger"
)

const selectColumns = `
        SELECT id, variant_kind, name, description, color, high, depth, width,
               material, is_adjustable, has_armrest, price, quantity, version, created_at, updated_at
        FROM stock_items`

// StockRepository implementa o contrato de persistência do serviço de inventário sobre PostgreSQL.
type StockRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewStockRepository cria e retorna uma nova instância do Repositório de Estoque.
func NewStockRepository(db *sql.DB, dbTimeout time.Duration, logger logger.Logger) *StockRepository {
	return &StockRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanItem(row rowScanner) (domain.StockItem, error) {
	var (
		item       domain.StockItem
		kind       string
		material   sql.NullString
		adjustable sql.NullBool
		armrest    sql.NullBool
	)
	err := row.Scan(
		&item.ID, &kind, &item.Name, &item.Description, &item.Color,
		&item.Dimensions.High, &item.Dimensions.Depth, &item.Dimensions.Width,
		&material, &adjustable, &armrest, &item.Price, &item.Quantity, &item.Version,
		&item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return domain.StockItem{}, err
	}
	item.Kind = domain.VariantKind(kind)
	if material.Valid {
		item.Material = &material.String
	}
	if adjustable.Valid {
		item.IsAdjustable = &adjustable.Bool
	}
	if armrest.Valid {
		item.HasArmrest = &armrest.Bool
	}
	return item, nil
}

// Resolve busca a linha que casa exatamente com o descritor.
// Quando mais de uma linha casa, retorna a de menor id e registra o conflito.
func (r *StockRepository) Resolve(ctx context.Context, d domain.Descriptor) (domain.StockItem, bool, error) {
	r.logger.Debug("Resolvendo descritor no repositório.", map[string]interface{}{"kind": d.Kind, "color": d.Color})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	dims := d.Dimensions()
	query := selectColumns + `
        WHERE variant_kind = $1 AND color = $2 AND high = $3 AND depth = $4 AND width = $5`
	args := []interface{}{string(d.Kind), d.Color, dims.High, dims.Depth, dims.Width}

	switch {
	case d.Table != nil:
		query += ` AND material = $6`
		args = append(args, d.Table.Material)
	case d.Chair != nil:
		query += ` AND is_adjustable = $6 AND has_armrest = $7`
		args = append(args, d.Chair.IsAdjustable, d.Chair.HasArmrest)
	default:
		return domain.StockItem{}, false, errors.NewValidationError("descritor sem atributos de família")
	}
	// LIMIT 2 basta para detectar ambiguidade.
	query += ` ORDER BY id ASC LIMIT 2`

	rows, err := r.DB.QueryContext(ctxTimeout, query, args...)
	if err != nil {
		r.logger.Error("Falha ao resolver descritor no DB.", err)
		return domain.StockItem{}, false, errors.NewDBError("Falha ao resolver descritor", err)
	}
	defer rows.Close()

	var matches []domain.StockItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			r.logger.Error("Falha ao ler linha de estoque.", err)
			return domain.StockItem{}, false, errors.NewDBError("Falha ao ler linha de estoque", err)
		}
		matches = append(matches, item)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("Falha ao iterar linhas de estoque.", err)
		return domain.StockItem{}, false, errors.NewDBError("Falha ao iterar linhas de estoque", err)
	}

	if len(matches) == 0 {
		r.logger.Info("Nenhuma linha de estoque para o descritor.", map[string]interface{}{"kind": d.Kind, "color": d.Color})
		return domain.StockItem{}, false, nil
	}
	if len(matches) > 1 {
		r.logger.Warn("Descritor ambíguo: mais de uma linha casa, usando a de menor id.", map[string]interface{}{
			"kind":        d.Kind,
			"color":       d.Color,
			"chosen_id":   matches[0].ID,
			"shadowed_id": matches[1].ID,
		})
	}
	return matches[0], true, nil
}

// ApplyDelta aplica um ajuste à quantidade dentro de uma transação, com a linha bloqueada
// (SELECT ... FOR UPDATE) e checagem de versão (OCC). Qualquer falha desfaz a transação.
func (r *StockRepository) ApplyDelta(ctx context.Context, id int64, delta int) (domain.StockItem, error) {
	r.logger.Debug("Iniciando atualização de estoque no repositório.", map[string]interface{}{"item_id": id, "delta": delta})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	tx, err := r.DB.BeginTx(ctxTimeout, nil)
	if err != nil {
		r.logger.Error("Falha ao iniciar transação para atualização de estoque.", err)
		return domain.StockItem{}, errors.NewDBError("Falha ao iniciar transação", err)
	}
	defer tx.Rollback() // sem efeito depois do Commit

	// 1. Ler a linha bloqueando-a até o fim da transação
	current, err := scanItem(tx.QueryRowContext(ctxTimeout, selectColumns+` WHERE id = $1 FOR UPDATE`, id))
	if err == sql.ErrNoRows {
		return domain.StockItem{}, errors.NewNotFoundError(fmt.Sprintf("Linha de estoque %d não existe.", id))
	}
	if err != nil {
		r.logger.Error("Falha ao selecionar linha de estoque para atualização.", err)
		return domain.StockItem{}, errors.NewDBError("Falha ao buscar estoque para atualização", err)
	}

	// 2. Aplicar o ajuste e verificar se a quantidade resultará em negativo ou além do INTEGER
	if delta > 0 && current.Quantity > domain.MaxQuantity-delta {
		return domain.StockItem{}, errors.NewQuantityLimitError(current.Quantity, delta, domain.MaxQuantity)
	}
	newQuantity := current.Quantity + delta
	if newQuantity < 0 {
		r.logger.Warn("Ajuste resultaria em quantidade negativa.", map[string]interface{}{
			"item_id":          id,
			"current_quantity": current.Quantity,
			"delta":            delta,
		})
		return domain.StockItem{}, errors.NewInsufficientStockError(current.Quantity, -delta)
	}

	// 3. Atualizar com OCC
	now := time.Now().UTC()
	result, err := tx.ExecContext(ctxTimeout, `
        UPDATE stock_items
        SET quantity = $1, version = $2, updated_at = $3
        WHERE id = $4 AND version = $5`,
		newQuantity, current.Version+1, now, id, current.Version,
	)
	if err != nil {
		r.logger.Error("Falha ao atualizar linha de estoque.", err)
		return domain.StockItem{}, errors.NewDBError("Falha ao atualizar estoque", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		r.logger.Error("Falha ao verificar linhas afetadas após atualização de estoque.", err)
		return domain.StockItem{}, errors.NewDBError("Falha ao verificar linhas afetadas", err)
	}
	if rowsAffected == 0 {
		r.logger.Warn("Versão do registro desatualizada (OCC).", map[string]interface{}{"item_id": id, "expected_version": current.Version})
		return domain.StockItem{}, errors.NewDBError("Linha de estoque modificada por outra transação", nil)
	}

	// 4. Commitar a transação
	if err := tx.Commit(); err != nil {
		r.logger.Error("Falha ao commitar transação de atualização de estoque.", err)
		return domain.StockItem{}, errors.NewDBError("Falha ao commitar transação", err)
	}

	current.Quantity = newQuantity
	current.Version++
	current.UpdatedAt = now
	r.logger.Info("Nível de estoque atualizado com sucesso.", map[string]interface{}{
		"item_id":      id,
		"new_quantity": newQuantity,
		"new_version":  current.Version,
	})
	return current, nil
}

// FindByID busca uma linha de estoque pelo id.
func (r *StockRepository) FindByID(ctx context.Context, id int64) (domain.StockItem, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	item, err := scanItem(r.DB.QueryRowContext(ctxTimeout, selectColumns+` WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return domain.StockItem{}, errors.NewNotFoundError(fmt.Sprintf("Linha de estoque %d não existe.", id))
	}
	if err != nil {
		r.logger.Error("Falha ao buscar linha de estoque por id.", err)
		return domain.StockItem{}, errors.NewDBError("Falha ao buscar linha de estoque", err)
	}
	return item, nil
}

// FindByColumn retorna as linhas cuja coluna é exatamente igual ao valor.
// O nome da coluna só entra na SQL depois de validado contra a lista fechada.
func (r *StockRepository) FindByColumn(ctx context.Context, column domain.Column, value interface{}) ([]domain.StockItem, error) {
	if !column.Valid() {
		return nil, errors.NewUnknownColumnError(string(column))
	}
	if k, ok := value.(domain.VariantKind); ok {
		value = string(k)
	}
	query := selectColumns + ` WHERE ` + string(column) + ` = $1 ORDER BY id ASC`
	return r.list(ctx, "FindByColumn", query, value)
}

// FindByPriceRange retorna as linhas com min <= price <= max (sem teto quando NoMax).
func (r *StockRepository) FindByPriceRange(ctx context.Context, pr domain.PriceRange) ([]domain.StockItem, error) {
	if pr.NoMax {
		return r.list(ctx, "FindByPriceRange", selectColumns+` WHERE price >= $1 ORDER BY id ASC`, pr.Min)
	}
	query := selectColumns + ` WHERE price >= $1 AND price <= $2 ORDER BY id ASC`
	return r.list(ctx, "FindByPriceRange", query, pr.Min, pr.Max)
}

func (r *StockRepository) list(ctx context.Context, op, query string, args ...interface{}) ([]domain.StockItem, error) {
	r.logger.Debug("Executando consulta de estoque.", map[string]interface{}{"op": op})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	rows, err := r.DB.QueryContext(ctxTimeout, query, args...)
	if err != nil {
		r.logger.Error("Falha na consulta de estoque.", err)
		return nil, errors.NewDBError("Falha na consulta de estoque", err)
	}
	defer rows.Close()

	items := []domain.StockItem{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, errors.NewDBError("Falha ao ler linha de estoque", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewDBError("Falha ao iterar linhas de estoque", err)
	}
	return items, nil
}
