package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// ErrDuplicateOrder is returned by Insert when the order number or
// idempotency key is already taken.
var ErrDuplicateOrder = errors.New("order already exists")

const uniqueViolation = "23505"

const orderColumns = `
	id, order_number, customer_id, idempotency_key, shipping_address,
	subtotal, tax, shipping_fee, total_amount, currency,
	payment_method, status, payment_status,
	processor_order_ref, processor_payment_ref, processor_signature, failure_reason,
	created_at, updated_at
`

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

// Insert stores the order row and its items in a single transaction.
func (r *orderRepository) Insert(ctx context.Context, order *model.Order) error {
	address, err := json.Marshal(order.ShippingAddress)
	if err != nil {
		return fmt.Errorf("failed to encode shipping address: %w", err)
	}

	now := time.Now().UTC()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	order.UpdatedAt = order.CreatedAt

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		// Rollback after commit is a no-op.
		_ = tx.Rollback(ctx)
	}()

	query := `INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`

	_, err = tx.Exec(ctx, query,
		order.ID, order.OrderNumber, order.CustomerID, order.IdempotencyKey, address,
		order.Subtotal, order.Tax, order.ShippingFee, order.TotalAmount, order.Currency,
		string(order.PaymentMethod), string(order.Status), string(order.PaymentStatus),
		order.ProcessorOrderRef, order.ProcessorPaymentRef, order.ProcessorSignature, order.FailureReason,
		order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			r.logger.Warn().
				Str("order_number", order.OrderNumber).
				Str("constraint", pgErr.ConstraintName).
				Msg("duplicate order rejected")
			return fmt.Errorf("failed to create order: %w", ErrDuplicateOrder)
		}
		r.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Msg("failed to create order")
		return fmt.Errorf("failed to create order: %w", err)
	}

	if err := r.insertItems(ctx, tx, order); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		r.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to commit order")
		return fmt.Errorf("failed to commit order: %w", err)
	}

	r.logger.Debug().
		Str("order_id", order.ID.String()).
		Str("order_number", order.OrderNumber).
		Int("items", len(order.Items)).
		Msg("order created successfully")

	return nil
}

func (r *orderRepository) insertItems(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	if len(order.Items) == 0 {
		return nil
	}

	query := `
		INSERT INTO order_items (id, order_id, position, product_id, name, unit_price, image_ref, quantity)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	batch := &pgx.Batch{}
	for i := range order.Items {
		item := &order.Items[i]
		if item.ID == uuid.Nil {
			item.ID = uuid.New()
		}
		item.OrderID = order.ID
		batch.Queue(query, item.ID, item.OrderID, i, item.ProductID, item.Name, item.UnitPrice, item.ImageRef, item.Quantity)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := range order.Items {
		if _, err := results.Exec(); err != nil {
			r.logger.Error().
				Err(err).
				Str("order_id", order.ID.String()).
				Str("product_id", order.Items[i].ProductID).
				Msg("failed to create order item")
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}

	return nil
}

// UpdateByID overwrites the non-nil fields of update on the order row.
func (r *orderRepository) UpdateByID(ctx context.Context, id uuid.UUID, update model.OrderUpdate) (bool, error) {
	sets := []string{"updated_at = $1"}
	args := []any{time.Now().UTC()}

	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if update.Status != nil {
		add("status", string(*update.Status))
	}
	if update.PaymentStatus != nil {
		add("payment_status", string(*update.PaymentStatus))
	}
	if update.ProcessorPaymentRef != nil {
		add("processor_payment_ref", *update.ProcessorPaymentRef)
	}
	if update.ProcessorSignature != nil {
		add("processor_signature", *update.ProcessorSignature)
	}
	if update.FailureReason != nil {
		add("failure_reason", *update.FailureReason)
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE orders SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))
	if update.UnlessPaid {
		args = append(args, string(model.PaymentStatusPaid))
		query += fmt.Sprintf(" AND payment_status <> $%d", len(args))
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to update order")
		return false, fmt.Errorf("failed to update order: %w", err)
	}

	updated := tag.RowsAffected() > 0
	if !updated {
		r.logger.Debug().
			Str("order_id", id.String()).
			Bool("unless_paid", update.UnlessPaid).
			Msg("order update matched no row")
	}
	return updated, nil
}

// GetByID retrieves an order by its ID along with its items.
func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	return r.getOne(ctx, "id", id)
}

// GetByOrderNumber retrieves an order by its human-facing order number.
func (r *orderRepository) GetByOrderNumber(ctx context.Context, orderNumber string) (*model.Order, error) {
	return r.getOne(ctx, "order_number", orderNumber)
}

// GetByProcessorOrderRef retrieves an order by the processor's order id.
func (r *orderRepository) GetByProcessorOrderRef(ctx context.Context, ref string) (*model.Order, error) {
	return r.getOne(ctx, "processor_order_ref", ref)
}

// GetByIdempotencyKey retrieves the order created for a client idempotency key.
func (r *orderRepository) GetByIdempotencyKey(ctx context.Context, key string) (*model.Order, error) {
	return r.getOne(ctx, "idempotency_key", key)
}

// getOne loads the newest order whose column equals value. column is always
// a constant supplied by this file.
func (r *orderRepository) getOne(ctx context.Context, column string, value any) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE ` + column + ` = $1 ORDER BY created_at DESC LIMIT 1`

	order, err := scanOrder(r.pool.QueryRow(ctx, query, value))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("by", column).Interface("value", value).Msg("order not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("by", column).Msg("failed to query order")
		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	items, err := r.getItems(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	order.Items = items

	return order, nil
}

func (r *orderRepository) getItems(ctx context.Context, orderID uuid.UUID) ([]model.OrderItem, error) {
	query := `
		SELECT id, order_id, product_id, name, unit_price, image_ref, quantity
		FROM order_items
		WHERE order_id = $1
		ORDER BY position
	`

	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", orderID.String()).
			Msg("failed to query order items")
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	items := []model.OrderItem{}
	for rows.Next() {
		var item model.OrderItem
		err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Name, &item.UnitPrice, &item.ImageRef, &item.Quantity)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order item row")
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order item rows")
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}

	return items, nil
}

func scanOrder(row pgx.Row) (*model.Order, error) {
	var (
		o                            model.Order
		address                      []byte
		method, status, paymentState string
	)
	err := row.Scan(
		&o.ID, &o.OrderNumber, &o.CustomerID, &o.IdempotencyKey, &address,
		&o.Subtotal, &o.Tax, &o.ShippingFee, &o.TotalAmount, &o.Currency,
		&method, &status, &paymentState,
		&o.ProcessorOrderRef, &o.ProcessorPaymentRef, &o.ProcessorSignature, &o.FailureReason,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(address, &o.ShippingAddress); err != nil {
		return nil, fmt.Errorf("failed to decode shipping address: %w", err)
	}
	o.Currency = strings.TrimSpace(o.Currency)
	o.PaymentMethod = model.PaymentMethod(method)
	o.Status = model.OrderStatus(status)
	o.PaymentStatus = model.PaymentStatus(paymentState)
	return &o, nil
}
