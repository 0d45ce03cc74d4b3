package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/markethub/settlement-service/internal/domain/models"
	"github.com/markethub/settlement-service/internal/domain/ports"
)

// OrderRepository implements ports.OrderRepository. Orders are read-only
// marketplace data; this repository never writes.
type OrderRepository struct {
	baseRepo
}

// NewOrderRepository creates an order repository
func NewOrderRepository(db ports.DBPort) *OrderRepository {
	return &OrderRepository{baseRepo{pool: db.GetDB()}}
}

// ListSettlementTargetOrdersWithItems returns the seller's CONFIRMED,
// SHIPPED and DELIVERED orders inside the period, each with its line items.
// Items are fetched in one query and grouped in memory to avoid N+1 reads.
func (r *OrderRepository) ListSettlementTargetOrdersWithItems(ctx context.Context, db ports.DBTX, sellerID string, periodStart, periodEnd time.Time) ([]models.Order, error) {
	rows, err := r.exec(db).Query(ctx, `
		SELECT id, order_no, seller_id, order_status, order_date, total_amount, shipping_fee, created_at, updated_at
		FROM orders
		WHERE seller_id = $1
		  AND order_status = ANY($2)
		  AND order_date BETWEEN $3 AND $4
		ORDER BY order_date, id`,
		sellerID,
		[]string{string(models.OrderConfirmed), string(models.OrderShipped), string(models.OrderDelivered)},
		periodStart, periodEnd)
	if err != nil {
		return nil, fmt.Errorf("list settlement target orders: %w", err)
	}
	defer rows.Close()

	var orders []models.Order
	orderIndex := make(map[string]int)
	for rows.Next() {
		var o models.Order
		var status string
		var total, shipping pgtype.Numeric

		if err := rows.Scan(&o.ID, &o.OrderNo, &o.SellerID, &status, &o.OrderDate, &total, &shipping, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		o.OrderStatus = models.OrderStatus(status)
		if o.TotalAmount, err = decimalFromNumeric(total); err != nil {
			return nil, fmt.Errorf("order %s total: %w", o.ID, err)
		}
		if o.ShippingFee, err = decimalFromNumeric(shipping); err != nil {
			return nil, fmt.Errorf("order %s shipping fee: %w", o.ID, err)
		}

		orderIndex[o.ID] = len(orders)
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}
	if len(orders) == 0 {
		return nil, nil
	}

	orderIDs := make([]string, 0, len(orders))
	for i := range orders {
		orderIDs = append(orderIDs, orders[i].ID)
	}

	itemRows, err := r.exec(db).Query(ctx, `
		SELECT id, order_id, product_name, unit_price, quantity, total_amount, is_refunded, created_at
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, id`,
		orderIDs)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var item models.OrderItem
		var unitPrice, total pgtype.Numeric

		if err := itemRows.Scan(&item.ID, &item.OrderID, &item.ProductName, &unitPrice, &item.Quantity, &total, &item.IsRefunded, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		if item.UnitPrice, err = decimalFromNumeric(unitPrice); err != nil {
			return nil, fmt.Errorf("order item %s unit price: %w", item.ID, err)
		}
		if item.TotalAmount, err = decimalFromNumeric(total); err != nil {
			return nil, fmt.Errorf("order item %s total: %w", item.ID, err)
		}

		idx := orderIndex[item.OrderID]
		orders[idx].Items = append(orders[idx].Items, item)
	}
	if err := itemRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order items: %w", err)
	}

	return orders, nil
}
