package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"matchcore/internal/models"
)

// PostgresStore implements Store against a PostgreSQL schema of orders,
// trades and users tables, grounded on the teacher's
// internal/repository/order_repository.go raw-SQL style: plain
// database/sql, no ORM, errors.Is(err, sql.ErrNoRows) mapped to a package
// sentinel.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const activeOrdersQuery = `
	SELECT id, side, asset, price, original_amount, remaining, matched, status,
	       user_id, COALESCE(counterparty_id, ''), created_at
	FROM orders
	WHERE status = 'ACTIVE' AND remaining > 0`

func (s *PostgresStore) scanOrders(rows *sql.Rows) ([]*models.Order, error) {
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		o := &models.Order{}
		var priceStr string
		if err := rows.Scan(
			&o.ID, &o.Side, &o.Asset, &priceStr, &o.OriginalAmount, &o.Remaining,
			&o.Matched, &o.Status, &o.UserID, &o.CounterpartyID, &o.CreatedAt,
		); err != nil {
			return nil, err
		}
		price, err := decimal.NewFromString(priceStr)
		if err != nil {
			return nil, fmt.Errorf("store: parse price for order %s: %w", o.ID, err)
		}
		o.Price = price
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *PostgresStore) FindActiveOrders(ctx context.Context) ([]*models.Order, error) {
	query := activeOrdersQuery + ` ORDER BY asset ASC, price DESC, created_at ASC`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	return s.scanOrders(rows)
}

func (s *PostgresStore) FindActiveOrdersForAsset(ctx context.Context, asset string) ([]*models.Order, error) {
	query := activeOrdersQuery + ` AND asset = $1 ORDER BY price DESC, created_at ASC`
	rows, err := s.db.QueryContext(ctx, query, asset)
	if err != nil {
		return nil, err
	}
	return s.scanOrders(rows)
}

func (s *PostgresStore) FindOrderByID(ctx context.Context, id string) (*models.Order, error) {
	query := `
		SELECT id, side, asset, price, original_amount, remaining, matched, status,
		       user_id, COALESCE(counterparty_id, ''), created_at
		FROM orders WHERE id = $1`

	o := &models.Order{}
	var priceStr string
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&o.ID, &o.Side, &o.Asset, &priceStr, &o.OriginalAmount, &o.Remaining,
		&o.Matched, &o.Status, &o.UserID, &o.CounterpartyID, &o.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	price, err := decimal.NewFromString(priceStr)
	if err != nil {
		return nil, fmt.Errorf("store: parse price for order %s: %w", o.ID, err)
	}
	o.Price = price
	return o, nil
}

func (s *PostgresStore) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT id, username, COALESCE(secondary_address, '') FROM users WHERE id = $1`

	u := &models.User{}
	err := s.db.QueryRowContext(ctx, query, id).Scan(&u.ID, &u.Username, &u.SecondaryAddress)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

func (s *PostgresStore) UpdateOrderPrice(ctx context.Context, orderID string, newPrice decimal.Decimal) error {
	res, err := s.db.ExecContext(ctx, `UPDATE orders SET price = $1 WHERE id = $2`, newPrice.StringFixed(2), orderID)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (s *PostgresStore) UpdateOrderAmount(ctx context.Context, orderID string, newAmount int64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE orders SET original_amount = $1, remaining = $1 WHERE id = $2`,
		newAmount, orderID)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func checkRowsAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// CommitTrade implements spec §4.6 as a single database transaction: insert
// the Trade, then update both orders' remaining/matched/status/counterparty.
// On any failure the transaction rolls back and ErrCommitAborted is
// returned wrapping the underlying cause, matching spec §7's "transient
// store failure during commit: abort the transaction" contract.
func (s *PostgresStore) CommitTrade(ctx context.Context, bid, offer *models.Order, amount int64, price, commission decimal.Decimal) (*models.Trade, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCommitAborted, err)
	}
	defer tx.Rollback()

	trade := &models.Trade{
		ID:            uuid.NewString(),
		Asset:         bid.Asset,
		Price:         price,
		Amount:        amount,
		BuyerOrderID:  bid.ID,
		SellerOrderID: offer.ID,
		BuyerID:       bid.UserID,
		SellerID:      offer.UserID,
		Commission:    commission,
		MatchType:     models.ClassifyMatchType(bid.OriginalAmount, offer.OriginalAmount),
		CreatedAt:     time.Now(),
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO trades (id, asset, price, amount, buyer_order_id, seller_order_id,
		                     buyer_id, seller_id, commission, match_type, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		trade.ID, trade.Asset, trade.Price.StringFixed(2), trade.Amount,
		trade.BuyerOrderID, trade.SellerOrderID, trade.BuyerID, trade.SellerID,
		trade.Commission.StringFixed(2), trade.MatchType, trade.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: insert trade: %v", ErrCommitAborted, err)
	}

	bidRemaining := bid.Remaining - amount
	if err := s.applyFill(ctx, tx, bid, bidRemaining, offer.UserID); err != nil {
		return nil, fmt.Errorf("%w: update bid: %v", ErrCommitAborted, err)
	}
	offerRemaining := offer.Remaining - amount
	if err := s.applyFill(ctx, tx, offer, offerRemaining, bid.UserID); err != nil {
		return nil, fmt.Errorf("%w: update offer: %v", ErrCommitAborted, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCommitAborted, err)
	}

	bid.Remaining = bidRemaining
	offer.Remaining = offerRemaining
	if bidRemaining == 0 {
		bid.Matched = true
		bid.Status = models.OrderStatusMatched
		bid.CounterpartyID = offer.UserID
	}
	if offerRemaining == 0 {
		offer.Matched = true
		offer.Status = models.OrderStatusMatched
		offer.CounterpartyID = bid.UserID
	}

	return trade, nil
}

func (s *PostgresStore) applyFill(ctx context.Context, tx *sql.Tx, o *models.Order, remaining int64, counterpartyID string) error {
	matched := remaining == 0
	status := models.OrderStatusActive
	cp := o.CounterpartyID
	if matched {
		status = models.OrderStatusMatched
		cp = counterpartyID
	}
	_, err := tx.ExecContext(ctx, `
		UPDATE orders SET remaining = $1, matched = $2, status = $3, counterparty_id = $4
		WHERE id = $5`,
		remaining, matched, status, cp, o.ID)
	return err
}
