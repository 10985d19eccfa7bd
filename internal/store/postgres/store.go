package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/superchezzz/daa-ayospila/internal/models"
	"github.com/superchezzz/daa-ayospila/internal/store"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const queueNumberPad = 3

const customerColumns = `customer_id, queue_seq, queue_number, full_name, contact_number, category, service, services, urgency, appointment, status, registered_at, serving_started_at, served_at`

// Store is the durable CustomerStore. Writer exclusivity comes from row
// locks: registration serializes on the counter row, ServeNext on the
// waiting/serving rows it selects FOR UPDATE.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// EnsureSchema creates the tables the store needs if they do not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS customers (
			customer_id        TEXT PRIMARY KEY,
			queue_seq          BIGINT NOT NULL UNIQUE,
			queue_number       TEXT NOT NULL UNIQUE,
			full_name          TEXT NOT NULL,
			contact_number     TEXT NOT NULL DEFAULT '',
			category           TEXT NOT NULL,
			service            TEXT NOT NULL DEFAULT '',
			services           TEXT[] NOT NULL DEFAULT '{}',
			urgency            INT NOT NULL,
			appointment        JSONB,
			status             TEXT NOT NULL,
			registered_at      TIMESTAMPTZ NOT NULL,
			serving_started_at TIMESTAMPTZ,
			served_at          TIMESTAMPTZ
		);
		CREATE INDEX IF NOT EXISTS customers_status_idx ON customers (status);
		CREATE INDEX IF NOT EXISTS customers_registered_at_idx ON customers (registered_at);
		CREATE TABLE IF NOT EXISTS queue_counter (
			counter_id INT PRIMARY KEY,
			seq        BIGINT NOT NULL
		);
		INSERT INTO queue_counter (counter_id, seq) VALUES (1, 0)
		ON CONFLICT (counter_id) DO NOTHING;
	`)
	return err
}

func (s *Store) AddCustomer(ctx context.Context, input store.AddCustomerInput) (models.Customer, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return models.Customer{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var seq int
	if err = tx.QueryRow(ctx, `UPDATE queue_counter SET seq = seq + 1 WHERE counter_id = 1 RETURNING seq`).Scan(&seq); err != nil {
		return models.Customer{}, err
	}

	registeredAt := input.RegisteredAt
	if registeredAt.IsZero() {
		registeredAt = time.Now()
	}

	customer := models.Customer{
		ID:            uuid.NewString(),
		QueueSeq:      seq,
		QueueNumber:   formatQueueNumber(input.Category, seq),
		FullName:      input.FullName,
		ContactNumber: input.ContactNumber,
		Category:      input.Category,
		Urgency:       input.Urgency,
		Status:        models.StatusWaiting,
		RegisteredAt:  registeredAt,
	}
	if len(input.Services) > 0 {
		customer.Services = append([]string(nil), input.Services...)
		customer.Service = input.Services[0]
	}
	if input.Appointment != nil {
		appointment := *input.Appointment
		customer.Appointment = &appointment
	}

	var appointmentJSON []byte
	if customer.Appointment != nil {
		appointmentJSON, err = json.Marshal(customer.Appointment)
		if err != nil {
			return models.Customer{}, err
		}
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO customers (`+customerColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
	`, customer.ID, customer.QueueSeq, customer.QueueNumber, customer.FullName, customer.ContactNumber,
		customer.Category, customer.Service, customer.Services, customer.Urgency, appointmentJSON,
		customer.Status, customer.RegisteredAt, nil, nil)
	if err != nil {
		return models.Customer{}, err
	}

	if err = tx.Commit(ctx); err != nil {
		return models.Customer{}, err
	}
	return customer, nil
}

func (s *Store) GetCustomer(ctx context.Context, id string) (models.Customer, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE customer_id = $1`, id)
	customer, err := scanCustomer(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Customer{}, store.ErrCustomerNotFound
		}
		return models.Customer{}, err
	}
	return customer, nil
}

func (s *Store) ListWaiting(ctx context.Context) ([]models.Customer, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+customerColumns+` FROM customers
		WHERE status = $1
		ORDER BY queue_seq
	`, models.StatusWaiting)
	if err != nil {
		return nil, err
	}
	return scanCustomers(rows)
}

func (s *Store) CurrentlyServing(ctx context.Context) (models.Customer, bool, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+customerColumns+` FROM customers
		WHERE status = $1
		ORDER BY serving_started_at DESC
		LIMIT 1
	`, models.StatusServing)
	customer, err := scanCustomer(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Customer{}, false, nil
		}
		return models.Customer{}, false, err
	}
	return customer, true, nil
}

func (s *Store) ListRegisteredSince(ctx context.Context, since time.Time) ([]models.Customer, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+customerColumns+` FROM customers
		WHERE registered_at >= $1
		ORDER BY queue_seq
	`, since)
	if err != nil {
		return nil, err
	}
	return scanCustomers(rows)
}

func (s *Store) ServeNext(ctx context.Context, now time.Time, pick store.PickFunc) (store.ServeNextResult, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return store.ServeNextResult{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var result store.ServeNextResult

	rows, err := tx.Query(ctx, `
		SELECT `+customerColumns+` FROM customers
		WHERE status IN ($1, $2)
		ORDER BY queue_seq
		FOR UPDATE
	`, models.StatusWaiting, models.StatusServing)
	if err != nil {
		return store.ServeNextResult{}, err
	}
	locked, err := scanCustomers(rows)
	if err != nil {
		return store.ServeNextResult{}, err
	}

	waiting := make([]models.Customer, 0, len(locked))
	for _, customer := range locked {
		switch customer.Status {
		case models.StatusServing:
			previous := customer
			previous.Status = models.StatusServed
			servedAt := now
			previous.ServedAt = &servedAt
			if _, err = tx.Exec(ctx, `
				UPDATE customers SET status = $1, served_at = $2 WHERE customer_id = $3
			`, models.StatusServed, servedAt, previous.ID); err != nil {
				return store.ServeNextResult{}, err
			}
			result.PreviouslyServing = &previous
		case models.StatusWaiting:
			waiting = append(waiting, customer)
		}
	}

	if len(waiting) > 0 {
		if id, ok := pick(waiting); ok {
			var next models.Customer
			found := false
			for _, customer := range waiting {
				if customer.ID == id {
					next = customer
					found = true
					break
				}
			}
			if !found {
				err = store.ErrCustomerNotFound
				return store.ServeNextResult{}, err
			}
			startedAt := now
			next.Status = models.StatusServing
			next.ServingStartedAt = &startedAt
			if _, err = tx.Exec(ctx, `
				UPDATE customers SET status = $1, serving_started_at = $2 WHERE customer_id = $3
			`, models.StatusServing, startedAt, next.ID); err != nil {
				return store.ServeNextResult{}, err
			}
			result.NowServing = &next
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return store.ServeNextResult{}, err
	}
	return result, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCustomer(row rowScanner) (models.Customer, error) {
	var customer models.Customer
	var contactNull sql.NullString
	var serviceNull sql.NullString
	var appointmentJSON []byte
	var servingStartedNull sql.NullTime
	var servedNull sql.NullTime

	err := row.Scan(&customer.ID, &customer.QueueSeq, &customer.QueueNumber, &customer.FullName,
		&contactNull, &customer.Category, &serviceNull, &customer.Services, &customer.Urgency,
		&appointmentJSON, &customer.Status, &customer.RegisteredAt, &servingStartedNull, &servedNull)
	if err != nil {
		return models.Customer{}, err
	}

	if contactNull.Valid {
		customer.ContactNumber = contactNull.String
	}
	if serviceNull.Valid {
		customer.Service = serviceNull.String
	}
	if len(appointmentJSON) > 0 {
		var appointment models.Appointment
		if err := json.Unmarshal(appointmentJSON, &appointment); err != nil {
			return models.Customer{}, err
		}
		customer.Appointment = &appointment
	}
	if servingStartedNull.Valid {
		startedAt := servingStartedNull.Time
		customer.ServingStartedAt = &startedAt
	}
	if servedNull.Valid {
		servedAt := servedNull.Time
		customer.ServedAt = &servedAt
	}
	return customer, nil
}

func scanCustomers(rows pgx.Rows) ([]models.Customer, error) {
	defer rows.Close()
	var customers []models.Customer
	for rows.Next() {
		customer, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, customer)
	}
	return customers, rows.Err()
}

func formatQueueNumber(category string, seq int) string {
	prefix := "Q"
	if category != "" {
		prefix = string(category[0])
	}
	return fmt.Sprintf("%s-%0*d", prefix, queueNumberPad, seq)
}
