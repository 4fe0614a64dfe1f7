package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
	"tripplanner/services"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
)

// ErrPlanNotFound is returned by GetPlan for unknown ids.
var ErrPlanNotFound = errors.New("plan not found")

// ─── Models ──────────────────────────────────────────────────────────────────

type Plan struct {
	ID         string               `json:"id"`
	Entries    []services.Entry     `json:"entries"`
	Itinerary  []string             `json:"itinerary"`
	FlightData []services.FlightLeg `json:"flightData"`
	CreatedAt  time.Time            `json:"createdAt"`
}

// Response rebuilds the payload that was returned when the plan was made.
func (p *Plan) Response() services.ItineraryResponse {
	return services.ItineraryResponse{
		Success:    true,
		Itinerary:  p.Itinerary,
		FlightData: p.FlightData,
		PlanID:     p.ID,
	}
}

// Store archives finished plans in PostgreSQL.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// ─── Init ─────────────────────────────────────────────────────────────────────

// Open connects to PostgreSQL, retrying while the database comes up.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	for i := 0; i < 10; i++ {
		if err = db.PingContext(ctx); err == nil {
			return db, nil
		}
		select {
		case <-ctx.Done():
			db.Close()
			return nil, ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}
	db.Close()
	return nil, fmt.Errorf("connect database after retries: %w", err)
}

// ─── Migrations ───────────────────────────────────────────────────────────────

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS plans (
		id             TEXT PRIMARY KEY,
		entries_json   TEXT NOT NULL,
		itinerary_json TEXT NOT NULL,
		flights_json   TEXT NOT NULL,
		created_at     TIMESTAMPTZ DEFAULT NOW()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_plans_created_at
		ON plans(created_at DESC)`,
}

func (s *Store) Migrate(ctx context.Context) error {
	for _, m := range migrations {
		if _, err := s.db.ExecContext(ctx, m); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// ─── CRUD ─────────────────────────────────────────────────────────────────────

// SavePlan stores a finished plan and returns its new id.
func (s *Store) SavePlan(ctx context.Context, req services.ItineraryRequest, resp *services.ItineraryResponse) (string, error) {
	entriesJSON, err := json.Marshal(req.Entries)
	if err != nil {
		return "", err
	}
	itineraryJSON, err := json.Marshal(resp.Itinerary)
	if err != nil {
		return "", err
	}
	flightsJSON, err := json.Marshal(resp.FlightData)
	if err != nil {
		return "", err
	}

	id := uuid.New().String()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO plans (id, entries_json, itinerary_json, flights_json)
		VALUES ($1, $2, $3, $4)`,
		id, string(entriesJSON), string(itineraryJSON), string(flightsJSON))
	if err != nil {
		return "", fmt.Errorf("insert plan: %w", err)
	}
	return id, nil
}

func (s *Store) GetPlan(ctx context.Context, id string) (*Plan, error) {
	var entriesJSON, itineraryJSON, flightsJSON string
	p := &Plan{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, entries_json, itinerary_json, flights_json, created_at
		FROM plans WHERE id = $1`, id).
		Scan(&p.ID, &entriesJSON, &itineraryJSON, &flightsJSON, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPlanNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select plan: %w", err)
	}

	if err := json.Unmarshal([]byte(entriesJSON), &p.Entries); err != nil {
		return nil, fmt.Errorf("decode plan entries: %w", err)
	}
	if err := json.Unmarshal([]byte(itineraryJSON), &p.Itinerary); err != nil {
		return nil, fmt.Errorf("decode plan itinerary: %w", err)
	}
	if err := json.Unmarshal([]byte(flightsJSON), &p.FlightData); err != nil {
		return nil, fmt.Errorf("decode plan flights: %w", err)
	}
	return p, nil
}
