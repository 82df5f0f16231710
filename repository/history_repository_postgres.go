package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // driver de PostgreSQL

	"github.com/Mr-Alvaro/Crediticio-System/domain"
)

const createSolicitudes = `
	CREATE TABLE IF NOT EXISTS solicitudes (
		id BIGSERIAL PRIMARY KEY,
		evaluacion_id TEXT UNIQUE NOT NULL,
		fecha TIMESTAMPTZ NOT NULL,
		nombre TEXT,
		genero TEXT,
		edad TEXT,
		region TEXT,
		income DOUBLE PRECISION,
		monto DOUBLE PRECISION,
		plazo INTEGER,
		credit_worthiness TEXT,
		property_value DOUBLE PRECISION,
		dti DOUBLE PRECISION,
		ltv DOUBLE PRECISION,
		score_cliente DOUBLE PRECISION,
		riesgo_difuso DOUBLE PRECISION,
		probabilidad DOUBLE PRECISION,
		score_final DOUBLE PRECISION,
		decision TEXT,
		motivo TEXT
	)`

const insertSolicitud = `
	INSERT INTO solicitudes (
		evaluacion_id, fecha, nombre, genero, edad, region, income, monto, plazo,
		credit_worthiness, property_value, dti, ltv, score_cliente, riesgo_difuso,
		probabilidad, score_final, decision, motivo
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	ON CONFLICT (evaluacion_id) DO NOTHING`

const selectRecent = `
	SELECT id, evaluacion_id, fecha, nombre, monto, credit_worthiness, dti, ltv,
		score_cliente, riesgo_difuso, probabilidad, score_final, decision
	FROM solicitudes
	ORDER BY fecha DESC, id DESC
	LIMIT $1`

const selectStats = `
	SELECT
		COUNT(*),
		COUNT(*) FILTER (WHERE decision = $1),
		COUNT(*) FILTER (WHERE decision = $2),
		COUNT(*) FILTER (WHERE decision = $3),
		COALESCE(AVG(score_cliente), 0),
		COALESCE(AVG(riesgo_difuso), 0),
		COALESCE(AVG(probabilidad), 0),
		COALESCE(AVG(dti), 0),
		COALESCE(AVG(ltv), 0)
	FROM solicitudes`

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

func (c PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// HistoryRepositoryPostgres stores the history in the solicitudes table.
type HistoryRepositoryPostgres struct {
	db *sql.DB
}

func NewHistoryRepositoryPostgres(db *sql.DB) *HistoryRepositoryPostgres {
	return &HistoryRepositoryPostgres{db: db}
}

// OpenPostgres connects and pings the database.
func OpenPostgres(ctx context.Context, cfg PostgresConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// Migrate creates the solicitudes table if it does not exist.
func (r *HistoryRepositoryPostgres) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createSolicitudes); err != nil {
		return fmt.Errorf("create solicitudes: %w", err)
	}
	return nil
}

func (r *HistoryRepositoryPostgres) Save(ctx context.Context, rec domain.AssessmentRecord) error {
	app, res := rec.Application, rec.Result
	_, err := r.db.ExecContext(ctx, insertSolicitud,
		rec.ID, rec.CreatedAt, app.DisplayName(), app.Gender, app.AgeBand, app.Region,
		app.Income, app.LoanAmount, app.TermMonths, string(app.CreditWorthiness), app.PropertyValue,
		res.DTI, res.LTV, res.ClientScore, res.FuzzyRisk, res.Probability, res.FinalScore,
		string(res.Decision), res.Reason,
	)
	if err != nil {
		return fmt.Errorf("insert solicitud %s: %w", rec.ID, err)
	}
	return nil
}

func (r *HistoryRepositoryPostgres) Recent(ctx context.Context, limit int) ([]domain.HistoryEntry, error) {
	rows, err := r.db.QueryContext(ctx, selectRecent, limit)
	if err != nil {
		return nil, fmt.Errorf("query solicitudes: %w", err)
	}
	defer rows.Close()

	entries := []domain.HistoryEntry{}
	for rows.Next() {
		var (
			e        domain.HistoryEntry
			fecha    time.Time
			nombre   sql.NullString
			cw       sql.NullString
			decision string
		)
		if err := rows.Scan(
			&e.ID, &e.AssessmentID, &fecha, &nombre, &e.LoanAmount, &cw, &e.DTI, &e.LTV,
			&e.ClientScore, &e.FuzzyRisk, &e.Probability, &e.FinalScore, &decision,
		); err != nil {
			return nil, fmt.Errorf("scan solicitud: %w", err)
		}
		e.CreatedAt = fecha.Format(domain.HistoryTimeLayout)
		e.Name = nombre.String
		e.CreditWorthiness = cw.String
		e.Decision = domain.Decision(decision)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate solicitudes: %w", err)
	}
	return entries, nil
}

func (r *HistoryRepositoryPostgres) Stats(ctx context.Context) (domain.Statistics, error) {
	var s domain.Statistics
	err := r.db.QueryRowContext(ctx, selectStats,
		string(domain.DecisionApproved), string(domain.DecisionRejected), string(domain.DecisionManualReview),
	).Scan(
		&s.Total, &s.Approved, &s.Rejected, &s.ManualReview,
		&s.AvgClientScore, &s.AvgFuzzyRisk, &s.AvgProbability, &s.AvgDTI, &s.AvgLTV,
	)
	if err != nil {
		return domain.Statistics{}, fmt.Errorf("query estadisticas: %w", err)
	}
	return finishStats(s), nil
}
