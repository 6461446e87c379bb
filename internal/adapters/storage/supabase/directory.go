// Package supabase reads the portal's candidate table through the Supabase
// REST API. The assistant never writes candidates.
package supabase

import (
	"context"
	"fmt"
	"time"

	postgrest "github.com/supabase-community/postgrest-go"
	supabase "github.com/supabase-community/supabase-go"

	"github.com/Mo-nish/Invensis-Requiter/internal/domain"
)

const (
	defaultTable   = "candidates"
	candidateCols  = "id,name,status,manager_email,assigned_by,interview_at,created_at"
	countExact     = "exact"
	timeFilterForm = time.RFC3339
)

type Config struct {
	URL    string
	APIKey string
	Table  string
}

// Directory implements domain.CandidateDirectory over Supabase.
type Directory struct {
	client *supabase.Client
	table  string
}

var _ domain.CandidateDirectory = (*Directory)(nil)

func NewDirectory(cfg Config) (*Directory, error) {
	if cfg.URL == "" || cfg.APIKey == "" {
		return nil, fmt.Errorf("supabase credentials missing: url and api key are required")
	}

	client, err := supabase.NewClient(cfg.URL, cfg.APIKey, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create supabase client: %w", err)
	}

	table := cfg.Table
	if table == "" {
		table = defaultTable
	}
	return &Directory{client: client, table: table}, nil
}

// Ping verifies the connection with a one-row read.
func (d *Directory) Ping(ctx context.Context) error {
	_ = ctx
	var rows []candidateRow
	_, err := d.client.From(d.table).Select("id", "", false).Limit(1, "").ExecuteTo(&rows)
	if err != nil {
		return fmt.Errorf("supabase ping: %w", err)
	}
	return nil
}

func (d *Directory) ListByManager(ctx context.Context, managerEmail, status string, limit int) ([]domain.Candidate, error) {
	return d.list(ctx, "manager_email", managerEmail, status, limit)
}

func (d *Directory) ListByRecruiter(ctx context.Context, hrEmail, status string, limit int) ([]domain.Candidate, error) {
	return d.list(ctx, "assigned_by", hrEmail, status, limit)
}

func (d *Directory) list(ctx context.Context, ownerCol, owner, status string, limit int) ([]domain.Candidate, error) {
	_ = ctx
	var rows []candidateRow

	query := d.client.From(d.table).
		Select(candidateCols, "", false).
		Eq(ownerCol, owner)
	if status != "" {
		query = query.Eq("status", status)
	}
	query = query.
		Order("interview_at", &postgrest.OrderOpts{Ascending: true, NullsFirst: false}).
		Order("created_at", &postgrest.OrderOpts{Ascending: true})
	if limit > 0 {
		query = query.Limit(limit, "")
	}

	if _, err := query.ExecuteTo(&rows); err != nil {
		return nil, fmt.Errorf("supabase list candidates by %s: %w", ownerCol, err)
	}
	return toCandidates(rows), nil
}

// Stats counts candidates with exact counts and no row transfer.
func (d *Directory) Stats(ctx context.Context, since time.Time) (domain.CandidateStats, error) {
	_ = ctx
	var (
		st  domain.CandidateStats
		err error
	)

	if st.Total, err = d.count(nil); err != nil {
		return st, err
	}
	if st.Pending, err = d.count(func(f *postgrest.FilterBuilder) *postgrest.FilterBuilder {
		return f.Eq("status", domain.CandidateStatusPending)
	}); err != nil {
		return st, err
	}
	if st.Assigned, err = d.count(func(f *postgrest.FilterBuilder) *postgrest.FilterBuilder {
		return f.Eq("status", domain.CandidateStatusAssigned)
	}); err != nil {
		return st, err
	}
	if st.NewThisWeek, err = d.count(func(f *postgrest.FilterBuilder) *postgrest.FilterBuilder {
		return f.Gte("created_at", since.UTC().Format(timeFilterForm))
	}); err != nil {
		return st, err
	}
	return st, nil
}

func (d *Directory) count(filter func(*postgrest.FilterBuilder) *postgrest.FilterBuilder) (int, error) {
	query := d.client.From(d.table).Select("id", countExact, true)
	if filter != nil {
		query = filter(query)
	}

	_, n, err := query.Execute()
	if err != nil {
		return 0, fmt.Errorf("supabase count candidates: %w", err)
	}
	return int(n), nil
}

// ─────────────────────────────────────────
// Rows
// ─────────────────────────────────────────

type candidateRow struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Status       string     `json:"status"`
	ManagerEmail *string    `json:"manager_email"`
	AssignedBy   *string    `json:"assigned_by"`
	InterviewAt  *time.Time `json:"interview_at"`
	CreatedAt    time.Time  `json:"created_at"`
}

func (r candidateRow) toDomain() domain.Candidate {
	c := domain.Candidate{
		ID:          r.ID,
		Name:        r.Name,
		Status:      r.Status,
		InterviewAt: r.InterviewAt,
		CreatedAt:   r.CreatedAt,
	}
	if r.ManagerEmail != nil {
		c.ManagerEmail = *r.ManagerEmail
	}
	if r.AssignedBy != nil {
		c.AssignedBy = *r.AssignedBy
	}
	return c
}

func toCandidates(rows []candidateRow) []domain.Candidate {
	out := make([]domain.Candidate, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out
}
