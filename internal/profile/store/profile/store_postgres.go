package profile

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"shareregistry/internal/profile/models"
	id "shareregistry/pkg/domain"
	"shareregistry/pkg/platform/sentinel"
)

// PostgresStore keeps one row per profile. The whole aggregate, holdings
// included, lives in the document column; the other columns are copies
// used for uniqueness, filtering and ordering.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Insert(ctx context.Context, p *models.ClientProfile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	doc, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO client_profiles (id, client_id, pan_number, name1, status, document, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		uuid.UUID(p.ID), p.ClientID, p.PANNumber, p.ShareholderName.Name1, string(p.Status),
		doc, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return classify("insert profile", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, profileID id.ProfileID) (*models.ClientProfile, error) {
	var doc []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT document FROM client_profiles WHERE id = $1`, uuid.UUID(profileID),
	).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, classify("find profile", err)
	}
	return decode(doc)
}

// FindMany runs the page query and the count concurrently.
func (s *PostgresStore) FindMany(ctx context.Context, filter Filter, page Page) (*PageResult, error) {
	page = page.Normalized()
	where, args := buildWhere(filter)

	result := &PageResult{Page: page, Items: []*models.ClientProfile{}}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		pageArgs := append(append([]any{}, args...), page.Size, page.Offset())
		query := fmt.Sprintf(`SELECT document FROM client_profiles%s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`,
			where, len(args)+1, len(args)+2)
		rows, err := s.db.QueryContext(gctx, query, pageArgs...)
		if err != nil {
			return classify("list profiles", err)
		}
		defer rows.Close()

		items := make([]*models.ClientProfile, 0, page.Size)
		for rows.Next() {
			var doc []byte
			if err := rows.Scan(&doc); err != nil {
				return classify("scan profile", err)
			}
			p, err := decode(doc)
			if err != nil {
				return err
			}
			items = append(items, p)
		}
		if err := rows.Err(); err != nil {
			return classify("list profiles", err)
		}
		result.Items = items
		return nil
	})

	g.Go(func() error {
		var total int
		if err := s.db.QueryRowContext(gctx, `SELECT COUNT(*) FROM client_profiles`+where, args...).Scan(&total); err != nil {
			return classify("count profiles", err)
		}
		result.Total = total
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *PostgresStore) Replace(ctx context.Context, p *models.ClientProfile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	doc, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE client_profiles
		SET client_id = $2, pan_number = $3, name1 = $4, status = $5, document = $6, updated_at = $7
		WHERE id = $1`,
		uuid.UUID(p.ID), p.ClientID, p.PANNumber, p.ShareholderName.Name1, string(p.Status),
		doc, p.UpdatedAt,
	)
	if err != nil {
		return classify("replace profile", err)
	}
	return requireRow(res, "replace profile")
}

func (s *PostgresStore) DeleteByID(ctx context.Context, profileID id.ProfileID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM client_profiles WHERE id = $1`, uuid.UUID(profileID))
	if err != nil {
		return classify("delete profile", err)
	}
	return requireRow(res, "delete profile")
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return classify("ping", err)
	}
	return nil
}

func buildWhere(f Filter) (string, []any) {
	var (
		clauses []string
		args    []any
	)
	next := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if q := strings.TrimSpace(f.Query); q != "" {
		pattern := next("%" + escapeLike(q) + "%")
		clauses = append(clauses, fmt.Sprintf(`(name1 ILIKE %[1]s OR pan_number ILIKE %[1]s OR EXISTS (
			SELECT 1 FROM jsonb_array_elements(document -> 'companies') AS c
			WHERE c ->> 'companyName' ILIKE %[1]s))`, pattern))
	}
	if f.Status != "" {
		clauses = append(clauses, "status = "+next(string(f.Status)))
	}
	if f.ReviewStatus != "" {
		containment, _ := json.Marshal([]map[string]map[string]string{
			{"review": {"status": string(f.ReviewStatus)}},
		})
		clauses = append(clauses, "document -> 'companies' @> "+next(string(containment))+"::jsonb")
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes user input literal inside an ILIKE pattern.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func decode(doc []byte) (*models.ClientProfile, error) {
	var p models.ClientProfile
	if err := json.Unmarshal(doc, &p); err != nil {
		return nil, fmt.Errorf("decode profile document: %w", err)
	}
	return &p, nil
}

func requireRow(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return classify(op, err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// classify maps driver errors onto store sentinels: unique violations become
// ErrConflict and connection-level failures become ErrUnavailable.
func classify(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch {
		case pqErr.Code == "23505":
			return fmt.Errorf("%s: %w: %w", op, sentinel.ErrConflict, err)
		case pqErr.Code.Class() == "08", pqErr.Code == "57P01", pqErr.Code == "57P03":
			return fmt.Errorf("%s: %w: %w", op, sentinel.ErrUnavailable, err)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return fmt.Errorf("%s: %w: %w", op, sentinel.ErrUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
