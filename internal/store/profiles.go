package store

import (
	"context"
	"database/sql"
	"strings"

	"prysma/internal/model"

	"github.com/pkg/errors"
)

// EnsureProfile creates the profile row if missing and updates display name/email when given.
// The sections column is never touched here.
func (s *Store) EnsureProfile(ctx context.Context, p model.Profile) (model.Profile, error) {
	p.ID = strings.TrimSpace(p.ID)
	if p.ID == "" {
		return model.Profile{}, errors.New("ensure profile: empty user id")
	}
	nowMs := unixMs(s.now())
	_, err := s.db.ExecContext(ctx, `INSERT INTO profiles(id, display_name, email, sections, created_at_unixms, updated_at_unixms)
		VALUES(?, ?, ?, '[]', ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			display_name = CASE WHEN excluded.display_name <> '' THEN excluded.display_name ELSE profiles.display_name END,
			email = CASE WHEN excluded.email <> '' THEN excluded.email ELSE profiles.email END`,
		p.ID, strings.TrimSpace(p.DisplayName), strings.ToLower(strings.TrimSpace(p.Email)), nowMs, nowMs)
	if err != nil {
		return model.Profile{}, errors.Wrapf(err, "ensure profile %s", p.ID)
	}
	return s.GetProfile(ctx, p.ID)
}

func (s *Store) GetProfile(ctx context.Context, userID string) (model.Profile, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, display_name, email, created_at_unixms, updated_at_unixms
		FROM profiles WHERE id = ?`, strings.TrimSpace(userID))
	p, err := scanProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Profile{}, ErrNotFound
	}
	if err != nil {
		return model.Profile{}, errors.Wrapf(err, "get profile %s", userID)
	}
	return p, nil
}

func (s *Store) ListProfiles(ctx context.Context) ([]model.Profile, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, display_name, email, created_at_unixms, updated_at_unixms
		FROM profiles ORDER BY id`)
	if err != nil {
		return nil, errors.Wrap(err, "list profiles")
	}
	defer rows.Close()

	out := []model.Profile{}
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, errors.Wrap(err, "list profiles")
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "list profiles")
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(r rowScanner) (model.Profile, error) {
	var (
		p                  model.Profile
		createdMs, updated int64
	)
	if err := r.Scan(&p.ID, &p.DisplayName, &p.Email, &createdMs, &updated); err != nil {
		return model.Profile{}, err
	}
	p.CreatedAt = fromUnixMs(createdMs)
	p.UpdatedAt = fromUnixMs(updated)
	return p, nil
}
