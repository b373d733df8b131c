package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"prysma/internal/model"

	"github.com/pkg/errors"
)

// FetchSections returns the stored section list for userID.
//
// A missing row is not an error: a user who has never saved a layout has an empty card.
// Entries without id/type, or that cannot be decoded, are skipped.
func (s *Store) FetchSections(ctx context.Context, userID string) ([]model.Section, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, errors.New("fetch sections: empty user id")
	}

	var raw sql.NullString
	err := s.db.QueryRowContext(ctx, `SELECT sections FROM profiles WHERE id = ?`, userID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return []model.Section{}, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "fetch sections for %s", userID)
	}
	return decodeSections(raw.String)
}

func decodeSections(raw string) ([]model.Section, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return []model.Section{}, nil
	}
	var elems []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &elems); err != nil {
		return nil, errors.Wrap(err, "sections column is not a JSON array")
	}
	out := make([]model.Section, 0, len(elems))
	for _, e := range elems {
		var sec model.Section
		if err := json.Unmarshal(e, &sec); err != nil {
			continue
		}
		if !sec.Valid() {
			continue
		}
		out = append(out, sec)
	}
	return out, nil
}

// ValidSections drops entries missing an id or type. Order is preserved.
func ValidSections(xs []model.Section) []model.Section {
	out := make([]model.Section, 0, len(xs))
	for _, sec := range xs {
		if !sec.Valid() {
			continue
		}
		out = append(out, sec)
	}
	return out
}

// SaveSections replaces the whole sections column for userID.
// Invalid entries are filtered out silently. Returns ErrNotFound when the profile row is missing.
func (s *Store) SaveSections(ctx context.Context, userID string, sections []model.Section) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return errors.New("save sections: empty user id")
	}
	raw, err := json.Marshal(ValidSections(sections))
	if err != nil {
		return errors.Wrap(err, "encode sections")
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE profiles SET sections = ?, updated_at_unixms = ? WHERE id = ?`,
		string(raw), unixMs(s.now()), userID)
	if err != nil {
		return errors.Wrapf(err, "save sections for %s", userID)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrapf(err, "save sections for %s", userID)
	}
	if n == 0 {
		return errors.Wrapf(ErrNotFound, "save sections for %s", userID)
	}
	return nil
}
