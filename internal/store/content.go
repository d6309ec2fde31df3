package store

import (
	"database/sql"
	"errors"

	"github.com/alextreichler/embroiderystore/internal/models"
)

// ContentSlugs are the editable static pages.
var ContentSlugs = []string{"terms", "privacy"}

func (s *Store) GetPage(slug string) (*models.ContentPage, error) {
	query := `SELECT slug, title, body, updated_at FROM content_pages WHERE slug = ?`
	var p models.ContentPage
	err := s.DB.QueryRow(query, slug).Scan(&p.Slug, &p.Title, &p.Body, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// SavePage creates or replaces a page.
func (s *Store) SavePage(p *models.ContentPage) error {
	query := `
		INSERT INTO content_pages (slug, title, body, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(slug) DO UPDATE SET title = excluded.title, body = excluded.body, updated_at = CURRENT_TIMESTAMP
	`
	_, err := s.DB.Exec(query, p.Slug, p.Title, p.Body)
	return err
}

func (s *Store) ListFAQ() ([]models.FAQEntry, error) {
	rows, err := s.DB.Query(`SELECT id, question, answer, position FROM faq_entries ORDER BY position, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.FAQEntry
	for rows.Next() {
		var e models.FAQEntry
		if err := rows.Scan(&e.ID, &e.Question, &e.Answer, &e.Position); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *Store) GetFAQ(id int) (*models.FAQEntry, error) {
	var e models.FAQEntry
	err := s.DB.QueryRow(`SELECT id, question, answer, position FROM faq_entries WHERE id = ?`, id).
		Scan(&e.ID, &e.Question, &e.Answer, &e.Position)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// CreateFAQ appends an entry at the end of the list.
func (s *Store) CreateFAQ(e *models.FAQEntry) error {
	query := `
		INSERT INTO faq_entries (question, answer, position)
		VALUES (?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM faq_entries))
	`
	res, err := s.DB.Exec(query, e.Question, e.Answer)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = int(id)
	return nil
}

func (s *Store) UpdateFAQ(e *models.FAQEntry) error {
	_, err := s.DB.Exec(`UPDATE faq_entries SET question = ?, answer = ?, position = ? WHERE id = ?`,
		e.Question, e.Answer, e.Position, e.ID)
	return err
}

func (s *Store) DeleteFAQ(id int) error {
	_, err := s.DB.Exec(`DELETE FROM faq_entries WHERE id = ?`, id)
	return err
}
