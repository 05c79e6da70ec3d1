package store

import (
	"context"

	"github.com/aceconsult/cmsapi/internal/core/domain"
)

// =============================================================================
// Service Operations
// =============================================================================

type serviceRow struct {
	ID          string  `db:"id"`
	Title       string  `db:"title"`
	Description string  `db:"description"`
	Icon        *string `db:"icon"`
	Image       *string `db:"image"`
	Features    *string `db:"features"`
	IsActive    bool    `db:"is_active"`
	SortOrder   int     `db:"sort_order"`
	CreatedAt   string  `db:"created_at"`
	UpdatedAt   string  `db:"updated_at"`
}

func rowToService(op string, r *serviceRow) (*domain.Service, error) {
	svc := &domain.Service{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Icon:        deref(r.Icon),
		Image:       deref(r.Image),
		IsActive:    r.IsActive,
		Order:       r.SortOrder,
		CreatedAt:   parseTime(r.CreatedAt),
		UpdatedAt:   parseTime(r.UpdatedAt),
	}
	if err := unmarshalJSON(op, "service", r.ID, "features", r.Features, &svc.Features); err != nil {
		return nil, err
	}
	svc.Features = nonNilStrings(svc.Features)
	return svc, nil
}

func serviceToRow(op string, svc *domain.Service) (map[string]any, error) {
	features, err := marshalJSON(op, "service", svc.ID, "features", nonNilStrings(svc.Features))
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"id":          svc.ID,
		"title":       svc.Title,
		"description": svc.Description,
		"icon":        nullString(svc.Icon),
		"image":       nullString(svc.Image),
		"features":    features,
		"is_active":   svc.IsActive,
		"sort_order":  svc.Order,
		"created_at":  formatTime(svc.CreatedAt),
		"updated_at":  formatTime(svc.UpdatedAt),
	}, nil
}

// CreateService inserts a service.
func (s *SQLiteStore) CreateService(ctx context.Context, service *domain.Service) error {
	row, err := serviceToRow("CreateService", service)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO services (id, title, description, icon, image, features, is_active, sort_order, created_at, updated_at)
		VALUES (:id, :title, :description, :icon, :image, :features, :is_active, :sort_order, :created_at, :updated_at)`

	if _, err := s.exec.NamedExecContext(ctx, query, row); err != nil {
		return classifyWriteError("CreateService", "service", "services", service.ID, err)
	}
	return nil
}

// GetService returns the service with the given ID.
func (s *SQLiteStore) GetService(ctx context.Context, id string) (*domain.Service, error) {
	var row serviceRow
	if err := s.exec.GetContext(ctx, &row, `SELECT * FROM services WHERE id = ?`, id); err != nil {
		return nil, notFoundOrError("GetService", "service", id, err)
	}
	return rowToService("GetService", &row)
}

// UpdateService rewrites a service.
func (s *SQLiteStore) UpdateService(ctx context.Context, service *domain.Service) error {
	row, err := serviceToRow("UpdateService", service)
	if err != nil {
		return err
	}

	query := `
		UPDATE services SET
			title = :title,
			description = :description,
			icon = :icon,
			image = :image,
			features = :features,
			is_active = :is_active,
			sort_order = :sort_order,
			updated_at = :updated_at
		WHERE id = :id`

	result, err := s.exec.NamedExecContext(ctx, query, row)
	if err != nil {
		return classifyWriteError("UpdateService", "service", "services", service.ID, err)
	}
	return requireAffected("UpdateService", "service", service.ID, result)
}

// DeleteService deletes a service.
func (s *SQLiteStore) DeleteService(ctx context.Context, id string) error {
	result, err := s.exec.ExecContext(ctx, `DELETE FROM services WHERE id = ?`, id)
	if err != nil {
		return NewStoreError("DeleteService", "service", id, err.Error(), err)
	}
	return requireAffected("DeleteService", "service", id, result)
}

// ListServices returns services in display order.
func (s *SQLiteStore) ListServices(ctx context.Context, activeOnly bool) ([]domain.Service, error) {
	query := `SELECT * FROM services`
	if activeOnly {
		query += ` WHERE is_active = 1`
	}
	query += ` ORDER BY sort_order ASC, created_at ASC`

	var rows []serviceRow
	if err := s.exec.SelectContext(ctx, &rows, query); err != nil {
		return nil, NewStoreError("ListServices", "service", "", err.Error(), err)
	}

	services := make([]domain.Service, 0, len(rows))
	for i := range rows {
		svc, err := rowToService("ListServices", &rows[i])
		if err != nil {
			return nil, err
		}
		services = append(services, *svc)
	}
	return services, nil
}
