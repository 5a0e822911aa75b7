package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/nurpe/marketplace-service/internal/model"
)

type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// BestProfession returns the contractor profession that earned the most from
// jobs paid within [from, to]. Ties resolve to the alphabetically first
// profession. gorm.ErrRecordNotFound is returned when nothing was paid.
func (r *ReportRepository) BestProfession(ctx context.Context, from, to time.Time) (*model.ProfessionTotal, error) {
	var rows []model.ProfessionTotal
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			p.profession AS profession,
			SUM(j.price) AS total
		FROM jobs j
		JOIN contracts c ON c.id = j.contract_id
		JOIN profiles p ON p.id = c.contractor_id
		WHERE j.paid = ?
			AND j.payment_date >= ?
			AND j.payment_date <= ?
		GROUP BY p.profession
		ORDER BY SUM(j.price) DESC, p.profession ASC
		LIMIT 1
	`, true, from, to).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &rows[0], nil
}

// BestClients returns up to limit clients ordered by the total they paid
// within [from, to], highest first.
func (r *ReportRepository) BestClients(ctx context.Context, from, to time.Time, limit int) ([]model.ClientTotal, error) {
	rows := []model.ClientTotal{}
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			p.id AS id,
			p.first_name || ' ' || p.last_name AS full_name,
			SUM(j.price) AS paid
		FROM jobs j
		JOIN contracts c ON c.id = j.contract_id
		JOIN profiles p ON p.id = c.client_id
		WHERE j.paid = ?
			AND j.payment_date >= ?
			AND j.payment_date <= ?
		GROUP BY p.id, p.first_name, p.last_name
		ORDER BY SUM(j.price) DESC, p.first_name ASC, p.last_name ASC
		LIMIT ?
	`, true, from, to, limit).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
