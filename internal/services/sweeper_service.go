// internal/services/sweeper_service.go
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/sobrazero/sobrazero-backend/internal/models"
)

// SweeperService expires overdue pending reservations and returns their
// units to stock. It runs from the sweeper binary and from an in-process
// ticker; both paths are safe to overlap.
type SweeperService struct {
	db        *gorm.DB
	batchSize int
}

// SweepSummary reports one sweep pass.
type SweepSummary struct {
	Scanned   int `json:"scanned"`
	Expired   int `json:"expired"`
	AlreadyOK int `json:"already_processed"`
	Errored   int `json:"errored"`
}

func NewSweeperService(db *gorm.DB) *SweeperService {
	return &SweeperService{db: db, batchSize: 200}
}

// Sweep expires every pending reservation whose deadline passed. Each
// reservation is handled in its own transaction whose first statement is a
// conditional UPDATE flipping both the state and the stock_devuelto guard.
// A concurrent sweep, or a user cancelling at the same moment, loses that
// UPDATE and skips the stock credit, so units are never returned twice.
func (s *SweeperService) Sweep(ctx context.Context) (*SweepSummary, error) {
	summary := &SweepSummary{}
	now := time.Now()

	var stale []models.Reserva
	if err := s.db.WithContext(ctx).
		Where("estado = ? AND expires_at < ? AND stock_devuelto = ?",
			models.ReservationStatusPendiente, now, false).
		Limit(s.batchSize).
		Find(&stale).Error; err != nil {
		return nil, fmt.Errorf("failed to scan stale reservations: %w", err)
	}
	summary.Scanned = len(stale)

	for i := range stale {
		reserva := stale[i]
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			res := tx.Model(&models.Reserva{}).
				Where("id = ? AND estado = ? AND stock_devuelto = ?",
					reserva.ID, models.ReservationStatusPendiente, false).
				UpdateColumns(map[string]interface{}{
					"estado":         models.ReservationStatusExpirada,
					"stock_devuelto": true,
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				// Someone else got here first. Nothing to credit back.
				summary.AlreadyOK++
				return nil
			}

			if err := returnStock(tx, &reserva); err != nil {
				return err
			}
			summary.Expired++
			return nil
		})
		if err != nil {
			summary.Errored++
			logrus.WithError(err).WithField("reserva_id", reserva.ID).
				Error("Failed to expire reservation")
		}
	}

	if summary.Scanned > 0 {
		logrus.WithFields(logrus.Fields{
			"scanned": summary.Scanned,
			"expired": summary.Expired,
			"skipped": summary.AlreadyOK,
			"errored": summary.Errored,
		}).Info("Reservation sweep completed")
	}
	return summary, nil
}

// RunPeriodic sweeps on an interval until the context is cancelled.
func (s *SweeperService) RunPeriodic(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Sweep(ctx); err != nil {
				logrus.WithError(err).Error("Reservation sweep failed")
			}
		}
	}
}
