package launch

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"launchtrade/internal/models"
	"launchtrade/pkg/solana/meteora"
	"launchtrade/pkg/utils"
)

// ProcessDueJobs runs every pending liquidity job whose schedule has
// elapsed. Each job is claimed with a guarded status transition so two
// workers cannot execute it twice, runs exactly once, and is never retried:
// a failed job leaves its token row liquidity-pending for manual follow-up.
func (s *Service) ProcessDueJobs(ctx context.Context) {
	var jobs []models.LiquidityJob
	err := s.db.Where("status = ? AND scheduled_for <= ?", models.JobStatusPending, time.Now().UTC()).
		Order("scheduled_for ASC").
		Find(&jobs).Error
	if err != nil {
		log.Errorf("failed to query due liquidity jobs: %v", err)
		return
	}

	for _, job := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}
		s.runLiquidityJob(ctx, job)
	}
}

func (s *Service) runLiquidityJob(ctx context.Context, job models.LiquidityJob) {
	logger := log.WithFields(log.Fields{"job_id": job.ID, "mint": job.MintAddress})

	claimed := s.db.Model(&models.LiquidityJob{}).
		Where("id = ? AND status = ?", job.ID, models.JobStatusPending).
		Update("status", models.JobStatusRunning)
	if claimed.Error != nil {
		logger.Errorf("failed to claim liquidity job: %v", claimed.Error)
		return
	}
	if claimed.RowsAffected == 0 {
		// Another worker got there first.
		return
	}

	var token models.Token
	if err := s.db.Where("mint_address = ?", job.MintAddress).First(&token).Error; err != nil {
		reason := "token row not found for scheduled liquidity"
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			reason = err.Error()
		}
		s.failJob(job.ID, reason)
		logger.Errorf("liquidity job aborted: %s", reason)
		return
	}
	if token.LiquidityAdded {
		// Already completed; mark the job done without touching the row.
		s.completeJob(job.ID)
		return
	}

	logger.Info("creating delayed liquidity pool")
	pool, err := s.pools.CreatePool(ctx, meteora.PoolParams{
		BaseMint:       token.MintAddress,
		TokenBaseUnits: uint64(token.InitialLiquidityToken * LamportsPerSOL),
		QuoteLamports:  uint64(token.InitialLiquiditySOL * LamportsPerSOL),
	})
	if err != nil {
		s.failJob(job.ID, err.Error())
		logger.Errorf("delayed liquidity failed, row left pending: %v", err)
		return
	}

	now := time.Now().UTC()
	meteoraURL := utils.MeteoraPoolURL(pool.PoolAddress)
	updates := map[string]interface{}{
		"liquidity_added":    true,
		"liquidity_added_at": &now,
		"meteora_url":        &meteoraURL,
		"launch_state":       models.LaunchStatePersisted,
	}
	// Update by mint address, exactly once, never recreating the row.
	if err := s.db.Model(&models.Token{}).Where("mint_address = ?", token.MintAddress).Updates(updates).Error; err != nil {
		s.failJob(job.ID, err.Error())
		logger.Errorf("failed to update token row after pool creation: %v", err)
		return
	}

	s.completeJob(job.ID)
	logger.Infof("delayed liquidity added, pool %s", pool.PoolAddress)
}

func (s *Service) completeJob(jobID uint) {
	if err := s.db.Model(&models.LiquidityJob{}).Where("id = ?", jobID).
		Update("status", models.JobStatusCompleted).Error; err != nil {
		log.Errorf("failed to mark liquidity job %d completed: %v", jobID, err)
	}
}

func (s *Service) failJob(jobID uint, reason string) {
	if err := s.db.Model(&models.LiquidityJob{}).Where("id = ?", jobID).
		Updates(map[string]interface{}{
			"status":     models.JobStatusFailed,
			"last_error": reason,
		}).Error; err != nil {
		log.Errorf("failed to mark liquidity job %d failed: %v", jobID, err)
	}
}
