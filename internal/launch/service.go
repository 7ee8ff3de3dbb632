package launch

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"launchtrade/internal/models"
	"launchtrade/pkg/ipfs"
	lsolana "launchtrade/pkg/solana"
	"launchtrade/pkg/solana/meteora"
	"launchtrade/pkg/utils"
)

// PaymentVerifier confirms that a submitted payment proof moved the exact
// fee amounts.
type PaymentVerifier interface {
	Verify(ctx context.Context, txSignature, payerWallet string, commissionLamports, adminLamports uint64) (bool, error)
}

// MetadataPublisher produces a durable content-addressed metadata URI and
// the pinned image location.
type MetadataPublisher interface {
	Publish(ctx context.Context, meta ipfs.TokenMetadata, image []byte, imageName, imageContentType string) (*ipfs.PublishResult, error)
}

// TokenMinter creates the mint, holding account, supply and on-ledger
// metadata.
type TokenMinter interface {
	LaunchMint(ctx context.Context, p lsolana.MintParams) (*lsolana.MintResult, error)
}

// LiquidityProvisioner creates and seeds a pool for a launched token.
type LiquidityProvisioner interface {
	CreatePool(ctx context.Context, p meteora.PoolParams) (*meteora.PoolResult, error)
}

// EventPublisher is the optional message-queue capability; a nil publisher
// disables events.
type EventPublisher interface {
	Publish(queueName string, message interface{}) error
}

// LaunchedEventQueue receives a message per persisted launch.
const LaunchedEventQueue = "token.launched"

// Service orchestrates the token-launch workflow.
type Service struct {
	db        *gorm.DB
	verifier  PaymentVerifier
	publisher MetadataPublisher
	minter    TokenMinter
	pools     LiquidityProvisioner
	events    EventPublisher
}

// NewService wires the orchestrator.
func NewService(db *gorm.DB, verifier PaymentVerifier, publisher MetadataPublisher, minter TokenMinter, pools LiquidityProvisioner) *Service {
	return &Service{
		db:        db,
		verifier:  verifier,
		publisher: publisher,
		minter:    minter,
		pools:     pools,
	}
}

// SetEventPublisher enables launch-event publishing.
func (s *Service) SetEventPublisher(events EventPublisher) {
	s.events = events
}

// CreateTokenResult is returned to the transport layer on success.
type CreateTokenResult struct {
	Token       *models.Token
	MintAddress string
	JupiterURL  string
	BirdeyeURL  string
	MeteoraURL  *string
	Message     string
}

type launchedEvent struct {
	MintAddress string `json:"mint_address"`
	Symbol      string `json:"symbol"`
	Wallet      string `json:"wallet"`
	Plan        string `json:"plan"`
}

// CreateToken runs the launch state machine: validate, verify payment,
// publish metadata, mint, provision liquidity per plan, persist. Failure at
// any step before persistence aborts with nothing written; once minting has
// happened the mint is treated as irreversible truth and is never undone.
func (s *Service) CreateToken(ctx context.Context, req CreateTokenRequest) (*CreateTokenResult, error) {
	logger := log.WithFields(log.Fields{"symbol": req.Symbol, "wallet": req.UserWallet, "plan": req.PlanType})
	logger.WithField("state", models.LaunchStateValidating).Info("launch started")

	fees, err := req.validate()
	if err != nil {
		return nil, err
	}

	// Pre-flight duplicate checks. The unique constraints remain the
	// correctness backstop under concurrency.
	var count int64
	if err := s.db.Model(&models.Token{}).Where("symbol = ?", req.Symbol).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("symbol lookup failed: %w", err)
	}
	if count > 0 {
		return nil, &DuplicateSymbolError{Symbol: req.Symbol}
	}
	if err := s.db.Model(&models.Token{}).Where("payment_signature = ?", req.TxSignature).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("payment signature lookup failed: %w", err)
	}
	if count > 0 {
		return nil, &PaymentVerificationError{Reason: "payment proof already used for another launch"}
	}

	logger.WithField("state", models.LaunchStatePaymentVerifying).Info("verifying payment")
	ok, err := s.verifier.Verify(ctx, req.TxSignature, req.UserWallet, fees.CommissionLamports, fees.AdminLamports)
	if err != nil {
		logger.Warnf("payment verification transport failure: %v", err)
		return nil, &PaymentVerificationError{Reason: "payment could not be verified"}
	}
	if !ok {
		return nil, &PaymentVerificationError{Reason: "payment not found or amounts do not match the selected plan"}
	}

	user, err := s.findOrCreateUser(req.UserWallet)
	if err != nil {
		return nil, fmt.Errorf("user lookup failed: %w", err)
	}

	logger.WithField("state", models.LaunchStateMetadataPublishing).Info("publishing metadata")
	published, err := s.publisher.Publish(ctx, ipfs.TokenMetadata{
		Name:        req.Name,
		Symbol:      req.Symbol,
		Description: req.Description,
	}, req.Image, req.ImageName, req.ImageContentType)
	if err != nil {
		return nil, &MetadataUploadError{Err: err}
	}

	logger.WithField("state", models.LaunchStateMinting).Info("minting token")
	minted, err := s.minter.LaunchMint(ctx, lsolana.MintParams{
		Name:            req.Name,
		Symbol:          req.Symbol,
		MetadataURI:     published.MetadataURI,
		SupplyBaseUnits: req.Supply * LamportsPerSOL,
		OwnerWallet:     req.UserWallet,
		Mintable:        req.Mintable,
	})
	if err != nil {
		return nil, &MintError{Err: err}
	}
	logger = logger.WithField("mint", minted.MintAddress)

	jupiterURL := utils.JupiterURL(minted.MintAddress)
	birdeyeURL := utils.BirdeyeURL(minted.MintAddress)

	token := &models.Token{
		UserID:           user.ID,
		Name:             req.Name,
		Symbol:           req.Symbol,
		Supply:           req.Supply,
		Description:      req.Description,
		ImageURL:         published.ImageURL,
		MetadataURI:      published.MetadataURI,
		MintAddress:      minted.MintAddress,
		Mintable:         req.Mintable,
		PlanType:         string(req.PlanType),
		CommissionPaid:   true,
		CommissionAmount: fees.CommissionSOL(),
		AdminPaid:        true,
		AdminAmount:      fees.AdminSOL(),
		TotalFeePaid:     fees.TotalSOL(),
		PaymentSignature: req.TxSignature,
		AutoLiquidity:    req.AutoLiquidity,
		JupiterURL:       &jupiterURL,
		BirdeyeURL:       &birdeyeURL,
	}

	message := "Token created successfully"

	switch {
	case req.AutoLiquidity && req.PlanType == PlanAdvanced:
		logger.WithField("state", models.LaunchStateLiquidityImmediate).Info("creating pool")
		pool, err := s.pools.CreatePool(ctx, meteora.PoolParams{
			BaseMint:       minted.MintAddress,
			TokenBaseUnits: uint64(req.LiquidityTokens * LamportsPerSOL),
			QuoteLamports:  uint64(req.LiquiditySOL * LamportsPerSOL),
		})
		if err != nil {
			return nil, &LiquidityError{Err: err}
		}
		now := time.Now().UTC()
		meteoraURL := utils.MeteoraPoolURL(pool.PoolAddress)
		token.InitialLiquidityToken = req.LiquidityTokens
		token.InitialLiquiditySOL = req.LiquiditySOL
		token.LiquidityAdded = true
		token.LiquidityAddedAt = &now
		token.MeteoraURL = &meteoraURL
		token.LaunchState = models.LaunchStatePersisted
		message = "Token created and pool seeded"

		if err := s.persistToken(token, nil); err != nil {
			return nil, err
		}

	case req.AutoLiquidity && req.PlanType == PlanStandard:
		now := time.Now().UTC()
		runAt := now.Add(CooldownDelay)
		token.InitialLiquidityToken = req.LiquidityTokens
		token.InitialLiquiditySOL = req.LiquiditySOL
		token.CooldownApplied = true
		token.CooldownTimestamp = &now
		token.LaunchState = models.LaunchStateLiquidityPending
		message = fmt.Sprintf("Token created; liquidity will be added after a %s cooldown", CooldownDelay)

		job := &models.LiquidityJob{
			MintAddress:  minted.MintAddress,
			ScheduledFor: runAt,
			Status:       models.JobStatusPending,
		}
		if err := s.persistToken(token, job); err != nil {
			return nil, err
		}
		logger.WithField("state", models.LaunchStateLiquidityPending).Infof("liquidity job scheduled for %s", runAt)

	default:
		token.LaunchState = models.LaunchStatePersisted
		if err := s.persistToken(token, nil); err != nil {
			return nil, err
		}
	}

	s.publishLaunchedEvent(token)
	logger.WithField("state", token.LaunchState).Info("launch persisted")

	return &CreateTokenResult{
		Token:       token,
		MintAddress: token.MintAddress,
		JupiterURL:  jupiterURL,
		BirdeyeURL:  birdeyeURL,
		MeteoraURL:  token.MeteoraURL,
		Message:     message,
	}, nil
}

// persistToken writes the token row (and the optional liquidity job) in one
// transaction, classifying unique-constraint violations.
func (s *Service) persistToken(token *models.Token, job *models.LiquidityJob) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(token).Error; err != nil {
			return err
		}
		if job != nil {
			if err := tx.Create(job).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// A concurrent launch won the race; classify by what exists now.
		var count int64
		if s.db.Model(&models.Token{}).Where("symbol = ?", token.Symbol).Count(&count); count > 0 {
			return &DuplicateSymbolError{Symbol: token.Symbol}
		}
		if s.db.Model(&models.Token{}).Where("payment_signature = ?", token.PaymentSignature).Count(&count); count > 0 {
			return &PaymentVerificationError{Reason: "payment proof already used for another launch"}
		}
	}
	return fmt.Errorf("failed to persist token: %w", err)
}

func (s *Service) findOrCreateUser(wallet string) (*models.User, error) {
	var user models.User
	err := s.db.Where("wallet_address = ?", wallet).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user = models.User{WalletAddress: wallet}
	if err := s.db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost a concurrent find-or-create; fetch the winner.
			if err := s.db.Where("wallet_address = ?", wallet).First(&user).Error; err != nil {
				return nil, err
			}
			return &user, nil
		}
		return nil, err
	}
	return &user, nil
}

func (s *Service) publishLaunchedEvent(token *models.Token) {
	if s.events == nil {
		return
	}
	var wallet string
	var user models.User
	if err := s.db.First(&user, token.UserID).Error; err == nil {
		wallet = user.WalletAddress
	}
	event := launchedEvent{
		MintAddress: token.MintAddress,
		Symbol:      token.Symbol,
		Wallet:      wallet,
		Plan:        token.PlanType,
	}
	if err := s.events.Publish(LaunchedEventQueue, event); err != nil {
		log.Warnf("failed to publish launch event for %s: %v", token.MintAddress, err)
	}
}

// TokensByWallet returns a wallet's tokens, newest first.
func (s *Service) TokensByWallet(wallet string) ([]models.Token, error) {
	var user models.User
	err := s.db.Where("wallet_address = ?", wallet).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return []models.Token{}, nil
	}
	if err != nil {
		return nil, err
	}

	var tokens []models.Token
	if err := s.db.Where("user_id = ?", user.ID).Order("created_at DESC").Find(&tokens).Error; err != nil {
		return nil, err
	}
	return tokens, nil
}

// RandomTokenSample is the display-only projection of a token.
type RandomTokenSample struct {
	Symbol   string `json:"symbol"`
	ImageURL string `json:"image_url"`
}

// RandomTokens returns a small random sample for display purposes.
func (s *Service) RandomTokens(limit int) ([]RandomTokenSample, error) {
	if limit < 1 || limit > 50 {
		limit = 10
	}
	var samples []RandomTokenSample
	err := s.db.Model(&models.Token{}).
		Select("symbol", "image_url").
		Order("random()").
		Limit(limit).
		Scan(&samples).Error
	if err != nil {
		return nil, err
	}
	return samples, nil
}
