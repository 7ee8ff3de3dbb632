package launch

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"launchtrade/internal/models"
	"launchtrade/pkg/ipfs"
	lsolana "launchtrade/pkg/solana"
	"launchtrade/pkg/solana/meteora"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "launch.db")), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Token{}, &models.LiquidityJob{}, &models.ContactMessage{}))
	return db
}

type fakeVerifier struct {
	ok    bool
	err   error
	calls int
}

func (f *fakeVerifier) Verify(ctx context.Context, txSignature, payerWallet string, commissionLamports, adminLamports uint64) (bool, error) {
	f.calls++
	return f.ok, f.err
}

type fakePublisher struct {
	err   error
	calls int
}

func (f *fakePublisher) Publish(ctx context.Context, meta ipfs.TokenMetadata, image []byte, imageName, imageContentType string) (*ipfs.PublishResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &ipfs.PublishResult{
		ImageURL:    ipfs.PlaceholderImageURL,
		MetadataURI: "https://gateway.pinata.cloud/ipfs/QmMetadataHash",
	}, nil
}

type fakeMinter struct {
	err        error
	calls      int
	lastParams lsolana.MintParams
}

func (f *fakeMinter) LaunchMint(ctx context.Context, p lsolana.MintParams) (*lsolana.MintResult, error) {
	f.calls++
	f.lastParams = p
	if f.err != nil {
		return nil, f.err
	}
	return &lsolana.MintResult{
		MintAddress:   fmt.Sprintf("Mint%s%d", p.Symbol, f.calls),
		MintSignature: "mint-sig",
	}, nil
}

type fakePools struct {
	err        error
	calls      int
	lastParams meteora.PoolParams
}

func (f *fakePools) CreatePool(ctx context.Context, p meteora.PoolParams) (*meteora.PoolResult, error) {
	f.calls++
	f.lastParams = p
	if f.err != nil {
		return nil, f.err
	}
	return &meteora.PoolResult{PoolAddress: "Pool1111111111111111111111111111111111111111", Signature: "pool-sig"}, nil
}

type launchFixture struct {
	db       *gorm.DB
	verifier *fakeVerifier
	metadata *fakePublisher
	minter   *fakeMinter
	pools    *fakePools
	svc      *Service
}

func newLaunchFixture(t *testing.T) *launchFixture {
	f := &launchFixture{
		db:       openTestDB(t),
		verifier: &fakeVerifier{ok: true},
		metadata: &fakePublisher{},
		minter:   &fakeMinter{},
		pools:    &fakePools{},
	}
	f.svc = NewService(f.db, f.verifier, f.metadata, f.minter, f.pools)
	return f
}

func TestCreateToken(t *testing.T) {
	t.Run("Basic Launch Persists Token", func(t *testing.T) {
		f := newLaunchFixture(t)
		req := validRequest()

		result, err := f.svc.CreateToken(context.Background(), req)
		require.NoError(t, err)
		assert.NotEmpty(t, result.MintAddress)
		assert.Contains(t, result.JupiterURL, result.MintAddress)
		assert.Contains(t, result.BirdeyeURL, result.MintAddress)
		assert.Nil(t, result.MeteoraURL)

		var token models.Token
		require.NoError(t, f.db.Where("symbol = ?", req.Symbol).First(&token).Error)
		assert.Equal(t, models.LaunchStatePersisted, token.LaunchState)
		assert.Equal(t, req.TxSignature, token.PaymentSignature)
		assert.True(t, token.CommissionPaid)
		assert.True(t, token.AdminPaid)
		assert.InDelta(t, 0.07, token.TotalFeePaid, 1e-12)
		assert.False(t, token.LiquidityAdded)

		var user models.User
		require.NoError(t, f.db.Where("wallet_address = ?", req.UserWallet).First(&user).Error)
		assert.Equal(t, user.ID, token.UserID)

		assert.Equal(t, 0, f.pools.calls)
	})

	t.Run("Supply Converted To Base Units", func(t *testing.T) {
		f := newLaunchFixture(t)
		req := validRequest()
		req.Supply = 5000
		req.Mintable = true

		_, err := f.svc.CreateToken(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, uint64(5000)*uint64(LamportsPerSOL), f.minter.lastParams.SupplyBaseUnits)
		assert.True(t, f.minter.lastParams.Mintable)
	})

	t.Run("Duplicate Symbol Rejected", func(t *testing.T) {
		f := newLaunchFixture(t)
		req := validRequest()
		_, err := f.svc.CreateToken(context.Background(), req)
		require.NoError(t, err)

		replay := validRequest()
		replay.TxSignature = "differentSignature2222222222222222222222222"
		_, err = f.svc.CreateToken(context.Background(), replay)
		var dup *DuplicateSymbolError
		require.ErrorAs(t, err, &dup)
		assert.Equal(t, req.Symbol, dup.Symbol)
		assert.Equal(t, 1, f.minter.calls)
	})

	t.Run("Payment Proof Replay Rejected", func(t *testing.T) {
		f := newLaunchFixture(t)
		req := validRequest()
		_, err := f.svc.CreateToken(context.Background(), req)
		require.NoError(t, err)

		replay := validRequest()
		replay.Symbol = "OTHER"
		_, err = f.svc.CreateToken(context.Background(), replay)
		var payment *PaymentVerificationError
		require.ErrorAs(t, err, &payment)
		assert.Contains(t, payment.Reason, "already used")
		assert.Equal(t, 1, f.minter.calls)
	})

	t.Run("Unverified Payment Rejected Before Mint", func(t *testing.T) {
		f := newLaunchFixture(t)
		f.verifier.ok = false

		_, err := f.svc.CreateToken(context.Background(), validRequest())
		var payment *PaymentVerificationError
		require.ErrorAs(t, err, &payment)
		assert.Equal(t, 0, f.minter.calls)
		assert.Equal(t, 0, f.metadata.calls)
	})

	t.Run("Verifier Transport Failure Reported As Verification Failure", func(t *testing.T) {
		f := newLaunchFixture(t)
		f.verifier.ok = false
		f.verifier.err = fmt.Errorf("rpc unreachable")

		_, err := f.svc.CreateToken(context.Background(), validRequest())
		var payment *PaymentVerificationError
		require.ErrorAs(t, err, &payment)
		assert.Equal(t, "payment could not be verified", payment.Reason)
	})

	t.Run("Metadata Failure Aborts Before Mint", func(t *testing.T) {
		f := newLaunchFixture(t)
		f.metadata.err = fmt.Errorf("pinata down")

		_, err := f.svc.CreateToken(context.Background(), validRequest())
		var upload *MetadataUploadError
		require.ErrorAs(t, err, &upload)
		assert.Equal(t, 0, f.minter.calls)

		var count int64
		f.db.Model(&models.Token{}).Count(&count)
		assert.Zero(t, count)
	})

	t.Run("Price Floor Failure Skips All External Calls", func(t *testing.T) {
		f := newLaunchFixture(t)
		req := validRequest()
		req.PlanType = PlanAdvanced
		req.AutoLiquidity = true
		req.LiquiditySOL = 0.5
		req.LiquidityTokens = 100_000_000_000

		_, err := f.svc.CreateToken(context.Background(), req)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, 0, f.verifier.calls)
		assert.Equal(t, 0, f.minter.calls)
		assert.Equal(t, 0, f.pools.calls)
	})

	t.Run("Advanced Plan Seeds Pool Immediately", func(t *testing.T) {
		f := newLaunchFixture(t)
		req := validRequest()
		req.PlanType = PlanAdvanced
		req.AutoLiquidity = true
		req.LiquiditySOL = 2
		req.LiquidityTokens = 100_000

		result, err := f.svc.CreateToken(context.Background(), req)
		require.NoError(t, err)
		require.NotNil(t, result.MeteoraURL)
		assert.Contains(t, *result.MeteoraURL, "Pool1111111111111111111111111111111111111111")

		assert.Equal(t, 1, f.pools.calls)
		assert.Equal(t, result.MintAddress, f.pools.lastParams.BaseMint)
		assert.Equal(t, uint64(100_000)*uint64(LamportsPerSOL), f.pools.lastParams.TokenBaseUnits)
		assert.Equal(t, uint64(2)*uint64(LamportsPerSOL), f.pools.lastParams.QuoteLamports)

		var token models.Token
		require.NoError(t, f.db.Where("symbol = ?", req.Symbol).First(&token).Error)
		assert.True(t, token.LiquidityAdded)
		assert.NotNil(t, token.LiquidityAddedAt)
		assert.Equal(t, models.LaunchStatePersisted, token.LaunchState)

		var jobs int64
		f.db.Model(&models.LiquidityJob{}).Count(&jobs)
		assert.Zero(t, jobs)
	})

	t.Run("Standard Plan Schedules Delayed Liquidity", func(t *testing.T) {
		f := newLaunchFixture(t)
		req := validRequest()
		req.PlanType = PlanStandard
		req.AutoLiquidity = true
		req.LiquiditySOL = 1
		req.LiquidityTokens = 50_000

		before := time.Now().UTC()
		result, err := f.svc.CreateToken(context.Background(), req)
		require.NoError(t, err)
		assert.Nil(t, result.MeteoraURL)
		assert.Equal(t, 0, f.pools.calls)

		var token models.Token
		require.NoError(t, f.db.Where("symbol = ?", req.Symbol).First(&token).Error)
		assert.Equal(t, models.LaunchStateLiquidityPending, token.LaunchState)
		assert.True(t, token.CooldownApplied)
		require.NotNil(t, token.CooldownTimestamp)
		assert.False(t, token.LiquidityAdded)

		var job models.LiquidityJob
		require.NoError(t, f.db.Where("mint_address = ?", token.MintAddress).First(&job).Error)
		assert.Equal(t, models.JobStatusPending, job.Status)
		assert.WithinDuration(t, before.Add(CooldownDelay), job.ScheduledFor, 5*time.Second)
	})

	t.Run("Pool Failure Surfaces As Liquidity Error", func(t *testing.T) {
		f := newLaunchFixture(t)
		f.pools.err = fmt.Errorf("pool program rejected")
		req := validRequest()
		req.PlanType = PlanAdvanced
		req.AutoLiquidity = true
		req.LiquiditySOL = 2
		req.LiquidityTokens = 100_000

		_, err := f.svc.CreateToken(context.Background(), req)
		var liquidity *LiquidityError
		require.ErrorAs(t, err, &liquidity)
	})
}

type recordingPublisher struct {
	queue   string
	payload interface{}
}

func (r *recordingPublisher) Publish(queueName string, message interface{}) error {
	r.queue = queueName
	r.payload = message
	return nil
}

func TestLaunchedEventPublishing(t *testing.T) {
	f := newLaunchFixture(t)
	events := &recordingPublisher{}
	f.svc.SetEventPublisher(events)

	result, err := f.svc.CreateToken(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, LaunchedEventQueue, events.queue)
	event, ok := events.payload.(launchedEvent)
	require.True(t, ok)
	assert.Equal(t, result.MintAddress, event.MintAddress)
	assert.Equal(t, "EXC", event.Symbol)
}

func TestTokensByWallet(t *testing.T) {
	f := newLaunchFixture(t)

	t.Run("Unknown Wallet Returns Empty Slice", func(t *testing.T) {
		tokens, err := f.svc.TokensByWallet("UnknownWallet11111111111111111111111111111")
		require.NoError(t, err)
		assert.NotNil(t, tokens)
		assert.Empty(t, tokens)
	})

	t.Run("Returns Only The Wallet's Tokens", func(t *testing.T) {
		first := validRequest()
		_, err := f.svc.CreateToken(context.Background(), first)
		require.NoError(t, err)

		second := validRequest()
		second.UserWallet = "4Nd1mY5fVsLzWw5oQrz6GpYRz9sDF2PtBDbGnVPEJQwC"
		second.Symbol = "OTHER"
		second.TxSignature = "anotherSignature33333333333333333333333333"
		_, err = f.svc.CreateToken(context.Background(), second)
		require.NoError(t, err)

		tokens, err := f.svc.TokensByWallet(first.UserWallet)
		require.NoError(t, err)
		require.Len(t, tokens, 1)
		assert.Equal(t, first.Symbol, tokens[0].Symbol)
	})
}

func TestRandomTokens(t *testing.T) {
	f := newLaunchFixture(t)
	for i := 0; i < 5; i++ {
		req := validRequest()
		req.Symbol = fmt.Sprintf("RND%d", i)
		req.TxSignature = fmt.Sprintf("randomSignature%d4444444444444444444444444", i)
		_, err := f.svc.CreateToken(context.Background(), req)
		require.NoError(t, err)
	}

	t.Run("Respects Limit", func(t *testing.T) {
		samples, err := f.svc.RandomTokens(3)
		require.NoError(t, err)
		assert.Len(t, samples, 3)
	})

	t.Run("Clamps Out Of Range Limit", func(t *testing.T) {
		samples, err := f.svc.RandomTokens(0)
		require.NoError(t, err)
		assert.Len(t, samples, 5)
	})
}
