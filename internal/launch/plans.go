package launch

import (
	"fmt"
	"time"
)

// PlanType enumerates the launch tiers.
type PlanType string

const (
	PlanBasic    PlanType = "basic"
	PlanStandard PlanType = "standard"
	PlanAdvanced PlanType = "advanced"
)

const (
	LamportsPerSOL = 1_000_000_000

	// MinSupply is the minimum number of whole tokens a launch may mint.
	MinSupply = 1000

	// PriceFloor is the minimum accepted liquiditySOL/liquidityTokens ratio.
	PriceFloor = 1e-7

	// CooldownDelay is the fixed delay before delayed-tier liquidity runs.
	CooldownDelay = 5 * time.Minute
)

// PlanFees is the exact fee pair a plan must have paid, in lamports. Both
// legs are verified independently against the submitted transaction.
type PlanFees struct {
	CommissionLamports uint64
	AdminLamports      uint64
}

var planFees = map[PlanType]PlanFees{
	PlanBasic:    {CommissionLamports: 49_000_000, AdminLamports: 21_000_000},
	PlanStandard: {CommissionLamports: 99_000_000, AdminLamports: 31_000_000},
	PlanAdvanced: {CommissionLamports: 199_000_000, AdminLamports: 51_000_000},
}

// FeesFor returns the fee pair for a plan.
func FeesFor(plan PlanType) (PlanFees, bool) {
	fees, ok := planFees[plan]
	return fees, ok
}

func (f PlanFees) CommissionSOL() float64 {
	return float64(f.CommissionLamports) / LamportsPerSOL
}

func (f PlanFees) AdminSOL() float64 {
	return float64(f.AdminLamports) / LamportsPerSOL
}

func (f PlanFees) TotalSOL() float64 {
	return float64(f.CommissionLamports+f.AdminLamports) / LamportsPerSOL
}

// CreateTokenRequest is the validated input of a launch.
type CreateTokenRequest struct {
	UserWallet      string
	Name            string
	Symbol          string
	Supply          uint64
	Description     string
	PlanType        PlanType
	AutoLiquidity   bool
	LiquiditySOL    float64
	LiquidityTokens float64
	Mintable        bool
	TxSignature     string

	Image            []byte
	ImageName        string
	ImageContentType string
}

// validate checks every request invariant that can be decided without a
// network or ledger call, and resolves the plan's fee pair.
func (r *CreateTokenRequest) validate() (PlanFees, error) {
	if r.UserWallet == "" {
		return PlanFees{}, &ValidationError{Reason: "user_wallet is required"}
	}
	if r.Name == "" || r.Symbol == "" {
		return PlanFees{}, &ValidationError{Reason: "name and symbol are required"}
	}
	if r.TxSignature == "" {
		return PlanFees{}, &ValidationError{Reason: "txSignature is required"}
	}

	fees, ok := FeesFor(r.PlanType)
	if !ok {
		return PlanFees{}, &ValidationError{Reason: fmt.Sprintf("unknown plan type %q", r.PlanType)}
	}

	if r.Supply < MinSupply {
		return PlanFees{}, &ValidationError{Reason: fmt.Sprintf("supply must be at least %d", MinSupply)}
	}

	if r.AutoLiquidity {
		if r.PlanType == PlanBasic {
			return PlanFees{}, &ValidationError{Reason: "basic plan does not include liquidity provisioning"}
		}
		if r.LiquiditySOL <= 0 || r.LiquidityTokens <= 0 {
			return PlanFees{}, &ValidationError{Reason: "liquiditySOL and liquidityTokens are required for auto liquidity"}
		}
		if r.LiquiditySOL/r.LiquidityTokens < PriceFloor {
			return PlanFees{}, &ValidationError{Reason: fmt.Sprintf("liquidity price ratio below floor %g", PriceFloor)}
		}
	}

	return fees, nil
}
