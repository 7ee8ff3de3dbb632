package launch

import "fmt"

// ValidationError covers malformed or out-of-range request fields. Nothing
// has been executed when it is returned.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// PaymentVerificationError means the payment proof could not be confirmed:
// not found after retries, mismatched amounts or recipients, an errored
// transaction, or a replayed proof. No ledger mutation has been performed.
type PaymentVerificationError struct {
	Reason string
}

func (e *PaymentVerificationError) Error() string {
	return e.Reason
}

// DuplicateSymbolError means the symbol is already registered.
type DuplicateSymbolError struct {
	Symbol string
}

func (e *DuplicateSymbolError) Error() string {
	return fmt.Sprintf("symbol %s is already registered", e.Symbol)
}

// MetadataUploadError is fatal to the launch; no token row is created.
type MetadataUploadError struct {
	Err error
}

func (e *MetadataUploadError) Error() string {
	return fmt.Sprintf("metadata upload failed: %v", e.Err)
}

func (e *MetadataUploadError) Unwrap() error {
	return e.Err
}

// MintError covers any failure during mint creation, supply minting or
// metadata attachment. Fatal; no token row is created.
type MintError struct {
	Err error
}

func (e *MintError) Error() string {
	return fmt.Sprintf("mint failed: %v", e.Err)
}

func (e *MintError) Unwrap() error {
	return e.Err
}

// LiquidityError covers pool-creation failures. Fatal for the immediate
// tier; for the delayed tier it only downgrades the row's liquidity
// sub-state.
type LiquidityError struct {
	Err error
}

func (e *LiquidityError) Error() string {
	return fmt.Sprintf("liquidity provisioning failed: %v", e.Err)
}

func (e *LiquidityError) Unwrap() error {
	return e.Err
}
