package types

// DefaultGroupID is the group seeded at chain initialization.
const DefaultGroupID = "main"

// LendingGroup is the top-level container banks and accounts belong to. The
// admin configures banks and collects group fees; the program fee rate
// carves a share of group fees out for the protocol when enabled.
type LendingGroup struct {
	ID    string `json:"id"`
	Admin string `json:"admin"`

	ProgramFeesEnabled bool   `json:"program_fees_enabled"`
	ProgramFeeRate     I80F48 `json:"program_fee_rate"`

	CreatedAt int64 `json:"created_at"`
}

func (g *LendingGroup) Validate() error {
	if g.ID == "" {
		return ErrInvalidConfig.Wrap("group id must not be empty")
	}
	if g.Admin == "" {
		return ErrInvalidConfig.Wrap("group admin must not be empty")
	}
	if g.ProgramFeeRate.IsNegative() || g.ProgramFeeRate.GT(OneFixed()) {
		return ErrInvalidConfig.Wrap("program fee rate out of [0, 1]")
	}
	return nil
}
