package errclass

// tableEntry is the user-facing copy for one known custom error.
type tableEntry struct {
	Title   string
	Message string
	Hint    string
}

// revertTable maps every custom error the game contracts declare to its
// user-facing treatment. An unmapped identifier still classifies as a
// contract revert, with generic copy.
var revertTable = map[string]tableEntry{
	"Vault__AmountZero": {
		Title:   "Amount required",
		Message: "The amount must be greater than zero.",
		Hint:    "Enter an amount and try again.",
	},
	"Vault__InsufficientShares": {
		Title:   "Not enough deposited",
		Message: "You are trying to withdraw more than you have deposited.",
		Hint:    "Lower the amount to at most your deposited balance.",
	},
	"Vault__CooldownActive": {
		Title:   "Cooldown active",
		Message: "Withdrawals are briefly locked after a deposit.",
		Hint:    "Wait for the cooldown to pass, then retry.",
	},
	"Vault__FlashLoanNotRepaid": {
		Title:   "Flash loan failed",
		Message: "The borrowed amount was not repaid within the transaction.",
		Hint:    "Check the receiver contract's repayment logic.",
	},
	"Vault__NothingToClaim": {
		Title:   "Nothing to claim",
		Message: "No yield has accrued since your last claim.",
		Hint:    "Check back after the next distribution.",
	},
	"Governance__AlreadyVoted": {
		Title:   "Already voted",
		Message: "You have already voted on this proposal.",
	},
	"Governance__NoVotingPower": {
		Title:   "No voting power",
		Message: "Voting power comes from deposited tokens.",
		Hint:    "Deposit first, then vote.",
	},
	"Governance__ProposalClosed": {
		Title:   "Voting closed",
		Message: "This proposal is no longer accepting votes.",
	},
	"Pin__AlreadyMinted": {
		Title:   "Pin already minted",
		Message: "Each player can mint only one pin.",
	},
	"Pin__MintClosed": {
		Title:   "Minting closed",
		Message: "Pin minting is not currently open.",
		Hint:    "Watch the announcements for the next window.",
	},
	"Pin__ContentIdEmpty": {
		Title:   "Pin generation incomplete",
		Message: "The pin image was not ready when the mint was submitted.",
		Hint:    "Try the mint again.",
	},
	"Flair__SoldOut": {
		Title:   "Sold out",
		Message: "This flair type has no supply left.",
		Hint:    "Pick a different flair.",
	},
	"Flair__SlotOccupied": {
		Title:   "Slot occupied",
		Message: "Another flair is already equipped in that slot.",
		Hint:    "Unequip it first or choose another slot.",
	},
	"Flair__NotEquipped": {
		Title:   "Nothing equipped",
		Message: "That slot has no flair equipped.",
	},
	"Flair__PriceMoved": {
		Title:   "Price changed",
		Message: "The flair price moved before your purchase confirmed.",
		Hint:    "Review the new price and retry.",
	},
	"Flair__FuseIncompatible": {
		Title:   "Cannot fuse",
		Message: "These two flair types cannot be fused together.",
		Hint:    "Check the fusion chart for valid pairs.",
	},
	"Flair__OperatorNotApproved": {
		Title:   "Approval required",
		Message: "The game contract needs permission to move your flair.",
		Hint:    "Approve the operator and retry.",
	},
	"Auction__BidBelowPrice": {
		Title:   "Bid too low",
		Message: "The auction price is above your bid.",
		Hint:    "Refresh the price and bid again — it falls over time.",
	},
	"Auction__LotExhausted": {
		Title:   "Lot exhausted",
		Message: "The current auction lot has sold out.",
		Hint:    "Wait for the next lot to open.",
	},
	"Auction__NotLive": {
		Title:   "No auction running",
		Message: "There is no live auction right now.",
	},
	"ERC20InsufficientBalance": {
		Title:   "Insufficient token balance",
		Message: "Your token balance does not cover this payment.",
		Hint:    "Add tokens and try again.",
	},
	"ERC20InsufficientAllowance": {
		Title:   "Approval too low",
		Message: "The approved spending limit is below the required amount.",
		Hint:    "Re-run the action so it can top up the approval.",
	},
}

// KnownRevert reports whether name is in the static revert table.
func KnownRevert(name string) bool {
	_, ok := revertTable[name]
	return ok
}
