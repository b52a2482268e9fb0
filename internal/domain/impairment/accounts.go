package impairment

import (
	"fmt"

	"github.com/impairment-ledger/internal/domain/account"
)

// AccountSpec describes a ledger account a posting needs: the account to
// create when none exists, and how to recognise an existing one.
type AccountSpec struct {
	Code          string
	Name          string
	Type          account.Type
	NormalBalance *account.NormalBalance
	// CandidateCodes are conventional codes searched first, in order
	CandidateCodes []string
	// NameKeywords are matched case-insensitively against account names
	NameKeywords []string
}

// AccountPair is the debit and credit side of an impairment posting
type AccountPair struct {
	Debit  AccountSpec
	Credit AccountSpec
}

func creditNormal() *account.NormalBalance {
	nb := account.NormalBalanceCredit
	return &nb
}

var (
	BadDebtExpenseAccount = AccountSpec{
		Code:           "6100",
		Name:           "Bad Debt Expense",
		Type:           account.TypeExpense,
		CandidateCodes: []string{"6100", "6150", "5091"},
		NameKeywords:   []string{"bad debt"},
	}
	AllowanceForDoubtfulAccounts = AccountSpec{
		Code:           "1190",
		Name:           "Allowance for Doubtful Accounts",
		Type:           account.TypeAsset,
		NormalBalance:  creditNormal(),
		CandidateCodes: []string{"1190", "1215"},
		NameKeywords:   []string{"allowance"},
	}
	AssetImpairmentExpenseAccount = AccountSpec{
		Code:           "6200",
		Name:           "Impairment Loss - Assets",
		Type:           account.TypeExpense,
		CandidateCodes: []string{"6200", "6210"},
		NameKeywords:   []string{"impairment"},
	}
	AccumulatedImpairmentAccount = AccountSpec{
		Code:           "1590",
		Name:           "Accumulated Impairment - Assets",
		Type:           account.TypeAsset,
		NormalBalance:  creditNormal(),
		CandidateCodes: []string{"1590", "1595"},
		NameKeywords:   []string{"accumulated impairment", "impairment"},
	}
	InventoryWriteDownExpenseAccount = AccountSpec{
		Code:           "5030",
		Name:           "Inventory Write-down Expense",
		Type:           account.TypeExpense,
		CandidateCodes: []string{"5030", "6300"},
		NameKeywords:   []string{"write-down", "write down"},
	}
	InventoryAccount = AccountSpec{
		Code:           "1300",
		Name:           "Inventory",
		Type:           account.TypeAsset,
		CandidateCodes: []string{"1300", "1030", "1400"},
		NameKeywords:   []string{"inventory"},
	}
)

// AccountsFor returns the account pair posted by a calculation type
func AccountsFor(c CalcType) (AccountPair, error) {
	switch c {
	case CalcTypeReceivables:
		return AccountPair{Debit: BadDebtExpenseAccount, Credit: AllowanceForDoubtfulAccounts}, nil
	case CalcTypeAssets:
		return AccountPair{Debit: AssetImpairmentExpenseAccount, Credit: AccumulatedImpairmentAccount}, nil
	case CalcTypeInventory:
		return AccountPair{Debit: InventoryWriteDownExpenseAccount, Credit: InventoryAccount}, nil
	}
	return AccountPair{}, ErrValidation{Field: "calc_type", Reason: fmt.Sprintf("unknown calculation type %q", c)}
}
