package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// JournalRequest describes a two-line posting: one debit and one credit of the same amount.
type JournalRequest struct {
	TenantID      uuid.UUID
	Date          time.Time
	Description   string
	Reference     string
	Type          string
	Amount        decimal.Decimal
	DebitAccount  uuid.UUID
	CreditAccount uuid.UUID
	CreatedBy     string
}

// Journal is a transaction together with its entries and mirrored ledger rows.
type Journal struct {
	Transaction   *Transaction
	Entries       []*Entry
	LedgerEntries []*LedgerEntry
}

// NewJournal builds a pending, balanced two-line journal.
func NewJournal(req JournalRequest) (*Journal, error) {
	if !req.Amount.IsPositive() {
		return nil, ErrNonPositiveAmount
	}
	if req.DebitAccount == req.CreditAccount {
		return nil, ErrSameAccount
	}

	now := time.Now()
	txn := &Transaction{
		ID:          uuid.New(),
		TenantID:    req.TenantID,
		Date:        req.Date,
		Description: req.Description,
		Reference:   req.Reference,
		TotalAmount: req.Amount,
		Type:        req.Type,
		Status:      TransactionStatusPending,
		CreatedBy:   req.CreatedBy,
		CreatedAt:   now,
	}

	entries := []*Entry{
		{ID: uuid.New(), TransactionID: txn.ID, AccountID: req.DebitAccount, Debit: req.Amount, Credit: decimal.Zero, Description: req.Description},
		{ID: uuid.New(), TransactionID: txn.ID, AccountID: req.CreditAccount, Debit: decimal.Zero, Credit: req.Amount, Description: req.Description},
	}

	ledgerEntries := make([]*LedgerEntry, 0, len(entries))
	for _, e := range entries {
		ledgerEntries = append(ledgerEntries, &LedgerEntry{
			ID:            uuid.New(),
			TenantID:      req.TenantID,
			TransactionID: txn.ID,
			AccountID:     e.AccountID,
			EntryDate:     req.Date,
			Debit:         e.Debit,
			Credit:        e.Credit,
			Description:   e.Description,
			CreatedAt:     now,
		})
	}

	j := &Journal{Transaction: txn, Entries: entries, LedgerEntries: ledgerEntries}
	if err := j.Validate(); err != nil {
		return nil, err
	}
	return j, nil
}

// Totals returns the debit and credit sums of the journal entries.
func (j *Journal) Totals() (debits, credits decimal.Decimal) {
	debits, credits = decimal.Zero, decimal.Zero
	for _, e := range j.Entries {
		debits = debits.Add(e.Debit)
		credits = credits.Add(e.Credit)
	}
	return debits, credits
}

// Validate checks that every line is one-sided and that debits equal credits equal the total.
func (j *Journal) Validate() error {
	for _, e := range j.Entries {
		if !e.oneSided() {
			return ErrOneSidedLine
		}
	}
	debits, credits := j.Totals()
	if !debits.Equal(credits) || !debits.Equal(j.Transaction.TotalAmount) {
		return ErrUnbalanced
	}
	return nil
}

// MarkPosted moves the transaction to posted.
func (j *Journal) MarkPosted() {
	j.Transaction.Status = TransactionStatusPosted
}
