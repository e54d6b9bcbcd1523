package ledger

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Dates on the wire are ISO YYYY-MM-DD.
const dateLayout = "2006-01-02"

type accountTypeRequest struct {
	Name          string `json:"name" validate:"required"`
	NormalBalance string `json:"normal_balance" validate:"required,oneof=DEBIT CREDIT"`
}

type accountRequest struct {
	Code            string  `json:"account_code" validate:"required"`
	Name            string  `json:"name" validate:"required"`
	TypeID          int64   `json:"account_type_id" validate:"required"`
	CashFlowSection *string `json:"cash_flow_section" validate:"omitempty,oneof=OPERATING INVESTING FINANCING"`
	IsDefault       bool    `json:"is_default"`
}

type journalLineRequest struct {
	AccountID int64  `json:"account_id" validate:"required"`
	Amount    string `json:"amount" validate:"required"`
	IsDebit   bool   `json:"is_debit"`
}

type journalEntryRequest struct {
	Date        string               `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Description string               `json:"description" validate:"required"`
	Reference   string               `json:"reference"`
	CreatedBy   int64                `json:"created_by"`
	Lines       []journalLineRequest `json:"transactions" validate:"required,min=2,dive"`
}

func (req journalEntryRequest) toInput() (EntryInput, error) {
	input := EntryInput{
		Description: req.Description,
		Reference:   req.Reference,
		CreatedBy:   req.CreatedBy,
	}
	if req.Date != "" {
		date, err := time.Parse(dateLayout, req.Date)
		if err != nil {
			return EntryInput{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", req.Date)
		}
		input.Date = date
	}
	for idx, line := range req.Lines {
		amount, err := decimal.NewFromString(line.Amount)
		if err != nil {
			return EntryInput{}, fmt.Errorf("line %d: invalid amount %q", idx, line.Amount)
		}
		input.Lines = append(input.Lines, LineInput{
			AccountID: line.AccountID,
			Amount:    amount,
			IsDebit:   line.IsDebit,
		})
	}
	return input, nil
}

type accountTypeResponse struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	NormalBalance string `json:"normal_balance"`
	Archived      bool   `json:"archived"`
}

type accountResponse struct {
	ID              int64   `json:"id"`
	Code            string  `json:"account_code"`
	Name            string  `json:"name"`
	TypeID          int64   `json:"account_type_id"`
	TypeName        string  `json:"account_type"`
	NormalBalance   string  `json:"normal_balance"`
	CashFlowSection *string `json:"cash_flow_section,omitempty"`
	IsDefault       bool    `json:"is_default"`
	Archived        bool    `json:"archived"`
}

type transactionResponse struct {
	ID          int64  `json:"id"`
	EntryID     int64  `json:"journal_entry_id"`
	AccountID   int64  `json:"account_id"`
	AccountCode string `json:"account_code"`
	AccountName string `json:"account_name"`
	Amount      string `json:"amount"`
	IsDebit     bool   `json:"is_debit"`
}

type journalEntryResponse struct {
	ID          int64                 `json:"id"`
	Date        string                `json:"date"`
	Description string                `json:"description"`
	Reference   string                `json:"reference"`
	CreatedBy   int64                 `json:"created_by"`
	ReversedBy  *int64                `json:"reversed_by,omitempty"`
	Lines       []transactionResponse `json:"transactions"`
}

func toAccountTypeResponse(t AccountType) accountTypeResponse {
	return accountTypeResponse{
		ID:            t.ID,
		Name:          t.Name,
		NormalBalance: string(t.NormalBalance),
		Archived:      t.Archived,
	}
}

func toAccountResponse(a Account) accountResponse {
	resp := accountResponse{
		ID:            a.ID,
		Code:          a.Code,
		Name:          a.Name,
		TypeID:        a.TypeID,
		TypeName:      a.TypeName,
		NormalBalance: string(a.NormalBalance),
		IsDefault:     a.IsDefault,
		Archived:      a.Archived,
	}
	if a.CashFlowSection != nil {
		section := string(*a.CashFlowSection)
		resp.CashFlowSection = &section
	}
	return resp
}

func toTransactionResponse(tx Transaction) transactionResponse {
	return transactionResponse{
		ID:          tx.ID,
		EntryID:     tx.EntryID,
		AccountID:   tx.AccountID,
		AccountCode: tx.AccountCode,
		AccountName: tx.AccountName,
		Amount:      tx.Amount.StringFixed(2),
		IsDebit:     tx.IsDebit,
	}
}

func toJournalEntryResponse(e JournalEntry) journalEntryResponse {
	resp := journalEntryResponse{
		ID:          e.ID,
		Date:        e.Date.Format(dateLayout),
		Description: e.Description,
		Reference:   e.Reference,
		CreatedBy:   e.CreatedBy,
		ReversedBy:  e.ReversedBy,
		Lines:       make([]transactionResponse, 0, len(e.Lines)),
	}
	for _, line := range e.Lines {
		resp.Lines = append(resp.Lines, toTransactionResponse(line))
	}
	return resp
}
