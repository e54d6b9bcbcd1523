package reports

import (
	"sort"

	"github.com/shopspring/decimal"
)

// CashFlowEntry groups a journal entry's movement on cash accounts.
type CashFlowEntry struct {
	EntryID     int64  `json:"journal_entry_id"`
	Date        string `json:"date"`
	Description string `json:"description"`
	Inflow      string `json:"inflow"`
	Outflow     string `json:"outflow"`
}

// CashFlowSectionReport accumulates one Operating/Investing/Financing bucket.
type CashFlowSectionReport struct {
	Label   string          `json:"label"`
	Entries []CashFlowEntry `json:"entries"`
	Inflow  string          `json:"total_inflow"`
	Outflow string          `json:"total_outflow"`
	Net     string          `json:"net"`
}

// CashFlowStatement reports cash movement over a range, bucketed by each
// account's cash flow section.
type CashFlowStatement struct {
	StartDate      string                `json:"start_date"`
	EndDate        string                `json:"end_date"`
	OpeningBalance string                `json:"opening_balance"`
	Operating      CashFlowSectionReport `json:"operating"`
	Investing      CashFlowSectionReport `json:"investing"`
	Financing      CashFlowSectionReport `json:"financing"`
	TotalInflow    string                `json:"total_inflow"`
	TotalOutflow   string                `json:"total_outflow"`
	EndingBalance  string                `json:"ending_balance"`
}

type cashEntryKey struct {
	section string
	entryID int64
}

// BuildCashFlowStatement buckets cash account lines by section, grouping
// by journal entry; debits are inflows, credits outflows. Ending balance
// is opening plus gross inflows minus gross outflows across sections.
func BuildCashFlowStatement(start, end string, opening decimal.Decimal, transactions []CashTransaction) CashFlowStatement {
	type group struct {
		entry   CashFlowEntry
		inflow  decimal.Decimal
		outflow decimal.Decimal
	}
	groups := make(map[cashEntryKey]*group)
	var order []cashEntryKey
	for _, tx := range transactions {
		key := cashEntryKey{section: tx.Section, entryID: tx.EntryID}
		g, ok := groups[key]
		if !ok {
			g = &group{
				entry: CashFlowEntry{
					EntryID:     tx.EntryID,
					Date:        tx.EntryDate.Format("2006-01-02"),
					Description: tx.Description,
				},
				inflow:  decimal.Zero,
				outflow: decimal.Zero,
			}
			groups[key] = g
			order = append(order, key)
		}
		if tx.IsDebit {
			g.inflow = g.inflow.Add(tx.Amount)
		} else {
			g.outflow = g.outflow.Add(tx.Amount)
		}
	}
	sort.Slice(order, func(i, j int) bool { return order[i].entryID < order[j].entryID })

	sections := map[string]*CashFlowSectionReport{
		"OPERATING": {Label: "Operating Activities", Entries: []CashFlowEntry{}},
		"INVESTING": {Label: "Investing Activities", Entries: []CashFlowEntry{}},
		"FINANCING": {Label: "Financing Activities", Entries: []CashFlowEntry{}},
	}
	sectionTotals := map[string][2]decimal.Decimal{}
	totalIn := decimal.Zero
	totalOut := decimal.Zero
	for _, key := range order {
		g := groups[key]
		section, ok := sections[key.section]
		if !ok {
			continue
		}
		g.entry.Inflow = fixed(g.inflow)
		g.entry.Outflow = fixed(g.outflow)
		section.Entries = append(section.Entries, g.entry)
		totals := sectionTotals[key.section]
		totals[0] = totals[0].Add(g.inflow)
		totals[1] = totals[1].Add(g.outflow)
		sectionTotals[key.section] = totals
		totalIn = totalIn.Add(g.inflow)
		totalOut = totalOut.Add(g.outflow)
	}
	for name, section := range sections {
		totals := sectionTotals[name]
		section.Inflow = fixed(totals[0])
		section.Outflow = fixed(totals[1])
		section.Net = fixed(totals[0].Sub(totals[1]))
	}

	return CashFlowStatement{
		StartDate:      start,
		EndDate:        end,
		OpeningBalance: fixed(opening),
		Operating:      *sections["OPERATING"],
		Investing:      *sections["INVESTING"],
		Financing:      *sections["FINANCING"],
		TotalInflow:    fixed(totalIn),
		TotalOutflow:   fixed(totalOut),
		EndingBalance:  fixed(opening.Add(totalIn).Sub(totalOut)),
	}
}
