package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Period identifies one fiscal season, e.g. "2024/25".
type Period string

// Category classifies a debt instrument. The set is closed; unknown source
// categories are routed to CategoryOther.
type Category string

const (
	CategoryBank     Category = "BANK"
	CategoryLand     Category = "LAND"
	CategorySupplier Category = "SUPPLIER"
	CategoryOther    Category = "OTHER"
)

// Categories lists every category in reporting order.
var Categories = []Category{CategoryBank, CategoryLand, CategorySupplier, CategoryOther}

// ParseCategory maps a source category name onto the closed set.
// Names it does not recognize become CategoryOther.
func ParseCategory(s string) Category {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bank", "banco", "trading", "bancos":
		return CategoryBank
	case "land", "terra", "terras", "property", "imovel":
		return CategoryLand
	case "supplier", "fornecedor", "fornecedores":
		return CategorySupplier
	default:
		return CategoryOther
	}
}

// Normalize returns c if it is a known category, otherwise CategoryOther.
func (c Category) Normalize() Category {
	switch c {
	case CategoryBank, CategoryLand, CategorySupplier, CategoryOther:
		return c
	default:
		return CategoryOther
	}
}

// Currency is the denomination of a debt instrument.
type Currency string

const (
	CurrencyLocal   Currency = "LOCAL"
	CurrencyForeign Currency = "FOREIGN"
)

// ParseCurrency accepts LOCAL/BRL and FOREIGN/USD in any case.
func ParseCurrency(s string) (Currency, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "LOCAL", "BRL", "":
		return CurrencyLocal, nil
	case "FOREIGN", "USD":
		return CurrencyForeign, nil
	default:
		return "", &DataIntegrityError{Reason: "unknown currency " + s}
	}
}

// Term is the contractual maturity class of a bank instrument.
type Term string

const (
	TermUnspecified Term = ""
	TermShort       Term = "SHORT"
	TermLong        Term = "LONG"
)

// DebtInstrument is one financial obligation. Instruments are never mutated
// after loading; consumers derive aggregates from them.
type DebtInstrument struct {
	ID            string
	Name          string
	Category      Category
	RawCategory   string // category name as it appeared in the source
	Currency      Currency
	OriginalValue decimal.Decimal // in instrument currency
	ContractRate  decimal.Decimal // annual, 0.10 = 10%
	Term          Term
	Schedule      map[Period]decimal.Decimal // in instrument currency
}

// DebtPool is every instrument of an organization plus the rate used to
// bring foreign-currency amounts into local currency.
type DebtPool struct {
	Instruments []DebtInstrument
	FXRate      decimal.Decimal
}
