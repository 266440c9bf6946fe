package models

// Dimension is one of the categorical axes of a transaction.
type Dimension string

const (
	DimRegion      Dimension = "region"
	DimCategory    Dimension = "category"
	DimChannel     Dimension = "channel"
	DimSalesperson Dimension = "salesperson"
	DimProduct     Dimension = "product"
	DimMonth       Dimension = "month"
)

// FilterDimensions are the dimensions a Selection constrains, in sidebar order.
var FilterDimensions = []Dimension{DimRegion, DimCategory, DimChannel, DimSalesperson}

// GroupDimensions are the dimensions AggregateBy accepts.
var GroupDimensions = []Dimension{DimRegion, DimCategory, DimChannel, DimSalesperson, DimProduct, DimMonth}

func (d Dimension) Valid() bool {
	for _, g := range GroupDimensions {
		if g == d {
			return true
		}
	}
	return false
}

// Value returns the row's key for the dimension.
func (tx *Transaction) Value(d Dimension) string {
	switch d {
	case DimRegion:
		return tx.Region
	case DimCategory:
		return tx.Category
	case DimChannel:
		return tx.Channel
	case DimSalesperson:
		return tx.Salesperson
	case DimProduct:
		return tx.Product
	case DimMonth:
		return tx.Month
	default:
		return ""
	}
}

// Selection holds the chosen values of the four filter dimensions. A nil or
// empty slice selects nothing.
type Selection struct {
	Regions     []string `json:"regions"`
	Categories  []string `json:"categories"`
	Channels    []string `json:"channels"`
	Salespeople []string `json:"salespeople"`
}

func (s Selection) Values(d Dimension) []string {
	switch d {
	case DimRegion:
		return s.Regions
	case DimCategory:
		return s.Categories
	case DimChannel:
		return s.Channels
	case DimSalesperson:
		return s.Salespeople
	default:
		return nil
	}
}

func (s *Selection) Set(d Dimension, values []string) {
	switch d {
	case DimRegion:
		s.Regions = values
	case DimCategory:
		s.Categories = values
	case DimChannel:
		s.Channels = values
	case DimSalesperson:
		s.Salespeople = values
	}
}

// FilterRequest is a partially specified selection coming from a client. A
// nil slice means "not specified" and resolves to every available value; a
// non-nil empty slice is an explicit empty choice.
type FilterRequest struct {
	Regions     []string `json:"regions,omitempty" validate:"omitempty,max=512,dive,max=256"`
	Categories  []string `json:"categories,omitempty" validate:"omitempty,max=512,dive,max=256"`
	Channels    []string `json:"channels,omitempty" validate:"omitempty,max=512,dive,max=256"`
	Salespeople []string `json:"salespeople,omitempty" validate:"omitempty,max=512,dive,max=256"`
}

func (f FilterRequest) Values(d Dimension) []string {
	return Selection(f).Values(d)
}

func (f *FilterRequest) Set(d Dimension, values []string) {
	(*Selection)(f).Set(d, values)
}
