// Package oldb defines the destination record model for the ICIJ Offshore
// Leaks Database: the four node kinds (entities, officers, intermediaries,
// addresses), the relationships connecting them, the column width limits of
// the destination schema, and the fixed ingestion order.
package oldb

import "time"

// Column width limits in characters. Values longer than the limit are
// truncated on ingest, never rejected.
const (
	MaxNodeID           = 50
	MaxName             = 500
	MaxJurisdiction     = 200
	MaxJurisdictionDesc = 500
	MaxCountryCodes     = 200
	MaxCountries        = 500
	MaxStatus           = 100
	MaxServiceProvider  = 200
	MaxSourceID         = 100
	MaxAddress          = 1000
	MaxFullAddress      = 2000
	MaxInternalID       = 100
	MaxRelType          = 100
	MaxValidUntil       = 100
)

// Record is implemented by every destination row type. Values returns the
// insert arguments in the owning Table's column order; nil elements map to
// SQL NULL.
type Record interface {
	Values() []any
}

// Entity is one offshore entity node: a company, trust, or foundation
// created by an agent.
type Entity struct {
	NodeID            string
	Name              *string
	Jurisdiction      *string
	JurisdictionDesc  *string
	CountryCodes      *string
	Countries         *string
	IncorporationDate *time.Time
	InactivationDate  *time.Time
	StruckOffDate     *time.Time
	Status            *string
	ServiceProvider   *string
	SourceID          *string
	Address           *string
	InternalID        *string
}

// Values returns the insert arguments in Entities.Columns order.
func (e Entity) Values() []any {
	return []any{
		e.NodeID,
		e.Name,
		e.Jurisdiction,
		e.JurisdictionDesc,
		e.CountryCodes,
		e.Countries,
		e.IncorporationDate,
		e.InactivationDate,
		e.StruckOffDate,
		e.Status,
		e.ServiceProvider,
		e.SourceID,
		e.Address,
		e.InternalID,
	}
}

// Officer is one officer node: a person or company playing a role in an
// offshore entity. ValidUntil is free text in the source data and is stored
// verbatim, not parsed as a date.
type Officer struct {
	NodeID       string
	Name         *string
	CountryCodes *string
	Countries    *string
	SourceID     *string
	ValidUntil   *string
}

// Values returns the insert arguments in Officers.Columns order.
func (o Officer) Values() []any {
	return []any{
		o.NodeID,
		o.Name,
		o.CountryCodes,
		o.Countries,
		o.SourceID,
		o.ValidUntil,
	}
}

// Intermediary is one intermediary node: a go-between such as a law firm
// or bank that asked for an offshore entity to be created.
type Intermediary struct {
	NodeID       string
	Name         *string
	CountryCodes *string
	Countries    *string
	SourceID     *string
	Status       *string
	InternalID   *string
	Address      *string
}

// Values returns the insert arguments in Intermediaries.Columns order.
func (i Intermediary) Values() []any {
	return []any{
		i.NodeID,
		i.Name,
		i.CountryCodes,
		i.Countries,
		i.SourceID,
		i.Status,
		i.InternalID,
		i.Address,
	}
}

// Address is one address node referenced by the other node kinds.
type Address struct {
	NodeID       string
	Address      *string
	CountryCodes *string
	Countries    *string
	SourceID     *string
}

// Values returns the insert arguments in Addresses.Columns order.
func (a Address) Values() []any {
	return []any{
		a.NodeID,
		a.Address,
		a.CountryCodes,
		a.Countries,
		a.SourceID,
	}
}

// Relationship is one directed edge between two nodes. The endpoints may
// reference any node kind; their existence is not validated on ingest,
// referential integrity belongs to the destination schema.
type Relationship struct {
	NodeIDStart string
	NodeIDEnd   string
	RelType     *string
	SourceID    *string
	StartDate   *time.Time
	EndDate     *time.Time
}

// Values returns the insert arguments in Relationships.Columns order.
func (r Relationship) Values() []any {
	return []any{
		r.NodeIDStart,
		r.NodeIDEnd,
		r.RelType,
		r.SourceID,
		r.StartDate,
		r.EndDate,
	}
}

var (
	_ Record = Entity{}
	_ Record = Officer{}
	_ Record = Intermediary{}
	_ Record = Address{}
	_ Record = Relationship{}
)
