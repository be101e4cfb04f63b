package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"

	"leakloader/pkg/oldb"
)

// tableDef binds a destination table to the conversion that builds its
// typed record from a raw row.
type tableDef struct {
	table   oldb.Table
	convert func(Row) oldb.Record
}

// tableDefs returns the five loaders in the fixed ingestion order of
// oldb.Tables: the node kinds first, relationships last.
func tableDefs() []tableDef {
	return []tableDef{
		{oldb.Entities, entityRecord},
		{oldb.Officers, officerRecord},
		{oldb.Intermediaries, intermediaryRecord},
		{oldb.Addresses, addressRecord},
		{oldb.Relationships, relationshipRecord},
	}
}

// key returns the width-bounded value of a key column, empty when absent.
// Key columns are plain strings; a row with a missing key surfaces as a
// constraint violation at write time and is handled by the batch policy.
func key(row Row, max int, aliases ...string) string {
	if v := Truncate(row.Field(aliases...), max); v != nil {
		return *v
	}
	return ""
}

func entityRecord(row Row) oldb.Record {
	return oldb.Entity{
		NodeID:            key(row, oldb.MaxNodeID, "node_id"),
		Name:              Truncate(row.Field("name"), oldb.MaxName),
		Jurisdiction:      Truncate(row.Field("jurisdiction"), oldb.MaxJurisdiction),
		JurisdictionDesc:  Truncate(row.Field("jurisdiction_description"), oldb.MaxJurisdictionDesc),
		CountryCodes:      Truncate(row.Field("country_codes"), oldb.MaxCountryCodes),
		Countries:         Truncate(row.Field("countries"), oldb.MaxCountries),
		IncorporationDate: ParseDate(row.Field("incorporation_date")),
		InactivationDate:  ParseDate(row.Field("inactivation_date")),
		StruckOffDate:     ParseDate(row.Field("struck_off_date")),
		Status:            Truncate(row.Field("status"), oldb.MaxStatus),
		ServiceProvider:   Truncate(row.Field("service_provider"), oldb.MaxServiceProvider),
		SourceID:          Truncate(row.Field("sourceid", "source_id"), oldb.MaxSourceID),
		Address:           Truncate(row.Field("address"), oldb.MaxAddress),
		InternalID:        Truncate(row.Field("internal_id"), oldb.MaxInternalID),
	}
}

func officerRecord(row Row) oldb.Record {
	return oldb.Officer{
		NodeID:       key(row, oldb.MaxNodeID, "node_id"),
		Name:         Truncate(row.Field("name"), oldb.MaxName),
		CountryCodes: Truncate(row.Field("country_codes"), oldb.MaxCountryCodes),
		Countries:    Truncate(row.Field("countries"), oldb.MaxCountries),
		SourceID:     Truncate(row.Field("sourceid", "source_id"), oldb.MaxSourceID),
		// valid_until is stored verbatim; it is not a date column in the
		// source data despite the name.
		ValidUntil: Truncate(row.Field("valid_until"), oldb.MaxValidUntil),
	}
}

func intermediaryRecord(row Row) oldb.Record {
	return oldb.Intermediary{
		NodeID:       key(row, oldb.MaxNodeID, "node_id"),
		Name:         Truncate(row.Field("name"), oldb.MaxName),
		CountryCodes: Truncate(row.Field("country_codes"), oldb.MaxCountryCodes),
		Countries:    Truncate(row.Field("countries"), oldb.MaxCountries),
		SourceID:     Truncate(row.Field("sourceid", "source_id"), oldb.MaxSourceID),
		Status:       Truncate(row.Field("status"), oldb.MaxStatus),
		InternalID:   Truncate(row.Field("internal_id"), oldb.MaxInternalID),
		Address:      Truncate(row.Field("address"), oldb.MaxAddress),
	}
}

func addressRecord(row Row) oldb.Record {
	return oldb.Address{
		NodeID: key(row, oldb.MaxNodeID, "node_id"),
		// Address nodes carry their text under "address" in newer releases
		// and under "name" in older ones.
		Address:      Truncate(row.Field("address", "name"), oldb.MaxFullAddress),
		CountryCodes: Truncate(row.Field("country_codes"), oldb.MaxCountryCodes),
		Countries:    Truncate(row.Field("countries"), oldb.MaxCountries),
		SourceID:     Truncate(row.Field("sourceid", "source_id"), oldb.MaxSourceID),
	}
}

func relationshipRecord(row Row) oldb.Record {
	return oldb.Relationship{
		NodeIDStart: key(row, oldb.MaxNodeID, "node_id_start", "start"),
		NodeIDEnd:   key(row, oldb.MaxNodeID, "node_id_end", "end"),
		RelType:     Truncate(row.Field("rel_type", "type"), oldb.MaxRelType),
		SourceID:    Truncate(row.Field("sourceid", "source_id"), oldb.MaxSourceID),
		StartDate:   ParseDate(row.Field("start_date")),
		EndDate:     ParseDate(row.Field("end_date")),
	}
}

// flusher accepts one accumulated batch at a time.
type flusher interface {
	flush(ctx context.Context, batch []oldb.Record) error
}

// loadRows streams src through convert, flushing every batchSize records
// plus the remainder at EOF. It returns the number of rows handed to the
// flusher; whether they all committed is the flusher's accounting.
// Cancellation is honored between rows, never inside a flush.
func loadRows(ctx context.Context, src *rowReader, convert func(Row) oldb.Record, batchSize int, w flusher) (int64, error) {
	batch := make([]oldb.Record, 0, batchSize)
	var total int64
	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		row, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return total, fmt.Errorf("read row: %w", err)
		}
		batch = append(batch, convert(row))
		if len(batch) >= batchSize {
			if err := w.flush(ctx, batch); err != nil {
				return total, err
			}
			total += int64(len(batch))
			batch = batch[:0]
		}
	}
	if len(batch) > 0 {
		if err := w.flush(ctx, batch); err != nil {
			return total, err
		}
		total += int64(len(batch))
	}
	return total, nil
}
