package oldb

// Table describes one destination table: its name, the source artifact it is
// loaded from, and its insert column list in declaration order.
type Table struct {
	Name     string
	Artifact string
	Columns  []string
}

// Entities describes the entities destination table.
var Entities = Table{
	Name:     "entities",
	Artifact: "nodes-entities.csv",
	Columns: []string{
		"node_id", "name", "jurisdiction", "jurisdiction_desc",
		"country_codes", "countries", "incorporation_date",
		"inactivation_date", "struck_off_date", "status",
		"service_provider", "source_id", "address", "internal_id",
	},
}

// Officers describes the officers destination table.
var Officers = Table{
	Name:     "officers",
	Artifact: "nodes-officers.csv",
	Columns: []string{
		"node_id", "name", "country_codes", "countries",
		"source_id", "valid_until",
	},
}

// Intermediaries describes the intermediaries destination table.
var Intermediaries = Table{
	Name:     "intermediaries",
	Artifact: "nodes-intermediaries.csv",
	Columns: []string{
		"node_id", "name", "country_codes", "countries",
		"source_id", "status", "internal_id", "address",
	},
}

// Addresses describes the addresses destination table.
var Addresses = Table{
	Name:     "addresses",
	Artifact: "nodes-addresses.csv",
	Columns: []string{
		"node_id", "address", "country_codes", "countries", "source_id",
	},
}

// Relationships describes the relationships destination table.
var Relationships = Table{
	Name:     "relationships",
	Artifact: "relationships.csv",
	Columns: []string{
		"node_id_start", "node_id_end", "rel_type", "source_id",
		"start_date", "end_date",
	},
}

// Tables is the fixed ingestion order. Relationships load last because their
// endpoints reference the four node kinds by node id.
var Tables = []Table{Entities, Officers, Intermediaries, Addresses, Relationships}
