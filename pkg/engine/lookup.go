package engine

import "legacymig/pkg/schema"

// LookupIndex resolves legacy ids of one small reference table.
type LookupIndex struct {
	byID  map[string]schema.Row
	Stats LookupStats `json:"stats"`
}

// LookupStats contains aggregate statistics about a LookupIndex.
type LookupStats struct {
	TotalRows  int `json:"totalRows"`
	UniqueKeys int `json:"uniqueKeys"`
	MissingKey int `json:"missingKey"`
	Duplicates int `json:"duplicates"`
}

// BuildLookupIndex indexes rows by keyColumn. The first row carrying a key
// wins; rows without the key column are counted and skipped.
func BuildLookupIndex(rows []schema.Row, keyColumn string) *LookupIndex {
	ix := &LookupIndex{byID: make(map[string]schema.Row, len(rows))}

	for _, row := range rows {
		key, ok := row.Get(keyColumn)
		if !ok || key == "" {
			ix.Stats.MissingKey++
			continue
		}
		if _, exists := ix.byID[key]; exists {
			ix.Stats.Duplicates++
			continue
		}
		ix.byID[key] = row
	}

	ix.Stats.TotalRows = len(rows)
	ix.Stats.UniqueKeys = len(ix.byID)
	return ix
}

// Lookup returns the row for id. A nil index resolves nothing.
func (ix *LookupIndex) Lookup(id string) (schema.Row, bool) {
	if ix == nil {
		return nil, false
	}
	row, ok := ix.byID[id]
	return row, ok
}

// Value returns column of the row for id, or "" when either is unknown.
func (ix *LookupIndex) Value(id, column string) string {
	row, ok := ix.Lookup(id)
	if !ok {
		return ""
	}
	return row[column]
}

// Len returns the number of distinct ids.
func (ix *LookupIndex) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.byID)
}

// TableSource yields the rows of a named legacy table.
type TableSource interface {
	Rows(name string) []schema.Row
}

// Resolver holds the reference-table indexes used by the transformer.
type Resolver struct {
	Branches      *LookupIndex
	Roles         *LookupIndex
	Banks         *LookupIndex
	BankAccounts  *LookupIndex
	ContractTypes *LookupIndex
}

// NewResolver builds every reference index from src. Missing tables give
// empty indexes.
func NewResolver(src TableSource) *Resolver {
	return &Resolver{
		Branches:      BuildLookupIndex(src.Rows(schema.TableBranches), "branch_id"),
		Roles:         BuildLookupIndex(src.Rows(schema.TableRoles), "role_id"),
		Banks:         BuildLookupIndex(src.Rows(schema.TableBanks), "bank_id"),
		BankAccounts:  BuildLookupIndex(src.Rows(schema.TableBankAccounts), "bat_id"),
		ContractTypes: BuildLookupIndex(src.Rows(schema.TableContractTypes), "contract_type_id"),
	}
}
