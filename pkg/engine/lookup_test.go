package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"legacymig/pkg/schema"
)

type fakeTables map[string][]schema.Row

func (f fakeTables) Rows(name string) []schema.Row { return f[name] }

func TestBuildLookupIndex(t *testing.T) {
	rows := []schema.Row{
		{"bank_id": "1", "bank_name": "Bancolombia"},
		{"bank_id": "2", "bank_name": "Davivienda"},
		{"bank_id": "1", "bank_name": "Duplicate"},
		{"bank_name": "No key"},
	}
	ix := BuildLookupIndex(rows, "bank_id")

	assert.Equal(t, 2, ix.Len())
	assert.Equal(t, LookupStats{TotalRows: 4, UniqueKeys: 2, MissingKey: 1, Duplicates: 1}, ix.Stats)

	row, ok := ix.Lookup("1")
	require.True(t, ok)
	assert.Equal(t, "Bancolombia", row["bank_name"], "first occurrence wins")

	assert.Equal(t, "Davivienda", ix.Value("2", "bank_name"))
	assert.Empty(t, ix.Value("2", "missing_column"))
	assert.Empty(t, ix.Value("9", "bank_name"))
}

func TestNilLookupIndex(t *testing.T) {
	var ix *LookupIndex
	_, ok := ix.Lookup("1")
	assert.False(t, ok)
	assert.Empty(t, ix.Value("1", "x"))
	assert.Zero(t, ix.Len())
}

func TestNewResolver(t *testing.T) {
	r := NewResolver(fakeTables{
		schema.TableBranches:      {{"branch_id": "3", "branch_name": "Manila"}},
		schema.TableRoles:         {{"role_id": "1", "role_desc": "Admin"}},
		schema.TableContractTypes: {{"contract_type_id": "2", "contract_type_desc": "Fijo"}},
	})

	assert.Equal(t, "Manila", r.Branches.Value("3", "branch_name"))
	assert.Equal(t, "Admin", r.Roles.Value("1", "role_desc"))
	assert.Equal(t, "Fijo", r.ContractTypes.Value("2", "contract_type_desc"))
	assert.Zero(t, r.Banks.Len())
	assert.Zero(t, r.BankAccounts.Len())
}
