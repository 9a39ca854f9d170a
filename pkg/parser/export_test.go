package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"legacymig/pkg/schema"
)

const sampleExport = `[
  {"type":"header","version":"5.2.1","comment":"Export to JSON plugin for PHPMyAdmin"},
  {"type":"database","name":"lafamili_sopl771"},
  {"type":"table","name":"intra_users","database":"lafamili_sopl771","data":
    [
      {"id":"1","username":"jdoe","firstname":"JosÃ©","lastname":"Doe","idnr":null,"salary":1200.5,"active":true},
      {"id":"2","username":"mroe","firstname":"Mary","lastname":"Roe","meta":{"k":"v"}}
    ]
  },
  {"type":"table","name":"intra_branches","data":[{"branch_id":"1","branch_name":"Manila"}]},
  {"type":"table","data":[]},
  {"type":"table","name":"intra_roles","data":null},
  {"type":"table","name":"intra_banks","data":[{"bank_id":"1"}, "garbage"]}
]`

func TestParseExport(t *testing.T) {
	res, err := ParseExport([]byte(sampleExport))
	require.NoError(t, err)

	assert.Equal(t, []string{"intra_users", "intra_branches", "intra_roles", "intra_banks"}, res.Order)

	users := res.Rows(schema.TableUsers)
	require.Len(t, users, 2)

	assert.Equal(t, "José", users[0]["firstname"], "strings are repaired")
	assert.Equal(t, "1200.5", users[0]["salary"], "numbers keep their literal text")
	assert.Equal(t, "1", users[0]["active"])
	_, hasIDNr := users[0]["idnr"]
	assert.False(t, hasIDNr, "null columns are absent")

	assert.Equal(t, `{"k":"v"}`, users[1]["meta"])

	assert.Empty(t, res.Rows(schema.TableRoles))
	assert.Nil(t, res.Rows("intra_missing"))
	assert.Len(t, res.Rows(schema.TableBanks), 1)

	var messages []string
	for _, w := range res.Warnings {
		messages = append(messages, w.Table+": "+w.Message)
	}
	assert.Len(t, res.Warnings, 3, "warnings: %v", messages)
}

func TestParseExportDuplicateTable(t *testing.T) {
	src := `[
	  {"type":"table","name":"intra_roles","data":[{"role_id":"1"}]},
	  {"type":"table","name":"intra_roles","data":[{"role_id":"2"}]}
	]`
	res, err := ParseExport([]byte(src))
	require.NoError(t, err)

	assert.Len(t, res.Rows(schema.TableRoles), 2)
	assert.Equal(t, []string{"intra_roles"}, res.Order)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0].Message, "duplicate")
}

func TestParseExportErrors(t *testing.T) {
	_, err := ParseExport([]byte(`{"type":"table"}`))
	assert.ErrorIs(t, err, ErrNotExport)

	_, err = ParseExport([]byte(`[{"type":`))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotExport)
}
