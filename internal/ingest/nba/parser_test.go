package nba

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultSetRowsZipHeaders(t *testing.T) {
	set := resultSet{
		Name:    "PlayerGameLog",
		Headers: []string{"Game_ID", "PTS", "MIN", "PLUS_MINUS"},
		RowSet: [][]interface{}{
			{"0022400001", 31.0, 36.5, 8.0},
			{"0022400002", 12.0, 22.0, nil},
		},
	}

	rows := set.rows()
	require.Len(t, rows, 2)

	assert.Equal(t, "0022400001", rows[0].str("Game_ID"))
	assert.Equal(t, 31, rows[0].int("PTS"))
	assert.Equal(t, 36.5, rows[0].float("MIN"))

	require.NotNil(t, rows[0].intPtr("PLUS_MINUS"))
	assert.Equal(t, 8, *rows[0].intPtr("PLUS_MINUS"))
	assert.Nil(t, rows[1].intPtr("PLUS_MINUS"))
}

func TestRowHandlesStringNumbers(t *testing.T) {
	r := row{"WEIGHT": "215", "JERSEY": "23", "MISSING": nil}

	assert.Equal(t, 215.0, r.float("WEIGHT"))
	assert.Equal(t, 23, r.int("JERSEY"))
	assert.Equal(t, 0, r.int("MISSING"))
	assert.Equal(t, "", r.str("MISSING"))
}

func TestRowStrFormatsNumericIDs(t *testing.T) {
	// PERSON_ID comes back as a JSON number
	r := row{"PERSON_ID": 2544.0}
	assert.Equal(t, "2544", r.str("PERSON_ID"))
}

func TestResultSetByName(t *testing.T) {
	response := &statsResponse{ResultSets: []resultSet{
		{Name: "CommonPlayerInfo"},
		{Name: "PlayerHeadlineStats"},
	}}

	set, ok := response.resultSetByName("PlayerHeadlineStats")
	require.True(t, ok)
	assert.Equal(t, "PlayerHeadlineStats", set.Name)

	// Empty name falls back to the first set
	set, ok = response.resultSetByName("")
	require.True(t, ok)
	assert.Equal(t, "CommonPlayerInfo", set.Name)

	_, ok = response.resultSetByName("Nope")
	assert.False(t, ok)
}

func TestOpponentFromMatchup(t *testing.T) {
	assert.Equal(t, "BOS", opponentFromMatchup("LAL vs. BOS"))
	assert.Equal(t, "GSW", opponentFromMatchup("LAL @ GSW"))
	assert.Equal(t, "", opponentFromMatchup(""))
}
