package pgadapter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialect(t *testing.T) {
	// sql.Open does not connect, so no server is needed
	a, err := New("postgres://localhost/id3?sslmode=disable")
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, "$1", a.Placeholder(1))
	assert.Equal(t, "$12", a.Placeholder(12))
	id, err := a.Identifier("Outlook")
	require.NoError(t, err)
	assert.Equal(t, `"Outlook"`, id)
	_, err = a.Identifier(`bad"name`)
	assert.Error(t, err)
}
