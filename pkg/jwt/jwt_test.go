package jwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateYParse(t *testing.T) {
	id := Identity{UserID: "u-1", UserName: "María Pérez", Role: "bodeguero"}
	tok, err := Generate("secreto", id, "kardex-test", 5)
	require.NoError(t, err)

	got, err := Parse("secreto", tok)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestParse_FirmaIncorrecta(t *testing.T) {
	tok, err := Generate("secreto", Identity{UserID: "u-1"}, "kardex-test", 5)
	require.NoError(t, err)

	_, err = Parse("otro", tok)
	assert.Error(t, err)
}

func TestParse_Expirado(t *testing.T) {
	tok, err := Generate("secreto", Identity{UserID: "u-1"}, "kardex-test", -1)
	require.NoError(t, err)

	_, err = Parse("secreto", tok)
	assert.Error(t, err, "un token expirado debe rechazarse")
}

func TestSecretVacio(t *testing.T) {
	_, err := Generate("", Identity{UserID: "u-1"}, "x", 5)
	assert.Error(t, err)
	_, err = Parse("", "abc")
	assert.Error(t, err)
}
