package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueries_CommaSeparated(t *testing.T) {
	assert.Equal(t, []string{"SHAHEEN Nigara", "Nigara SHAHEEN"}, Queries("SHAHEEN, Nigara"))
	assert.Equal(t, []string{"SMITH John", "John SMITH"}, Queries("SMITH, John"))
}

func TestQueries_CommaWithMiddleNames(t *testing.T) {
	assert.Equal(t, []string{"DE LA CRUZ Juan Pablo", "Juan Pablo DE LA CRUZ"}, Queries("DE LA CRUZ, Juan Pablo"))
}

func TestQueries_NoComma_SwapsLastToken(t *testing.T) {
	assert.Equal(t, []string{"John Smith", "Smith John"}, Queries("John Smith"))
	assert.Equal(t, []string{"John Q Smith", "Smith John Q"}, Queries("John Q Smith"))
}

func TestQueries_SingleToken_NoSwap(t *testing.T) {
	assert.Equal(t, []string{"Teddy"}, Queries("Teddy"))
}

func TestQueries_EmptyAndHeader(t *testing.T) {
	assert.Nil(t, Queries(""))
	assert.Nil(t, Queries("   "))
	assert.Nil(t, Queries("Name"))
	assert.Nil(t, Queries("NAME"))
	assert.Nil(t, Queries("name"))
}

func TestQueries_IdenticalSwapSuppressed(t *testing.T) {
	// The swapped variant collapses onto the primary query.
	assert.Equal(t, []string{"LEE lee"}, Queries("LEE, lee"))
	assert.Equal(t, []string{"Kim Kim"}, Queries("Kim Kim"))
}

func TestQueries_WhitespaceCollapsed(t *testing.T) {
	assert.Equal(t, []string{"SHAHEEN Nigara", "Nigara SHAHEEN"}, Queries("  SHAHEEN ,   Nigara  "))
}

func TestQueries_DanglingComma(t *testing.T) {
	// No surname group before the comma: only the primary survives.
	assert.Equal(t, []string{"John"}, Queries(", John"))
	assert.Equal(t, []string{"SMITH"}, Queries("SMITH,"))
}

func TestQueries_Deterministic(t *testing.T) {
	first := Queries("SHAHEEN, Nigara")
	for range 5 {
		assert.Equal(t, first, Queries("SHAHEEN, Nigara"))
	}
}

func TestCollapse(t *testing.T) {
	assert.Equal(t, "a b c", Collapse("  a\t b \n c "))
	assert.Equal(t, "", Collapse("   "))
}
