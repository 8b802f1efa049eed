package records

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumnIndex(t *testing.T) {
	cases := map[string]int{
		"A": 1, "B": 2, "Z": 26, "AA": 27, "AZ": 52, "BA": 53, "q": 17, " F ": 6,
	}
	for col, want := range cases {
		got, err := ColumnIndex(col)
		require.NoError(t, err, col)
		assert.Equal(t, want, got, col)
	}
}

func TestColumnIndex_Invalid(t *testing.T) {
	for _, col := range []string{"", "1", "A1", "Ä"} {
		_, err := ColumnIndex(col)
		assert.Error(t, err, col)
	}
}

func TestA1(t *testing.T) {
	assert.Equal(t, "Q10", A1("Q", 10))
	assert.Equal(t, "AA2", A1("aa", 2))
}
