package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsTicker(t *testing.T) {
	for _, s := range []string{"PETR4", "taee11", " VALE3F ", "B3SA3", "b3sa3f"} {
		assert.True(t, IsTicker(s), s)
	}
	for _, s := range []string{"", "PETR", "PETROBRAS", "PET4", "PETR123", "^BVSP", "3BSA3", "B3SA"} {
		assert.False(t, IsTicker(s), s)
	}
}

func TestSplitSymbols(t *testing.T) {
	assert.Equal(t, []string{"PETR4", "VALE3"}, SplitSymbols(" petr4, ,VALE3,Petr4 "))
	assert.Empty(t, SplitSymbols(""))
}
