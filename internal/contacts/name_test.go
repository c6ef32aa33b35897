package contacts

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNameFromDescription_TwoCapitalizedWords(t *testing.T) {
	assert.Equal(t, "Marcus Webb", nameFromDescription("Marcus Webb plays jazz piano"))
}

func TestNameFromDescription_SingleCapitalizedWord(t *testing.T) {
	assert.Equal(t, "Priya", nameFromDescription("Priya from the climbing gym"))
	assert.Equal(t, "Bo", nameFromDescription("Bo"))
}

func TestNameFromDescription_NoCapitalizedLead(t *testing.T) {
	assert.Equal(t, "", nameFromDescription("someone I met at the party"))
	assert.Equal(t, "", nameFromDescription(""))
	assert.Equal(t, "", nameFromDescription("   "))
}

func TestNameFromDescription_Unicode(t *testing.T) {
	assert.Equal(t, "Łukasz Nowak", nameFromDescription("Łukasz Nowak from Kraków"))
}

func TestIsCapitalized(t *testing.T) {
	assert.True(t, isCapitalized("Sarah"))
	assert.False(t, isCapitalized("sarah"))
	assert.False(t, isCapitalized("123"))
	assert.False(t, isCapitalized(""))
}
