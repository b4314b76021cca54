package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMake(t *testing.T) {
	cases := map[string]string{
		"Olive Oil":             "olive-oil",
		"  Extra -- Virgin!! ": "extra-virgin",
		"Ελαιόλαδο Κρήτης":      "elaiolado-kritis",
		"Μέλι Θυμαρίσιο":        "meli-thymarisio",
		"Φέτα ΠΟΠ 500g":         "feta-pop-500g",
		"":                      "",
	}
	for in, want := range cases {
		assert.Equal(t, want, Make(in), "input %q", in)
	}
}

func TestFold(t *testing.T) {
	assert.Equal(t, "ελια", Fold("Ελιά"))
	assert.Equal(t, "cafe", Fold("Café"))
	assert.Equal(t, Fold("ΜΈΛΙ"), Fold("μέλι"))
}
