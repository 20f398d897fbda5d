package fingerprint

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractComparator(t *testing.T) {
	cases := []struct {
		title string
		want  Comparator
	}{
		{"Will BTC close above $100,000?", ComparatorGE},
		{"Will BTC close below $80,000?", ComparatorLE},
		{"Will BTC close at exactly $90,000?", ComparatorEQ},
		{"Will BTC close between $80,000 and $100,000?", ComparatorBetween},
		{"Will BTC exist next year?", ComparatorUnknown},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ExtractComparator(c.title), c.title)
	}
}
