package assessment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeverityBands(t *testing.T) {
	tests := []struct {
		category Category
		total    int
		want     string
	}{
		{PHQ9, 0, "Minimal"},
		{PHQ9, 4, "Minimal"},
		{PHQ9, 5, "Mild"},
		{PHQ9, 14, "Moderate"},
		{PHQ9, 19, "Moderately Severe"},
		{PHQ9, 20, "Severe"},
		{BDI, 13, "Minimal"},
		{BDI, 19, "Mild"},
		{BDI, 28, "Moderate"},
		{BDI, 29, "Severe"},
		{HDRS, 7, "Normal"},
		{HDRS, 13, "Mild"},
		{HDRS, 18, "Moderate"},
		{HDRS, 22, "Severe"},
		{HDRS, 23, "Very Severe"},
		{Category("GAD-7"), 3, ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Severity(tt.category, tt.total), "%s total %d", tt.category, tt.total)
	}
}

func TestParseCategory(t *testing.T) {
	c, err := ParseCategory(" phq-9 ")
	require.NoError(t, err)
	assert.Equal(t, PHQ9, c)

	_, err = ParseCategory("GAD-7")
	assert.Error(t, err)
}

func TestCategoriesReturnsCopy(t *testing.T) {
	got := Categories()
	assert.Equal(t, []Category{PHQ9, BDI, HDRS}, got)

	got[0] = "changed"
	assert.Equal(t, PHQ9, Categories()[0])
}
