package models_test

import (
	"testing"

	"github.com/MilktreeAgency/landco/models"
	"github.com/stretchr/testify/assert"
)

func TestFormatMinorUnits(t *testing.T) {
	tests := []struct {
		amount int64
		scale  int64
		want   string
	}{
		{50000, 100, "£500.00"},
		{12345, 100, "£123.45"},
		{5, 100, "£0.05"},
		{0, 100, "£0.00"},
		{-250, 100, "-£2.50"},
		{1999, 0, "£19.99"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, models.FormatMinorUnits(tt.amount, tt.scale))
	}
}
