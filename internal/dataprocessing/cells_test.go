package dataprocessing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"keibacli/pkg/contracts/domain"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		name   string
		input  domain.Value
		want   float64
		wantOK bool
	}{
		{"int passes through", domain.Int(7), 7, true},
		{"float passes through", domain.Float(55.5), 55.5, true},
		{"plain text", domain.Text("480"), 480, true},
		{"padded text", domain.Text("  3.2 "), 3.2, true},
		{"full-width digits", domain.Text("１２"), 12, true},
		{"full-width decimal", domain.Text("５６．０"), 56, true},
		{"full-width minus", domain.Text("－４"), -4, true},
		{"ideographic space", domain.Text("　８"), 8, true},
		{"thousands separator", domain.Text("1,600"), 1600, true},
		{"withdrawal sentinel", domain.Text("外"), 0, false},
		{"scratched sentinel", domain.Text("取消"), 0, false},
		{"disqualified", domain.Text("DQ"), 0, false},
		{"empty text", domain.Text(""), 0, false},
		{"nan text", domain.Text("NaN"), 0, false},
		{"inf text", domain.Text("Inf"), 0, false},
		{"hex float", domain.Text("0x1p3"), 0, false},
		{"signed hex", domain.Text("-0X10"), 0, false},
		{"exponent", domain.Text("1e3"), 1000, true},
		{"missing", domain.Missing(), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseNumber(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.InDelta(t, tt.want, got, 1e-9)
			}
		})
	}
}

func TestNarrowWidth(t *testing.T) {
	assert.Equal(t, "12", NarrowWidth("１２"))
	assert.Equal(t, "DQ", NarrowWidth("ＤＱ"))
	assert.Equal(t, "!~", NarrowWidth("！～"))
	assert.Equal(t, "外", NarrowWidth("外"))
}

func TestToNumeric(t *testing.T) {
	assert.Equal(t, domain.Int(12), ToNumeric(domain.Text("１２")))
	assert.Equal(t, domain.Float(2.5), ToNumeric(domain.Text("2.5")))
	assert.Equal(t, domain.Int(480), ToNumeric(domain.Float(480)))
	assert.True(t, ToNumeric(domain.Text("消")).IsMissing())
	assert.True(t, ToNumeric(domain.Missing()).IsMissing())
}

func TestToText(t *testing.T) {
	assert.Equal(t, domain.Text("1600"), ToText(domain.Int(1600)))
	assert.Equal(t, domain.Text("東京"), ToText(domain.Text("東京")))
	assert.True(t, ToText(domain.Missing()).IsMissing())
}

func TestIsBlank(t *testing.T) {
	assert.True(t, IsBlank(domain.Missing()))
	assert.True(t, IsBlank(domain.Text("   ")))
	assert.False(t, IsBlank(domain.Text("0")))
	assert.False(t, IsBlank(domain.Int(0)))
}

func TestParseDate(t *testing.T) {
	want := time.Date(2024, time.March, 9, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		input  domain.Value
		wantOK bool
	}{
		{"iso", domain.Text("2024-03-09"), true},
		{"slashes", domain.Text("2024/03/09"), true},
		{"short slashes", domain.Text("2024/3/9"), true},
		{"short dashes", domain.Text("2024-3-9"), true},
		{"datetime without zone", domain.Text("2024-03-09T10:00:00"), true},
		{"short datetime", domain.Text("2024-3-9 10:00:00"), true},
		{"japanese", domain.Text("2024年3月9日"), true},
		{"compact", domain.Text("20240309"), true},
		{"compact integer", domain.Int(20240309), true},
		{"full-width", domain.Text("２０２４－０３－０９"), true},
		{"garbage", domain.Text("next week"), false},
		{"impossible date", domain.Text("2024-13-45"), false},
		{"float", domain.Float(2024.5), false},
		{"missing", domain.Missing(), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDate(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, want.Format(time.DateOnly), got.Format(time.DateOnly))
			}
		})
	}
}

func TestExtractMonth(t *testing.T) {
	assert.Equal(t, domain.Int(11), ExtractMonth(domain.Text("2023-11-26 15:40:00")))
	assert.Equal(t, domain.Int(5), ExtractMonth(domain.Text("2024-05-26T15:40:00+09:00")))
	assert.Equal(t, domain.Int(5), ExtractMonth(domain.Text("2024-5-3")))
	assert.Equal(t, domain.Int(5), ExtractMonth(domain.Text("2024-05-03T10:00:00")))
	assert.True(t, ExtractMonth(domain.Text("unknown")).IsMissing())
}
