package parser

import "testing"

func TestParseValue(t *testing.T) {
	tests := []struct {
		input    string
		expected any
	}{
		{"123", int64(123)},
		{"123.45", 123.45},
		{"-100", int64(-100)},
		{"hello", "hello"},
		{"POINT (37.6 55.7)", "POINT (37.6 55.7)"},
		{"", nil},
		{"  ", nil},
		{"NaN", "NaN"},
		{"Inf", "Inf"},
		{"5142531542431383552", "5142531542431383552"},
		{"9007199254740992", int64(9007199254740992)},
	}

	for _, tt := range tests {
		result := ParseValue(tt.input)
		if result != tt.expected {
			t.Errorf("ParseValue(%q) = %v (type: %T), expected %v (type: %T)",
				tt.input, result, result, tt.expected, tt.expected)
		}
	}
}
