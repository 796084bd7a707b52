package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildShareLink(t *testing.T) {
	tests := []struct {
		base string
		want string
	}{
		{"https://orders.example.com", "https://orders.example.com/#/order/o1"},
		{"https://orders.example.com/", "https://orders.example.com/#/order/o1"},
		{"https://orders.example.com/#/order/", "https://orders.example.com/#/order/o1"},
		{"https://orders.example.com/#/order/o7", "https://orders.example.com/#/order/o1"},
		{"http://localhost:3000/#/", "http://localhost:3000/#/order/o1"},
		{"https://example.com/food", "https://example.com/food/#/order/o1"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, BuildShareLink(tt.base, "o1"), tt.base)
	}
}

func TestBuildShareLink_Deterministic(t *testing.T) {
	assert.Equal(t, BuildShareLink("https://a.b", "x"), BuildShareLink("https://a.b", "x"))
}
