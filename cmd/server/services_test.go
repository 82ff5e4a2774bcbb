package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOriginPattern(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"http://localhost:5173", "localhost:5173"},
		{"https://chat.example.com", "chat.example.com"},
		{"https://chat.example.com/app/", "chat.example.com"},
		{"chat.example.com", "chat.example.com"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, originPattern(tt.in), tt.in)
	}
}
