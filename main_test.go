package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommand(t *testing.T) {
	tests := []struct {
		args   []string
		want   string
		wantOK bool
	}{
		{nil, cmdServe, true},
		{[]string{"serve"}, cmdServe, true},
		{[]string{"seed"}, cmdSeed, true},
		{[]string{"migrate"}, "", false},
		{[]string{"seed", "extra"}, "", false},
	}
	for _, tt := range tests {
		got, ok := command(tt.args)
		assert.Equal(t, tt.wantOK, ok, tt.args)
		assert.Equal(t, tt.want, got, tt.args)
	}
}
