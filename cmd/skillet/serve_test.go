package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestServeConfigValidate(t *testing.T) {
	assert.NoError(t, (&ServeConfig{Host: "localhost", Port: 8080}).Validate())
	assert.NoError(t, (&ServeConfig{Host: "127.0.0.1", Port: 3000}).Validate())
	assert.Error(t, (&ServeConfig{Host: "", Port: 8080}).Validate())
	assert.Error(t, (&ServeConfig{Host: "bad host", Port: 8080}).Validate())
	assert.Error(t, (&ServeConfig{Host: "localhost", Port: 0}).Validate())
}
