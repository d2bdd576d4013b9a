package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGet(t *testing.T) {
	v := Get()
	assert.NotEmpty(t, v)
	assert.NotContains(t, v, "\n")
}
