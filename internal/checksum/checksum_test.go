package checksum

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSum(t *testing.T) {
	a := Sum([]byte(`{"title": "a"}`))
	assert.Equal(t, a, Sum([]byte(`{"title": "a"}`)))
	assert.NotEqual(t, a, Sum([]byte(`{"title": "b"}`)))
	assert.Equal(t, "ef46db3751d8e999", Sum(nil))
}
