package pointer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/personae/pkg/pointer"
)

func TestFallback(t *testing.T) {
	assert.Equal(t, "Anonymous", pointer.Fallback(nil, "Anonymous"))
	assert.Equal(t, "Ada", pointer.Fallback(pointer.To("Ada"), "Anonymous"))
	assert.Equal(t, 0, pointer.Fallback(pointer.To(0), 7))
}
