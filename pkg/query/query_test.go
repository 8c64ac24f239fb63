package query_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/personae/pkg/query"
)

func TestList(t *testing.T) {
	assert.Nil(t, query.List(""))
	assert.Equal(t, []string{"a.com", "b.org"}, query.List(" A.com, ,b.org,a.com "))
}
