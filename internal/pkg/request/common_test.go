package request

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestByIDRequestValidate(t *testing.T) {
	r := ByIDRequest{ID: " 42 "}
	assert.NoError(t, r.Validate())
	assert.Equal(t, "42", r.ID)

	r = ByIDRequest{ID: "   "}
	assert.Error(t, r.Validate())
}

func TestListParamsNormalize(t *testing.T) {
	p := ListParams{}
	p.Normalize(10)
	assert.Equal(t, ListParams{Page: 1, PageSize: 10}, p)

	p = ListParams{Page: 3, PageSize: 50}
	p.Normalize(10)
	assert.Equal(t, ListParams{Page: 3, PageSize: 50}, p)
}
