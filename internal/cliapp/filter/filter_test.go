package filter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mcpmux/mcpmux/internal/cliapp/filter"
)

func TestAllowed_NoListsAllowsEverything(t *testing.T) {
	assert.True(t, filter.Allowed("anything", nil, nil))
}

func TestAllowed_AllowListRestricts(t *testing.T) {
	allow := []string{"read_*"}
	assert.True(t, filter.Allowed("read_file", allow, nil))
	assert.False(t, filter.Allowed("write_file", allow, nil))
}

func TestAllowed_DenyOverridesAllow(t *testing.T) {
	allow := []string{"*"}
	deny := []string{"delete_*"}
	assert.True(t, filter.Allowed("read_file", allow, deny))
	assert.False(t, filter.Allowed("delete_file", allow, deny))
}

func TestTools_FiltersPreservingOrder(t *testing.T) {
	names := []string{"read_file", "write_file", "delete_file"}
	got := filter.Tools(names, []string{"*"}, []string{"delete_*"})
	assert.Equal(t, []string{"read_file", "write_file"}, got)
}
