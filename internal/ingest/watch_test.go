package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoalesce_CreateThenModifyStaysCreate(t *testing.T) {
	result, drop := coalesce(opCreate, opModify)
	assert.False(t, drop)
	assert.Equal(t, opCreate, result)
}

func TestCoalesce_CreateThenDeleteCancelsOut(t *testing.T) {
	_, drop := coalesce(opCreate, opDelete)
	assert.True(t, drop)
}

func TestCoalesce_ModifyThenDeleteBecomesDelete(t *testing.T) {
	result, drop := coalesce(opModify, opDelete)
	assert.False(t, drop)
	assert.Equal(t, opDelete, result)
}

func TestCoalesce_DeleteThenCreateBecomesModify(t *testing.T) {
	result, drop := coalesce(opDelete, opCreate)
	assert.False(t, drop)
	assert.Equal(t, opModify, result)
}
