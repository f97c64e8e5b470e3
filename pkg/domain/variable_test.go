package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aretw0/botflow/pkg/domain"
)

func TestNewVariableRecord(t *testing.T) {
	rec := domain.NewVariableRecord("  ")
	assert.False(t, rec.Exists)
	v, ok := rec.String()
	assert.True(t, ok)
	assert.Equal(t, "  ", v)

	_, ok = domain.Missing().String()
	assert.False(t, ok)
}

func TestUserRecord_SetVariable(t *testing.T) {
	rec := domain.UserRecord{domain.UserDataKey: `{"a":"1"}`}
	rec.SetVariable("b", "2")
	assert.Equal(t, map[string]any{"a": "1", "b": "2"}, rec[domain.UserDataKey])

	rec = domain.UserRecord{domain.UserDataKey: `{broken`}
	rec.SetVariable("b", "2")
	assert.Equal(t, map[string]any{"b": "2"}, rec[domain.UserDataKey])

	rec = domain.UserRecord{}
	rec.SetVariable("c", "3")
	assert.Equal(t, map[string]any{"c": "3"}, rec[domain.UserDataKey])
}
