package filter

import (
	"testing"

	"dat-manager/core/models"
	"dat-manager/core/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRun(t *testing.T) {
	s := store.New(zap.NewNop(), 2)
	keep := s.AddMachine(models.Machine{Name: "Keep"})
	drop := s.AddMachine(models.Machine{Name: "Drop"})
	s.Add(&models.Item{Type: models.TypeRom, Name: "a", Status: models.StatusGood}, keep, 0)
	s.Add(&models.Item{Type: models.TypeRom, Name: "b", Status: models.StatusBadDump}, keep, 0)
	s.Add(&models.Item{Type: models.TypeSample, Name: "c"}, keep, 0)
	s.Add(&models.Item{Type: models.TypeRom, Name: "d", Status: models.StatusGood}, drop, 0)

	byName, err := ByMachineName("^Keep$")
	require.NoError(t, err)

	marked := Run(s, All(byName, ByStatus(models.StatusGood), Not(ByType(models.TypeDisk))))
	assert.Equal(t, 2, marked)
	assert.Equal(t, int64(2), s.Statistics().Total())
	assert.Equal(t, 4, s.Len())

	assert.Equal(t, 2, s.ClearMarked())
	assert.Equal(t, 2, s.Len())

	assert.Equal(t, 0, Run(s, nil))
}

func TestByMachineName_Invalid(t *testing.T) {
	_, err := ByMachineName("(")
	assert.Error(t, err)
}

func TestByType(t *testing.T) {
	p := ByType(models.TypeRom, models.TypeDisk)
	assert.True(t, p(models.Ref{Item: &models.Item{Type: models.TypeDisk}}))
	assert.False(t, p(models.Ref{Item: &models.Item{Type: models.TypeSample}}))
}
