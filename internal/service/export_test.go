package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loopspot/loopspot/internal/domain"
	"github.com/loopspot/loopspot/internal/repo"
	"github.com/loopspot/loopspot/internal/service"
)

func TestExportService_Export_SpansPages(t *testing.T) {
	ctx := context.Background()
	svc := newLoopService(repo.NewMemoryStore())
	for i := 0; i < 150; i++ {
		require.NoError(t, svc.Save(ctx, storedLoop(fmt.Sprintf("L%03d", i), 0)))
	}
	require.NoError(t, svc.Save(ctx, storedLoop("L999", 2)))

	rows, err := service.NewExportService(svc).Export(ctx)

	require.NoError(t, err)
	require.Len(t, rows, 152)
	assert.Equal(t, "L000", rows[0].LoopID)
	assert.Equal(t, "L999", rows[151].LoopID)
	assert.Equal(t, 2, rows[151].WaypointOrder)
}

func TestExportService_Export_Empty(t *testing.T) {
	rows, err := service.NewExportService(newLoopService(repo.NewMemoryStore())).Export(context.Background())

	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestExportService_Export_StoreError(t *testing.T) {
	svc := newLoopService(&mockLoopStore{
		keys: func(context.Context) ([]string, error) { return nil, errors.New("io") },
	})

	_, err := service.NewExportService(svc).Export(context.Background())

	assert.ErrorIs(t, err, domain.ErrPersistenceFailed)
}
