package service

import (
	"context"
	"fmt"

	"github.com/loopspot/loopspot/internal/domain"
)

// exportPageSize bounds how many loops ExportService reads per List call.
const exportPageSize = 100

// LoopLister pages through stored loops. *LoopService satisfies it.
type LoopLister interface {
	List(ctx context.Context, p domain.PaginationParams) ([]domain.Loop, int64, error)
}

// ExportService assembles a flat export of every loop on the device and its
// waypoints.
type ExportService struct {
	loops LoopLister
}

// NewExportService constructs an ExportService backed by loops.
func NewExportService(loops LoopLister) *ExportService {
	return &ExportService{loops: loops}
}

// Export returns one ExportRow per waypoint across all loops.
// Loops with no waypoints contribute one row with empty waypoint fields.
func (s *ExportService) Export(ctx context.Context) ([]domain.ExportRow, error) {
	var all []domain.Loop
	limit := exportPageSize
	for page := 1; ; page++ {
		p := page
		loops, total, err := s.loops.List(ctx, domain.NewPaginationParams(&p, &limit))
		if err != nil {
			return nil, fmt.Errorf("service.ExportService.Export: %w", err)
		}
		all = append(all, loops...)
		if int64(page*limit) >= total {
			break
		}
	}
	return domain.ExportRows(all), nil
}
