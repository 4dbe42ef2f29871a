package audit

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/jeeyuni/clone-junglebook/internal/catalog"
	"github.com/jeeyuni/clone-junglebook/internal/model"
)

// ExportHorizon writes one worksheet with every slot of the horizon and its
// resolved state: one row per slot, holder and commit time filled in for
// reserved ones.
func ExportHorizon(views []model.SlotView, reservations []model.Reservation, horizon time.Time, w io.Writer) error {
	file := excelize.NewFile()
	defer file.Close()

	sheet := horizon.Format("2006-01-02")
	file.SetSheetName("Sheet1", sheet)

	byStart := make(map[int]*model.Reservation, len(reservations))
	for i := range reservations {
		byStart[reservations[i].Start] = &reservations[i]
	}

	header := []string{"Start", "End", "Status", "Reserved By", "Reserved At"}
	for i, col := range header {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := file.SetCellValue(sheet, cell, col); err != nil {
			return err
		}
	}
	if style, err := file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		startCell, _ := excelize.CoordinatesToCellName(1, 1)
		endCell, _ := excelize.CoordinatesToCellName(len(header), 1)
		_ = file.SetCellStyle(sheet, startCell, endCell, style)
	}

	for row, view := range views {
		values := []interface{}{
			catalog.FormatTimeOfDay(view.Slot.Start),
			catalog.FormatTimeOfDay(view.Slot.End),
			string(view.Status),
			view.ReservedBy,
			"",
		}
		// The audit trail keeps holder details even for slots already past.
		if r := byStart[view.Slot.Start]; r != nil {
			values[3] = r.DisplayName
			values[4] = r.CreatedAt.Format(time.RFC3339)
		}
		for col, val := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return err
			}
			if err := file.SetCellValue(sheet, cell, val); err != nil {
				return fmt.Errorf("write row %d: %w", row+2, err)
			}
		}
	}

	return file.Write(w)
}
