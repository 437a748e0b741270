package panel

import (
	"sort"

	"queridodiario/internal/models"
)

// BuildBoard lays out a routine's activities as weekday columns in display order.
// Within a column, cards follow that weekday's sort order; ties keep creation order.
func BuildBoard(routine models.Routine, activities []models.ActivityWithDays) models.Board {
	board := models.Board{
		Routine: routine,
		Columns: make([]models.BoardColumn, 0, len(models.DisplayOrder)),
	}

	for _, day := range models.DisplayOrder {
		col := models.BoardColumn{
			Day:        day,
			Label:      day.Label(),
			Activities: []models.BoardCard{},
		}
		for _, a := range activities {
			if d, ok := a.DayFor(day); ok {
				col.Activities = append(col.Activities, models.BoardCard{Activity: a.Activity, SortOrder: d.SortOrder})
			}
		}
		sort.SliceStable(col.Activities, func(i, j int) bool {
			return col.Activities[i].SortOrder < col.Activities[j].SortOrder
		})
		board.Columns = append(board.Columns, col)
	}

	return board
}
