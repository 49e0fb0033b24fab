package publishers

import (
	"time"

	"github.com/samvad-hq/departure-board/internal/domain"
)

func testEvent() Event {
	snap := domain.NewSnapshot("/traffic/slussen", []domain.Line{
		{Label: "Linje", Path: "departure.route.designation", Value: "17"},
		{Label: "Om", Path: "departure.nextDepartureIn", Value: "5 min"},
	}, time.Date(2026, 10, 16, 8, 0, 0, 0, time.UTC))
	return NewEvent(snap)
}
