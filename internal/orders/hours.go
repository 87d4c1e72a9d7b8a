package orders

import (
	"time"

	"github.com/mateovidal/campusbites-backend/pkg/config"
	pkgerrors "github.com/mateovidal/campusbites-backend/pkg/errors"
)

// checkCanteenOpen gates placement on the configured serving window. It runs
// before the placement transaction so a closed canteen never touches stock or
// balances.
func checkCanteenOpen(cfg config.CanteenConfig, now time.Time) error {
	if !cfg.Open {
		return pkgerrors.New(pkgerrors.CodePrecondition, "the canteen is closed")
	}
	loc, err := cfg.Location()
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolve canteen timezone")
	}
	local := now.In(loc)

	start, err := time.Parse("15:04", cfg.StartTime)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "parse canteen start time")
	}
	end, err := time.Parse("15:04", cfg.EndTime)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "parse canteen end time")
	}

	minutes := local.Hour()*60 + local.Minute()
	startMinutes := start.Hour()*60 + start.Minute()
	endMinutes := end.Hour()*60 + end.Minute()

	// A window that ends before it starts wraps past midnight, e.g. a
	// late-night canteen open 18:00 to 02:00.
	var open bool
	if startMinutes < endMinutes {
		open = minutes >= startMinutes && minutes < endMinutes
	} else {
		open = minutes >= startMinutes || minutes < endMinutes
	}
	if !open {
		return pkgerrors.New(pkgerrors.CodePrecondition, "the canteen is closed").
			WithDetails(map[string]any{
				"opens_at":  cfg.StartTime,
				"closes_at": cfg.EndTime,
			})
	}
	return nil
}
