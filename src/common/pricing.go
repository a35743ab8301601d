package common

import (
	"cabins/src/config"
	"cabins/src/types"
	"time"
)

// Nights counts whole calendar days between checkin and checkout.
func Nights(checkin, checkout time.Time) int {
	ci := time.Date(checkin.Year(), checkin.Month(), checkin.Day(), 0, 0, 0, 0, time.UTC)
	co := time.Date(checkout.Year(), checkout.Month(), checkout.Day(), 0, 0, 0, 0, time.UTC)
	return int(co.Sub(ci).Hours() / 24)
}

// CalculatePrice computes the total and a mode-dependent breakdown for a
// stay. All arithmetic is exact minor-unit arithmetic; the only division
// (the per-guest-per-night unit price) rounds half up.
func CalculatePrice(cfg *config.Pricing, property types.Property, checkin, checkout time.Time, mode types.BookingMode, roomIDs []uint, guestCount, childCount uint) (types.Money, *types.PriceBreakdown, error) {
	nights := Nights(checkin, checkout)
	if nights <= 0 {
		return types.Money{}, nil, ErrInvalidDateRange
	}
	rates, ok := cfg.Rates(property)
	if !ok {
		return types.Money{}, nil, ErrUnknownRoom
	}

	breakdown := &types.PriceBreakdown{
		Mode:       mode,
		Nights:     nights,
		GuestCount: guestCount,
	}

	switch mode {
	case types.MODE_BUYOUT:
		perNight := types.NewMoney(rates.BuyoutNightly, cfg.Currency)
		total := perNight.MulInt(int64(nights))
		breakdown.PricePerNight = &perNight
		breakdown.Total = total
		return total, breakdown, nil

	case types.MODE_PER_GUEST:
		perGuestNight := types.NewMoney(rates.PerGuestNightly, cfg.Currency)
		total := perGuestNight.MulInt(int64(nights)).MulInt(int64(guestCount))
		// Unit price derived back from the total; DivRound substitutes a
		// zero price when nights or guests is zero.
		unit := total.DivRound(int64(nights) * int64(guestCount))
		breakdown.PricePerGuestPerNight = &unit
		breakdown.Total = total
		return total, breakdown, nil

	case types.MODE_PER_ROOM:
		if len(roomIDs) == 0 {
			return types.Money{}, nil, ErrRoomRequired
		}
		total := types.ZeroMoney(cfg.Currency)
		for _, id := range roomIDs {
			room, ok := cfg.Room(property, id)
			if !ok {
				return types.Money{}, nil, ErrUnknownRoom
			}
			nightly := types.NewMoney(room.NightlyRate, cfg.Currency)
			surcharge := types.NewMoney(room.ChildSurcharge, cfg.Currency)
			subtotal := nightly.MulInt(int64(nights))
			charge, err := subtotal.Add(surcharge.MulInt(int64(childCount)).MulInt(int64(nights)))
			if err != nil {
				return types.Money{}, nil, err
			}
			breakdown.Rooms = append(breakdown.Rooms, types.RoomCharge{
				RoomID:         room.ID,
				RoomName:       room.Name,
				Nights:         nights,
				GuestCount:     guestCount,
				ChildCount:     childCount,
				NightlyRate:    nightly,
				ChildSurcharge: surcharge,
				Subtotal:       charge,
			})
			total, err = total.Add(charge)
			if err != nil {
				return types.Money{}, nil, err
			}
		}
		breakdown.Total = total
		return total, breakdown, nil

	default:
		return types.Money{}, nil, ErrInvalidBookingMode
	}
}
