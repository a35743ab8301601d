package main

import (
	"errors"
	"log"
	"net/http"
	"time"

	"cabins/src/common"
	"cabins/src/config"
	"cabins/src/db"
	"cabins/src/models"
	"cabins/src/types"
	"cabins/src/utils"

	"github.com/gin-gonic/gin"
)

// quoteRoutes are public: pricing a stay needs no account.
func quoteRoutes(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/bookings/quote", func(ctx *gin.Context) {
			var body types.QuotePriceRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			checkin, err := utils.ParseDate(body.Checkin)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			checkout, err := utils.ParseDate(body.Checkout)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			cfg := config.GetPricing()
			total, breakdown, err := common.CalculatePrice(cfg, types.Property(body.Property), checkin, checkout, types.BookingMode(body.Mode), body.RoomIDs, body.GuestCount, body.ChildCount)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"total": total, "breakdown": breakdown})
		})
	return g
}

func bookingHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/bookings", func(ctx *gin.Context) {
			var body types.CreateHoldRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			checkin, err := utils.ParseDate(body.Checkin)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			checkout, err := utils.ParseDate(body.Checkout)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			cfg := config.GetPricing()
			booking, err := common.CreateHold(cfg, &common.HoldRequest{
				UserID:     userId,
				Property:   types.Property(body.Property),
				Mode:       types.BookingMode(body.Mode),
				Checkin:    checkin,
				Checkout:   checkout,
				RoomIDs:    body.RoomIDs,
				GuestCount: body.GuestCount,
				ChildCount: body.ChildCount,
			})
			if err != nil {
				log.Printf("Error creating hold for user %d: %s\n", userId, err.Error())
				switch {
				case errors.Is(err, common.ErrResourceUnavailable):
					ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
				case errors.Is(err, common.ErrMembershipRequired):
					ctx.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
				default:
					ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				}
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": booking})
		}).
		GET("/bookings", func(ctx *gin.Context) {
			userId := ctx.GetUint("id")
			conn := db.GetDb()
			var bookings []models.Booking
			err := conn.
				Model(&models.Booking{}).
				Where(&models.Booking{UserID: userId}).
				Preload("Rooms").
				Order("created_at DESC").
				Find(&bookings).
				Error
			if err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": bookings, "count": len(bookings)})
		}).
		GET("/bookings/:id", func(ctx *gin.Context) {
			booking, ok := ownBooking(ctx)
			if !ok {
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": booking})
		}).
		GET("/bookings/:id/expiry", func(ctx *gin.Context) {
			booking, ok := ownBooking(ctx)
			if !ok {
				return
			}
			// Read path re-checks expiry itself rather than trusting the
			// sweeper to have run.
			ctx.JSON(http.StatusOK, gin.H{
				"status":          booking.Status,
				"hold_expires_at": booking.HoldExpiresAt,
				"expired":         common.IsExpired(booking),
			})
		}).
		GET("/bookings/:id/refund-preview", func(ctx *gin.Context) {
			booking, ok := ownBooking(ctx)
			if !ok {
				return
			}
			conn := db.GetDb()
			payment := &models.Payment{}
			paid := booking.Total()
			if err := conn.Where("booking_id = ?", booking.ID).First(payment).Error; err == nil {
				paid = payment.Total()
			}
			cfg := config.GetPricing()
			refund, rule, err := common.CalculateRefund(cfg, booking, paid, time.Now())
			if err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"refund": refund, "rule": rule})
		}).
		PUT("/bookings/:id/cancel", func(ctx *gin.Context) {
			booking, ok := ownBooking(ctx)
			if !ok {
				return
			}
			var body types.CancelBookingRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil && err.Error() != "EOF" {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			cfg := config.GetPricing()
			canceled, refund, record, err := common.CancelBooking(cfg, booking.ID, time.Now(), body.Reason, userId)
			if err != nil {
				log.Printf("Error canceling booking %d: %s\n", booking.ID, err.Error())
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": canceled, "refund": refund, "refund_record": record})
		})
	return g
}

// ownBooking loads the path booking and enforces ownership. Admins see all.
func ownBooking(ctx *gin.Context) (*models.Booking, bool) {
	var params types.SimpleRequestParams
	if err := ctx.ShouldBindUri(&params); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	conn := db.GetDb()
	booking := &models.Booking{}
	if err := conn.Preload("Rooms").First(booking, params.ID).Error; err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": common.ErrBookingNotFound.Error()})
		return nil, false
	}
	if booking.UserID != ctx.GetUint("id") && ctx.GetString("role") != "admin" {
		ctx.JSON(http.StatusNotFound, gin.H{"error": common.ErrBookingNotFound.Error()})
		return nil, false
	}
	return booking, true
}
