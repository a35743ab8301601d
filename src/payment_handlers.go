package main

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"

	"cabins/src/common"
	"cabins/src/db"
	"cabins/src/lib"
	"cabins/src/models"
	"cabins/src/types"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
	"github.com/tidwall/gjson"
)

func paymentHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/payments/intent", func(ctx *gin.Context) {
			var body types.CreatePaymentIntentRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			conn := db.GetDb()
			booking := &models.Booking{}
			if err := conn.First(booking, body.BookingID).Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": common.ErrBookingNotFound.Error()})
				return
			}
			if booking.UserID != ctx.GetUint("id") {
				ctx.JSON(http.StatusNotFound, gin.H{"error": common.ErrBookingNotFound.Error()})
				return
			}
			pi, err := common.CreatePaymentIntent(booking)
			if err != nil {
				log.Printf("Error creating payment intent for booking %d: %s\n", booking.ID, err.Error())
				switch {
				case errors.Is(err, common.ErrAlreadyExpired), errors.Is(err, common.ErrNotInHoldState):
					ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
				default:
					ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				}
				return
			}
			ctx.JSON(http.StatusOK, gin.H{
				"payment_intent": pi.ID,
				"client_secret":  pi.ClientSecret,
				"amount":         pi.Amount,
				"currency":       pi.Currency,
			})
		}).
		POST("/payments/confirm", func(ctx *gin.Context) {
			var body types.ConfirmPaymentRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			conn := db.GetDb()
			booking := &models.Booking{}
			if err := conn.First(booking, body.BookingID).Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": common.ErrBookingNotFound.Error()})
				return
			}
			if booking.UserID != ctx.GetUint("id") {
				ctx.JSON(http.StatusNotFound, gin.H{"error": common.ErrBookingNotFound.Error()})
				return
			}
			payment, err := common.ProcessPaymentSuccess(booking, body.PaymentIntent)
			if err != nil {
				log.Printf("Error confirming payment for booking %d: %s\n", booking.ID, err.Error())
				switch {
				case errors.Is(err, common.ErrReconciliationTimeout):
					ctx.JSON(http.StatusGatewayTimeout, gin.H{"error": err.Error(), "code": "reconciliation_timeout"})
				case errors.Is(err, common.ErrPaymentNotSucceeded):
					ctx.JSON(http.StatusPaymentRequired, gin.H{"error": err.Error(), "code": "payment_not_succeeded"})
				case errors.Is(err, common.ErrAlreadyExpired):
					ctx.JSON(http.StatusConflict, gin.H{"error": err.Error(), "code": "hold_expired"})
				case errors.Is(err, common.ErrBookingConfirmationFailed):
					ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "code": "confirmation_failed"})
				case errors.Is(err, common.ErrPaymentVerificationFailed):
					ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "verification_failed"})
				default:
					ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				}
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": payment})
		})
	return g
}

func stripeWebhookRoute(g *gin.Engine) *gin.RouterGroup {
	apiv1 := apiv1Group(g)
	apiv1.POST("/webhook/stripe", func(ctx *gin.Context) {
		payload, err := io.ReadAll(ctx.Request.Body)
		if err != nil {
			log.Printf("Error reading request body: %s\n", err.Error())
			ctx.Status(http.StatusServiceUnavailable)
			return
		}
		whsecret := os.Getenv("STRIPE_WEBHOOK_SECRET")
		event, err := webhook.ConstructEvent(payload, ctx.GetHeader("Stripe-Signature"), whsecret)
		if err != nil {
			log.Printf("Error verifying webhook signature: %s\n", err.Error())
			ctx.Status(http.StatusBadRequest)
			return
		}
		if !gjson.ValidBytes(event.Data.Raw) {
			log.Printf("[StripeEvent] %s carries malformed payload\n", event.ID)
			ctx.Status(http.StatusBadRequest)
			return
		}
		log.Printf("[StripeEvent] %s %s\n", event.ID, event.Type)
		if !lib.FirstDelivery(ctx, event.ID) {
			// Redelivery of an event we already processed. Posting is
			// idempotent anyway, so just acknowledge.
			log.Printf("[StripeEvent] %s already seen, acknowledging\n", event.ID)
			ctx.Status(http.StatusOK)
			return
		}
		switch event.Type {
		case "payment_intent.succeeded":
			var pi stripe.PaymentIntent
			if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
				log.Printf("[Stripe] Error parsing PaymentIntent: %s\n", err.Error())
				ctx.Status(http.StatusBadRequest)
				return
			}
			log.Printf("[PaymentIntent] ID: %s %s\n", pi.ID, pi.Status)
			id := gjson.GetBytes(event.Data.Raw, "metadata.booking_id").String()
			atoi, err := strconv.Atoi(id)
			if err != nil {
				log.Printf("Could not retrieve booking id for intent %s: %s\n", pi.ID, err.Error())
				ctx.Status(http.StatusOK)
				return
			}
			conn := db.GetDb()
			booking := &models.Booking{}
			if err := conn.First(booking, uint(atoi)).Error; err != nil {
				log.Printf("Booking %d for intent %s not found: %s\n", atoi, pi.ID, err.Error())
				ctx.Status(http.StatusOK)
				return
			}
			if _, err := common.ProcessPaymentSuccess(booking, pi.ID); err != nil {
				// Non-2xx makes the processor redeliver; release the dedup
				// marker so the redelivery is processed, not acknowledged.
				// Posting stays idempotent under the external payment id.
				log.Printf("Error reconciling intent %s: %s\n", pi.ID, err.Error())
				lib.ForgetDelivery(ctx, event.ID)
				ctx.Status(http.StatusInternalServerError)
				return
			}
		case "payment_intent.payment_failed":
			var pi stripe.PaymentIntent
			if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
				log.Printf("[Stripe] Error parsing PaymentIntent: %s\n", err.Error())
				ctx.Status(http.StatusBadRequest)
				return
			}
			log.Printf("[PaymentIntent] ID: %s failed\n", pi.ID)
		}
		ctx.Status(http.StatusOK)
	})
	return apiv1
}
