package main

import (
	"errors"
	"log"
	"net/http"

	"cabins/src/common"
	"cabins/src/db"
	"cabins/src/models"
	"cabins/src/types"

	"github.com/gin-gonic/gin"
)

// refundHandlers are admin-only: listing and resolving parked refunds.
func refundHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/refunds/pending", func(ctx *gin.Context) {
			conn := db.GetDb()
			var pending []models.PendingRefund
			err := conn.
				Model(&models.PendingRefund{}).
				Where(&models.PendingRefund{Status: types.PENDING_REFUND_OPEN}).
				Preload("Booking").
				Order("created_at ASC").
				Find(&pending).
				Error
			if err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": pending, "count": len(pending)})
		}).
		PUT("/refunds/pending/:id/approve", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var body types.ApprovePendingRefundRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil && err.Error() != "EOF" {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			adminId := ctx.GetUint("id")
			refund, err := common.ProcessPendingRefund(params.ID, body.ApprovedAmount, adminId)
			if err != nil {
				log.Printf("Error resolving pending refund %d: %s\n", params.ID, err.Error())
				if errors.Is(err, common.ErrPendingRefundResolved) {
					ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
					return
				}
				if errors.Is(err, common.ErrInvalidRefundAmount) {
					ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
					return
				}
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": refund})
		})
	return g
}
