package boot

import (
	"log"

	"cabins/src/common"
	"cabins/src/config"
	"cabins/src/db"
	"cabins/src/lib"
	"cabins/src/models"

	"gorm.io/gorm"
)

func InitDb() *gorm.DB {
	db := db.GetDb()

	err := db.AutoMigrate(
		&models.User{},
		&models.Booking{},
		&models.BookingRoom{},
		&models.Payment{},
		&models.PaymentMethod{},
		&models.LedgerTransaction{},
		&models.LedgerEntry{},
		&models.Refund{},
		&models.PendingRefund{},
	)
	if err != nil {
		log.Fatalf("error migration: %s", err.Error())
	}

	return db
}

func InitScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("An error has occurred. Check logs for info")
		return
	}
	cfg := config.GetPricing()
	if err := common.StartHoldSweeper(cfg.SweepInterval()); err != nil {
		log.Printf("Error scheduling hold sweeper: %s\n", err.Error())
		return
	}
	jobsWaitingInQueue := len(sched.Jobs())
	log.Println("Jobs in queue:", jobsWaitingInQueue)
	sched.Start()
}

func StopScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("Error retrieving Scheduler. Check logs for info")
		return
	}
	err = sched.Shutdown()
	if err != nil {
		log.Println("An error has occurred while shutting stopping Scheduler. Check logs for info")
		return
	}
}
