package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"restaurant/internal/config"
	"restaurant/internal/handler"
	"restaurant/internal/infra/broker"
	"restaurant/internal/infra/cache"
	"restaurant/internal/infra/db"
	infraRepo "restaurant/internal/infra/repository"
	"restaurant/internal/logger"
	"restaurant/internal/metrics"
	"restaurant/internal/notify"
	"restaurant/internal/server"
	"restaurant/internal/usecase"
	"restaurant/internal/validator"
)

const serviceName = "restaurant"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	//DB接続
	gormDB, err := db.Connect(log)
	if err != nil {
		log.WithError(err).Fatal("db connect failed")
	}
	if err := db.Migrate(gormDB); err != nil {
		log.WithError(err).Fatal("db migrate failed")
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	rtRepo := infraRepo.NewRefreshTokenRepository(gormDB)
	dishRepo := infraRepo.NewDishGormRepository(gormDB)
	categoryRepo := infraRepo.NewCategoryGormRepository(gormDB)
	couponRepo := infraRepo.NewCouponGormRepository(gormDB)
	notificationRepo := infraRepo.NewNotificationGormRepository(gormDB)
	reportRepo := infraRepo.NewReportGormRepository(gormDB)
	floorRepo := infraRepo.NewFloorGormRepository(gormDB)
	tableRepo := infraRepo.NewDiningTableGormRepository(gormDB)
	chairRepo := infraRepo.NewChairGormRepository(gormDB)
	bookingRepo := infraRepo.NewChairBookingGormRepository(gormDB)
	natureGroupRepo := infraRepo.NewNatureGroupGormRepository(gormDB)
	mainGroupRepo := infraRepo.NewMainGroupGormRepository(gormDB)
	ledgerRepo := infraRepo.NewLedgerGormRepository(gormDB)
	ledgerTxRepo := infraRepo.NewLedgerTransactionGormRepository(gormDB)
	incomeRepo := infraRepo.NewIncomeStatementGormRepository(gormDB)
	balanceRepo := infraRepo.NewBalanceSheetGormRepository(gormDB)
	messTypeRepo := infraRepo.NewMessTypeGormRepository(gormDB)
	menuRepo := infraRepo.NewMenuGormRepository(gormDB)
	messRepo := infraRepo.NewMessGormRepository(gormDB)
	messTxRepo := infraRepo.NewMessTransactionGormRepository(gormDB)
	txm := infraRepo.NewTxManagerGorm(gormDB)

	//レポートキャッシュ（REDIS_ADDR未設定なら無効）
	reportCache := cache.NewNoop()
	if cfg.RedisAddr != "" {
		reportCache = cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, serviceName)
	}

	//通知のfan-out（RABBITMQ_URL未設定ならDB保存のみ）
	var publisher broker.Publisher
	if cfg.RabbitMQURL != "" {
		mq, err := broker.ConnectRabbitMQ(cfg.RabbitMQURL, log)
		if err != nil {
			log.WithError(err).Warn("rabbitmq unavailable, notifications stay local")
		} else {
			publisher = mq
			defer mq.Close()
		}
	}

	m := metrics.New()
	dispatcher := notify.NewDispatcher(notificationRepo, publisher, m, log)

	//Usecase生成
	authUC := usecase.NewAuthUsecase(cfg, userRepo, rtRepo, validator.NewAuthValidator(userRepo))
	dishUC := usecase.NewDishUsecase(dishRepo, categoryRepo)
	orderUC := usecase.NewOrderUsecase(txm, dispatcher, m)
	billUC := usecase.NewBillUsecase(txm, dispatcher, m)
	deliveryUC := usecase.NewDeliveryUsecase(txm, userRepo, dispatcher)
	creditUC := usecase.NewCreditUsecase(txm, m)
	couponUC := usecase.NewCouponUsecase(couponRepo)
	notificationUC := usecase.NewNotificationUsecase(notificationRepo)
	reportUC := usecase.NewReportUsecase(reportRepo, userRepo, reportCache, cfg.ReportCacheTTL, m, log)
	seatingUC := usecase.NewSeatingUsecase(floorRepo, tableRepo, chairRepo, bookingRepo, txm)
	accountingUC := usecase.NewAccountingUsecase(natureGroupRepo, mainGroupRepo, ledgerRepo, ledgerTxRepo, incomeRepo, balanceRepo)
	messUC := usecase.NewMessUsecase(txm, messTypeRepo, menuRepo, messRepo, messTxRepo)

	//Handler生成
	handlers := server.Handlers{
		Auth:         handler.NewAuthHandler(cfg, userRepo, authUC),
		AdminUser:    handler.NewAdminUserHandler(cfg, userRepo, authUC),
		Dish:         handler.NewDishHandler(dishUC),
		Order:        handler.NewOrderHandler(orderUC),
		Bill:         handler.NewBillHandler(billUC, orderUC),
		Delivery:     handler.NewDeliveryHandler(deliveryUC),
		Credit:       handler.NewCreditHandler(creditUC),
		Coupon:       handler.NewCouponHandler(couponUC),
		Notification: handler.NewNotificationHandler(notificationUC),
		Report:       handler.NewReportHandler(reportUC),
		Seating:      handler.NewSeatingHandler(seatingUC),
		Accounting:   handler.NewAccountingHandler(accountingUC),
		Mess:         handler.NewMessHandler(messUC),
	}

	e := server.New(cfg, log, m, userRepo, handlers)

	//SIGINT/SIGTERMで停止
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx, e, cfg.Addr(), log); err != nil {
		log.WithError(err).Error("server stopped")
	}
}
