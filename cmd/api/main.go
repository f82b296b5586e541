package main

import (
	"os"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/handler"
	"app/internal/infra/db"
	infraRepo "app/internal/infra/repository"
	"app/internal/logging"
	"app/internal/server"
	"app/internal/usecase"

	"github.com/joho/godotenv"
)

func main() {
	//.envは無ければ環境変数だけで動く
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logging.New(cfg.LogLevel)

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		log.Error("db connect failed", "error", err)
		os.Exit(1)
	}
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.MenuItem{},
		&model.Order{},
		&model.OrderLine{},
		&model.Payment{},
		&model.AuditLog{},
	); err != nil {
		log.Error("automigrate failed", "error", err)
		os.Exit(1)
	}

	//TxManager（GORM実装）生成
	tx := infraRepo.NewTxManagerGorm(gormDB)

	//価格ポリシーは設定から組む
	var tax usecase.TaxPolicy = usecase.ZeroTax{}
	if cfg.TaxRate.IsPositive() {
		tax = usecase.RateTax{Rate: cfg.TaxRate}
	}
	var fee usecase.DeliveryFeePolicy = usecase.FlatDeliveryFee{Fee: cfg.DeliveryFee}
	if cfg.FreeDeliveryThreshold.IsPositive() {
		fee = usecase.WaivableDeliveryFee{Fee: cfg.DeliveryFee, WaiveAbove: cfg.FreeDeliveryThreshold}
	}

	pricing := usecase.NewPricingEngine(tax, fee)
	numbers := usecase.NewUUIDOrderNumberGenerator()

	//Usecase生成
	orderUC := usecase.NewOrderUsecase(tx, pricing, numbers)
	paymentUC := usecase.NewPaymentUsecase(tx)

	//Handler生成
	orderH := handler.NewOrderHandler(orderUC)
	paymentH := handler.NewPaymentHandler(paymentUC)

	log.Info("starting api", "port", cfg.Port, "env", cfg.GoEnv)

	//Server起動
	if err := server.Start(cfg, log, orderH, paymentH); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
