package appcontext

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/RoyceAzure/lab/mmart/internal/api"
	"github.com/RoyceAzure/lab/mmart/internal/api/handler"
	"github.com/RoyceAzure/lab/mmart/internal/config"
	"github.com/RoyceAzure/lab/mmart/internal/infra/consumer"
	"github.com/RoyceAzure/lab/mmart/internal/infra/notifier"
	"github.com/RoyceAzure/lab/mmart/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/mmart/internal/infra/repository/redis_repo"
	"github.com/RoyceAzure/lab/mmart/internal/infra/sms"
	"github.com/RoyceAzure/lab/mmart/internal/service"
	"github.com/RoyceAzure/lab/mmart/internal/token"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ApplicationContext struct {
	Cf          *config.Config
	DbConn      *gorm.DB
	DbDao       *db.DbDao
	RedisClient *redis.Client
	TokenMaker  *token.Maker

	ProfileRepo  *db.ProfileRepo
	ProductRepo  *db.ProductRepo
	OrderRepo    *db.OrderRepo
	LoyaltyRepo  *db.LoyaltyRepo
	ReferralRepo *db.ReferralRepo
	BankCardRepo *db.BankCardRepo
	OTPRepo      *redis_repo.OTPRepo

	Notifier           notifier.Notifier
	SmsSender          sms.Sender
	OrderEventConsumer *consumer.OrderEventConsumer

	AuthService     service.IAuthService
	ProductService  service.IProductService
	CartService     service.ICartService
	OrderService    service.IOrderService
	LoyaltyService  service.ILoyaltyService
	ReferralService service.IReferralService

	Server *api.Server
}

func NewApplicationContext(cf *config.Config) (*ApplicationContext, error) {
	app := ApplicationContext{
		Cf: cf,
	}
	err := app.Init()
	if err != nil {
		return nil, err
	}
	return &app, nil
}

func (app *ApplicationContext) Init() error {
	err := app.setUpdbConn()
	if err != nil {
		return err
	}
	err = app.setUpdbDao()
	if err != nil {
		return err
	}
	err = app.setUpRedis()
	if err != nil {
		return err
	}
	err = app.setUpRepos()
	if err != nil {
		return err
	}
	err = app.setTokenMaker()
	if err != nil {
		return err
	}
	err = app.setUpNotifier()
	if err != nil {
		return err
	}
	err = app.setUpSmsSender()
	if err != nil {
		return err
	}
	err = app.setUpServices()
	if err != nil {
		return err
	}
	err = app.setUpServer()
	if err != nil {
		return err
	}
	return nil
}

func (app *ApplicationContext) setUpdbConn() error {
	log.Printf("Start setup database connection")
	conn, err := db.GetDbConn(app.Cf.DbName, app.Cf.DbHost, app.Cf.DbPort, app.Cf.DbUser, app.Cf.DbPas)
	if err != nil {
		return err
	}
	app.DbConn = conn
	log.Printf("Finish setup database connection")
	return nil
}

func (app *ApplicationContext) setUpdbDao() error {
	log.Printf("Start setup database DAO")
	app.DbDao = db.NewDbDao(app.DbConn)
	if err := app.DbDao.InitMigrate(); err != nil {
		return err
	}
	log.Printf("Finish setup database DAO")
	return nil
}

func (app *ApplicationContext) setUpRedis() error {
	log.Printf("Start setup redis client")
	app.RedisClient = redis.NewClient(&redis.Options{
		Addr:     app.Cf.RedisAddr,
		Password: app.Cf.RedisPas,
	})
	log.Printf("Finish setup redis client")
	return nil
}

func (app *ApplicationContext) setUpRepos() error {
	log.Printf("Start setup repositories")
	app.ProfileRepo = db.NewProfileRepo(app.DbDao)
	app.ProductRepo = db.NewProductRepo(app.DbDao)
	app.OrderRepo = db.NewOrderRepo(app.DbDao)
	app.LoyaltyRepo = db.NewLoyaltyRepo(app.DbDao)
	app.ReferralRepo = db.NewReferralRepo(app.DbDao)
	app.BankCardRepo = db.NewBankCardRepo(app.DbDao)
	app.OTPRepo = redis_repo.NewOTPRepo(app.RedisClient)
	log.Printf("Finish setup repositories")
	return nil
}

func (app *ApplicationContext) setTokenMaker() error {
	log.Printf("Start setup token maker")
	duration := 24 * time.Hour
	if app.Cf.TokenDuration != "" {
		d, err := time.ParseDuration(app.Cf.TokenDuration)
		if err != nil {
			return fmt.Errorf("invalid TOKEN_DURATION: %w", err)
		}
		duration = d
	}

	tokenMaker, err := token.NewMaker(app.Cf.AuthTokenKey, duration)
	if err != nil {
		return err
	}
	app.TokenMaker = tokenMaker
	log.Printf("Finish setup token maker")
	return nil
}

// kafka 沒設定就退回 noop，開發環境不強制起 broker
func (app *ApplicationContext) setUpNotifier() error {
	log.Printf("Start setup notifier")
	brokers := app.Cf.KafkaBrokerList()
	if len(brokers) == 0 {
		app.Notifier = notifier.NoopNotifier{}
	} else {
		app.Notifier = notifier.NewKafkaNotifier(brokers, app.Cf.KafkaTopic)

		logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
		app.OrderEventConsumer = consumer.NewOrderEventConsumer(
			brokers, app.Cf.KafkaTopic, "mmart-push-worker",
			app.ProfileRepo, consumer.LogPusher{Logger: &logger}, &logger)
	}
	log.Printf("Finish setup notifier")
	return nil
}

func (app *ApplicationContext) setUpSmsSender() error {
	log.Printf("Start setup sms sender")
	if app.Cf.SmsEndpoint == "" {
		app.SmsSender = sms.NoopSender{}
	} else {
		app.SmsSender = sms.NewHTTPSender(app.Cf.SmsEndpoint, app.Cf.SmsApiKey, app.Cf.SmsSender)
	}
	log.Printf("Finish setup sms sender")
	return nil
}

func (app *ApplicationContext) setUpServices() error {
	log.Printf("Start setup services")

	deliveryFee := decimal.Zero
	if app.Cf.DeliveryFee != "" {
		fee, err := decimal.NewFromString(app.Cf.DeliveryFee)
		if err != nil {
			return fmt.Errorf("invalid DELIVERY_FEE: %w", err)
		}
		deliveryFee = fee
	}

	app.ProductService = service.NewProductService(app.ProductRepo)
	app.CartService = service.NewCartService(app.DbDao, app.OrderRepo, app.ProductRepo)
	app.OrderService = service.NewOrderService(
		app.DbDao, app.OrderRepo, app.ProductRepo, app.ProfileRepo,
		app.LoyaltyRepo, app.BankCardRepo, app.Notifier, deliveryFee)
	app.LoyaltyService = service.NewLoyaltyService(app.DbDao, app.LoyaltyRepo, app.OrderRepo, app.ReferralRepo)
	app.ReferralService = service.NewReferralService(app.DbDao, app.ReferralRepo, app.ProfileRepo, app.LoyaltyRepo)
	app.AuthService = service.NewAuthService(
		app.DbDao, app.ProfileRepo, app.OTPRepo, app.SmsSender, app.TokenMaker, app.ReferralService)

	log.Printf("Finish setup services")
	return nil
}

func (app *ApplicationContext) setUpServer() error {
	log.Printf("Start setup server")
	app.Server = api.NewServer(
		handler.NewAuthHandler(app.AuthService),
		handler.NewProductHandler(app.ProductService, app.ProfileRepo),
		handler.NewCartHandler(app.CartService),
		handler.NewOrderHandler(app.OrderService, app.Cf.UploadDir),
		handler.NewLoyaltyHandler(app.LoyaltyService, app.ReferralService),
		handler.NewAdminHandler(app.OrderService, app.LoyaltyService, app.Cf.LoyaltyPercent),
	)
	log.Printf("Finish setup server")
	return nil
}

func (app *ApplicationContext) Shutdown(ctx context.Context) error {
	log.Printf("Start application shutdown")

	done := make(chan error)
	go func() {
		defer close(done)

		if app.OrderEventConsumer != nil {
			log.Printf("Stopping order event consumer...")
			app.OrderEventConsumer.Stop()
		}

		if closer, ok := app.Notifier.(interface{ Close() error }); ok {
			log.Printf("Closing kafka writer...")
			if err := closer.Close(); err != nil {
				//有錯誤不結束流程
				log.Printf("kafka writer close error: %v", err)
			}
		}

		if app.RedisClient != nil {
			log.Printf("Closing redis client...")
			if err := app.RedisClient.Close(); err != nil {
				log.Printf("redis close error: %v", err)
			}
		}

		if app.DbConn != nil {
			log.Printf("Closing database connection...")
			if sqlDB, err := app.DbConn.DB(); err == nil {
				sqlDB.Close()
			}
		}

		log.Printf("Application shutdown complete")
		done <- nil
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("shutdown timeout: %v", ctx.Err())
	}
}
