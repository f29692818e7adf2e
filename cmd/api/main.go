package main

import (
	"context"
	"os"

	"Trek_Community/internal/config"
	"Trek_Community/internal/handler"
	"Trek_Community/internal/model"
	"Trek_Community/internal/pkg"
	"Trek_Community/internal/repository/mysql"
	"Trek_Community/internal/repository/redis"
	"Trek_Community/internal/router"
	"Trek_Community/internal/service"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

func main() {
	log := zerolog.New(os.Stdout).With().Timestamp().Logger()

	// .env 不存在也没关系，直接读环境变量
	_ = godotenv.Load()

	ctx := context.Background()
	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	pkg.InitSecrets(cfg.AccessSecret, cfg.RefreshSecret)

	if err := mysql.InitDB(cfg.MySQLDSN); err != nil {
		log.Fatal().Err(err).Msg("connect mysql")
	}
	if err := redis.Init(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB); err != nil {
		log.Fatal().Err(err).Msg("connect redis")
	}
	defer redis.Close()

	// 自动建表（开发阶段 OK）
	if err := mysql.DB.AutoMigrate(
		&model.User{},
		&model.Community{},
		&model.CommunityMember{},
		&model.Post{},
		&model.Comment{},
	); err != nil {
		log.Fatal().Err(err).Msg("migrate")
	}

	var producer service.Producer
	if len(cfg.KafkaBrokers) > 0 {
		kp := pkg.NewEventProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer kp.Close()
		producer = kp
	}

	mailer := pkg.NewSMTPMailer(pkg.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	})

	userRepo := mysql.NewUserRepository(mysql.DB)
	communityRepo := mysql.NewCommunityRepository(mysql.DB)
	memberRepo := mysql.NewCommunityMemberRepository(mysql.DB)
	postRepo := mysql.NewPostRepository(mysql.DB)
	commentRepo := mysql.NewCommentRepository(mysql.DB)
	codeStore := &redis.VerificationRepository{}
	tokenStore := &redis.UserRepository{}

	clock := pkg.SystemClock{}
	verificationSvc := service.NewVerificationService(codeStore, userRepo, mailer, clock, cfg.CodeTTL, cfg.CodeLength, log)
	userSvc := service.NewUserService(userRepo, tokenStore, verificationSvc, log)
	communitySvc := service.NewCommunityService(communityRepo, memberRepo, userRepo, producer, log)
	commentSvc := service.NewCommentService(commentRepo, producer, log)
	postSvc := service.NewPostService(postRepo, communityRepo, commentRepo, producer, log)

	r := router.InitRouter(router.Handlers{
		User:      handler.NewUserHandler(userSvc, log),
		EVC:       handler.NewEVCHandler(verificationSvc, log),
		Community: handler.NewCommunityHandler(communitySvc, log),
		Post:      handler.NewPostHandler(postSvc, log),
		Comment:   handler.NewCommentHandler(commentSvc, log),
	})

	log.Info().Str("addr", cfg.ListenAddr).Msg("listening")
	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
