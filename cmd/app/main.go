package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/glue"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	influxdb2 "github.com/influxdata/influxdb-client-go"
	"github.com/oneee-playground/glue-deployer/internal/blob"
	conf "github.com/oneee-playground/glue-deployer/internal/config"
	"github.com/oneee-playground/glue-deployer/internal/deploy"
	"github.com/oneee-playground/glue-deployer/internal/event"
	"github.com/oneee-playground/glue-deployer/internal/history"
	"github.com/oneee-playground/glue-deployer/internal/job"
	"github.com/oneee-playground/glue-deployer/internal/metric"
	"github.com/oneee-playground/glue-deployer/internal/publish"
	"github.com/oneee-playground/glue-deployer/internal/reconcile"
	"github.com/oneee-playground/glue-deployer/internal/run"
	"github.com/oneee-playground/glue-deployer/internal/server"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	conf.LoadFromEnv()

	logger := zap.New(zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.AddSync(os.Stdout), zap.DebugLevel,
	))

	settings := conf.DefaultSettings()
	if conf.SettingsPath != "" {
		loaded, err := conf.LoadSettings(conf.SettingsPath)
		if err != nil {
			logger.Fatal("failed to load settings", zap.Error(err))
		}
		settings = loaded
	}

	awsConfig := aws.Config{
		Region:      conf.Region,
		Credentials: credentials.NewStaticCredentialsProvider(conf.AccessKeyID, conf.SecretAccessKey, ""),
	}

	s3Client := s3.NewFromConfig(awsConfig)
	glueClient := glue.NewFromConfig(awsConfig)
	sqsClient := sqs.NewFromConfig(awsConfig)

	validator, err := job.NewValidator()
	if err != nil {
		logger.Fatal("failed to initialize request validator", zap.Error(err))
	}

	influxCilent := influxdb2.NewClientWithOptions(conf.InfluxURL, conf.InfluxToken, influxdb2.DefaultOptions())
	defer influxCilent.Close()

	session, errchan := metric.NewStorage(influxCilent).WriteSession(conf.InfluxOrg, conf.InfluxBucket)
	defer session.Close()

	go func() {
		for err := range errchan {
			logger.Warn("failed to write metric", zap.Error(err))
		}
	}()

	recorder := metric.NewRecorder(session)

	store := blob.NewS3Store(s3Client)
	supervisor := run.NewSupervisor(glueClient, logger,
		run.WithInterval(settings.Runtime.PollInterval),
		run.WithObserver(recorder),
	)

	pipelineOpts := deploy.Opts{
		Log:             logger,
		Store:           store,
		Publisher:       publish.NewPublisher(store, logger),
		Reconciler:      reconcile.NewReconciler(glueClient, logger, settings.Tags),
		Supervisor:      supervisor,
		Metrics:         recorder,
		SmallWorkerType: settings.Sizing.Small.WorkerType,
		LargeWorkerType: settings.Sizing.Large.WorkerType,
		SettleDelay:     settings.Runtime.SettleDelay,
	}
	if conf.JournalPath != "" {
		pipelineOpts.Journal = history.NewJournal(conf.JournalPath)
	}

	serverOpts := server.ServerOpts{
		RequestPoller:  job.NewPoller(sqsClient, validator, conf.RequestQueueURL),
		PollInterval:   10 * time.Second,
		Deployer:       deploy.New(pipelineOpts),
		Timer:          supervisor,
		EventPublisher: event.NewSQSEventPublisher(sqsClient, logger, conf.EventQueueURL),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(logger, serverOpts)
	if err := srv.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Fatal("serve failed", zap.Error(err))
	}

	logger.Info("server stopped")
}
