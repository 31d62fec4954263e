package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/glue"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	influxdb2 "github.com/influxdata/influxdb-client-go"
	"github.com/oneee-playground/glue-deployer/internal/blob"
	conf "github.com/oneee-playground/glue-deployer/internal/config"
	"github.com/oneee-playground/glue-deployer/internal/deploy"
	"github.com/oneee-playground/glue-deployer/internal/history"
	"github.com/oneee-playground/glue-deployer/internal/job"
	"github.com/oneee-playground/glue-deployer/internal/metric"
	"github.com/oneee-playground/glue-deployer/internal/publish"
	"github.com/oneee-playground/glue-deployer/internal/reconcile"
	"github.com/oneee-playground/glue-deployer/internal/run"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	os.Exit(execute())
}

// execute runs one deployment pass and returns the process exit code.
func execute() int {
	conf.LoadFromEnv()

	settingsPath := flag.String("settings", conf.SettingsPath, "settings file path")
	flag.Parse()

	logger := zap.New(zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.AddSync(os.Stdout), zap.DebugLevel,
	))

	if *settingsPath == "" {
		logger.Fatal("settings file is not specified")
	}

	settings, err := conf.LoadSettings(*settingsPath)
	if err != nil {
		logger.Fatal("failed to load settings", zap.Error(err))
	}

	awsConfig := aws.Config{
		Region:      conf.Region,
		Credentials: credentials.NewStaticCredentialsProvider(conf.AccessKeyID, conf.SecretAccessKey, ""),
	}

	s3Client := s3.NewFromConfig(awsConfig)
	glueClient := glue.NewFromConfig(awsConfig)

	store := blob.NewS3Store(s3Client)

	var (
		recorder *metric.Recorder
		session  *metric.WriteSession
	)
	if conf.InfluxURL != "" {
		influxClient := influxdb2.NewClientWithOptions(conf.InfluxURL, conf.InfluxToken, influxdb2.DefaultOptions())
		defer influxClient.Close()

		var errchan <-chan error
		session, errchan = metric.NewStorage(influxClient).WriteSession(conf.InfluxOrg, conf.InfluxBucket)
		go func() {
			for err := range errchan {
				logger.Warn("failed to write metric", zap.Error(err))
			}
		}()

		recorder = metric.NewRecorder(session)
	}

	supervisorOpts := []run.Option{run.WithInterval(settings.Runtime.PollInterval)}
	pipelineOpts := deploy.Opts{
		Log:             logger,
		Store:           store,
		Publisher:       publish.NewPublisher(store, logger),
		Reconciler:      reconcile.NewReconciler(glueClient, logger, settings.Tags),
		SmallWorkerType: settings.Sizing.Small.WorkerType,
		LargeWorkerType: settings.Sizing.Large.WorkerType,
		SettleDelay:     settings.Runtime.SettleDelay,
	}
	if recorder != nil {
		supervisorOpts = append(supervisorOpts, run.WithObserver(recorder))
		pipelineOpts.Metrics = recorder
	}
	if conf.JournalPath != "" {
		pipelineOpts.Journal = history.NewJournal(conf.JournalPath)
	}
	pipelineOpts.Supervisor = run.NewSupervisor(glueClient, logger, supervisorOpts...)

	req := job.RequestFromSettings(settings)
	fmt.Println(req.Destination())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	defer stop()

	outcome, err := deploy.New(pipelineOpts).Run(ctx, req)

	if session != nil {
		session.Close()
	}

	if err != nil {
		logger.Error("deployment failed", zap.Error(err))
		return 1
	}

	return outcome.Run.ExitCode()
}
