package cmd

import (
	"context"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	apptDomain "github.com/serenease/notify/appointments/domain"
	apptRepo "github.com/serenease/notify/appointments/repository"
	clientsDomain "github.com/serenease/notify/clients/domain"
	clientsRepo "github.com/serenease/notify/clients/repository"
	coreConfig "github.com/serenease/notify/core/config"
	coreDB "github.com/serenease/notify/core/database"
	domainAppointment "github.com/serenease/notify/domains/appointment"
	domainCampaign "github.com/serenease/notify/domains/campaign"
	domainClient "github.com/serenease/notify/domains/client"
	domainHealth "github.com/serenease/notify/domains/health"
	domainPreference "github.com/serenease/notify/domains/preference"
	domainReminder "github.com/serenease/notify/domains/reminder"
	domainTemplate "github.com/serenease/notify/domains/template"
	"github.com/serenease/notify/infrastructure/channel"
	"github.com/serenease/notify/infrastructure/valkey"
	"github.com/serenease/notify/notification/application"
	"github.com/serenease/notify/notification/domain"
	notifyRepo "github.com/serenease/notify/notification/repository"
	"github.com/serenease/notify/pkg/msgworker"
	"github.com/serenease/notify/pkg/utils"
	"github.com/serenease/notify/usecase"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var (
	db *gorm.DB
	vk *valkey.Client

	// Repositories
	clientRepository      clientsDomain.IClientRepository
	appointmentRepository apptDomain.IAppointmentRepository
	deliveryRepository    domain.IDeliveryRepository
	preferenceRepository  domain.IPreferenceRepository
	templateRepository    domain.ITemplateRepository
	campaignRepository    domain.ICampaignRepository

	// Application layer
	deliveryScheduler  *application.DeliveryScheduler
	preferenceResolver *application.PreferenceResolver
	campaignPlanner    *application.CampaignPlanner
	notifyEngine       *application.Engine

	// Usecases
	reminderUsecase    domainReminder.IReminderUsecase
	appointmentUsecase domainAppointment.IAppointmentUsecase
	clientUsecase      domainClient.IClientUsecase
	templateUsecase    domainTemplate.ITemplateUsecase
	preferenceUsecase  domainPreference.IPreferenceUsecase
	campaignUsecase    domainCampaign.ICampaignUsecase
	healthUsecase      domainHealth.IHealthUsecase
)

var rootCmd = &cobra.Command{
	Use:   "notify",
	Short: "Appointment reminder and campaign delivery engine",
	Long: `Schedules appointment reminders from per-client rules, plans campaign
batches and delivers both over email and SMS with retry and idempotency
guarantees.`,
}

func init() {
	utils.LoadEnv(".")

	time.Local = time.UTC

	rootCmd.CompletionOptions.DisableDefaultCmd = true

	cobra.OnInitialize(initApp)
}

func initApp() {
	cfg, err := coreConfig.LoadConfig()
	if err != nil {
		logrus.Fatalf("Could not load configuration: %v", err)
	}

	if cfg.App.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}

	if err := utils.CreateFolder(cfg.Paths.Storages); err != nil {
		logrus.Fatalf("Could not create storage directory: %v", err)
	}

	db, err = coreDB.NewDatabase(cfg)
	if err != nil {
		logrus.Fatalf("Could not open database: %v", err)
	}

	if cfg.Database.ValkeyEnabled {
		vk, err = valkey.NewClient(valkey.Config{
			Address:   cfg.Database.ValkeyAddress,
			Password:  cfg.Database.ValkeyPassword,
			DB:        cfg.Database.ValkeyDB,
			KeyPrefix: cfg.Database.ValkeyKeyPrefix,
		})
		if err != nil {
			logrus.WithError(err).Warn("Valkey unavailable, continuing standalone")
			vk = nil
		}
	}

	// Repositories
	clientRepository = clientsRepo.NewClientGormRepository(db)
	appointmentRepository = apptRepo.NewAppointmentGormRepository(db)
	deliveryRepository = notifyRepo.NewDeliveryGormRepository(db)
	preferenceRepository = notifyRepo.NewPreferenceGormRepository(db)
	templateRepository = notifyRepo.NewTemplateGormRepository(db)
	campaignRepository = notifyRepo.NewCampaignGormRepository(db)

	// Application layer
	deliveryScheduler = application.NewDeliveryScheduler(deliveryRepository)
	preferenceResolver = application.NewPreferenceResolver(preferenceRepository)
	audienceResolver := application.NewAudienceResolver(clientRepository)
	campaignPlanner = application.NewCampaignPlanner(
		campaignRepository, templateRepository, deliveryRepository,
		audienceResolver, preferenceResolver)

	adapters := channel.BuildRegistry(cfg.Channels)
	dispatcher := application.NewDispatcher(
		deliveryRepository, templateRepository, clientRepository,
		appointmentRepository, preferenceResolver, adapters,
		application.DispatchPolicy{
			MaxRetries:      cfg.Engine.MaxRetries,
			BackoffBase:     cfg.Engine.BackoffBase,
			BackoffMax:      cfg.Engine.BackoffMax,
			DispatchTimeout: cfg.Engine.DispatchTimeout,
			DryRun:          cfg.Engine.DryRun,
		})

	pool := msgworker.NewDeliveryWorkerPool(cfg.WorkerPool.Size, cfg.WorkerPool.QueueSize)
	notifyEngine = application.NewEngine(
		deliveryScheduler, dispatcher, campaignPlanner, campaignRepository,
		pool, vk, cfg.Engine.TickInterval)

	// Usecases
	reminderUsecase = usecase.NewReminderService(
		appointmentRepository, deliveryScheduler, preferenceResolver, notifyEngine)
	appointmentUsecase = usecase.NewAppointmentService(
		appointmentRepository, clientRepository, reminderUsecase)
	clientUsecase = usecase.NewClientService(clientRepository)
	templateUsecase = usecase.NewTemplateService(templateRepository)
	preferenceUsecase = usecase.NewPreferenceService(
		preferenceRepository, preferenceResolver, reminderUsecase)
	campaignUsecase = usecase.NewCampaignService(
		campaignRepository, templateRepository, campaignPlanner,
		deliveryScheduler, notifyEngine)
	healthUsecase = usecase.NewHealthService(vk, notifyEngine)
}

// initSchemas runs gorm auto-migration for every repository.
func initSchemas(ctx context.Context) error {
	for _, init := range []func(context.Context) error{
		clientRepository.InitSchema,
		appointmentRepository.InitSchema,
		deliveryRepository.InitSchema,
		preferenceRepository.InitSchema,
		templateRepository.InitSchema,
		campaignRepository.InitSchema,
	} {
		if err := init(ctx); err != nil {
			return err
		}
	}
	return nil
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logrus.Fatalln(err)
	}
}
