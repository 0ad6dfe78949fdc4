package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/ssingh-rookie/LeafWise-API/internal/assembler"
	"github.com/ssingh-rookie/LeafWise-API/internal/chat"
	chatrepo "github.com/ssingh-rookie/LeafWise-API/internal/data/repos/chat"
	healthrepo "github.com/ssingh-rookie/LeafWise-API/internal/data/repos/health"
	photorepo "github.com/ssingh-rookie/LeafWise-API/internal/data/repos/photo"
	plantrepo "github.com/ssingh-rookie/LeafWise-API/internal/data/repos/plant"
	reminderrepo "github.com/ssingh-rookie/LeafWise-API/internal/data/repos/reminder"
	speciesrepo "github.com/ssingh-rookie/LeafWise-API/internal/data/repos/species"
	usagerepo "github.com/ssingh-rookie/LeafWise-API/internal/data/repos/usage"
	userrepo "github.com/ssingh-rookie/LeafWise-API/internal/data/repos/user"
	"github.com/ssingh-rookie/LeafWise-API/internal/healthassess"
	"github.com/ssingh-rookie/LeafWise-API/internal/identify"
	"github.com/ssingh-rookie/LeafWise-API/internal/ledger"
	"github.com/ssingh-rookie/LeafWise-API/internal/platform/logger"
	"github.com/ssingh-rookie/LeafWise-API/internal/providers"
	"github.com/ssingh-rookie/LeafWise-API/internal/reminder"
	"github.com/ssingh-rookie/LeafWise-API/internal/resolver"
	"github.com/ssingh-rookie/LeafWise-API/internal/router"
	"github.com/ssingh-rookie/LeafWise-API/internal/storage"
)

// Repos groups every repository collaborator named in spec §3, one per
// domain package under internal/data/repos.
type Repos struct {
	User     userrepo.Repo
	Species  speciesrepo.Repo
	Plant    plantrepo.Repo
	Health   healthrepo.Repo
	Photo    photorepo.Repo
	Usage    usagerepo.Repo
	Reminder reminderrepo.Repo

	ChatSession chatrepo.SessionRepo
	ChatMessage chatrepo.MessageRepo
	ChatMemory  chatrepo.MemoryRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:        userrepo.New(db, log),
		Species:     speciesrepo.New(db, log),
		Plant:       plantrepo.New(db, log),
		Health:      healthrepo.New(db, log),
		Photo:       photorepo.New(db, log),
		Usage:       usagerepo.New(db, log),
		Reminder:    reminderrepo.New(db, log),
		ChatSession: chatrepo.NewSessionRepo(db, log),
		ChatMessage: chatrepo.NewMessageRepo(db),
		ChatMemory:  chatrepo.NewMemoryRepo(db, log),
	}
}

// Providers groups the six Provider Gateways of spec §4.2.
type Providers struct {
	PlantIdentifier providers.PlantIdentifier
	HealthAssessor  providers.PlantHealthAssessor
	VisionFallback  providers.VisionFallback
	LLMPrimary      providers.ConversationalLLM
	LLMFallback     providers.ConversationalLLM
	Embedder        providers.Embedder
}

func wireProviders(log *logger.Logger) (Providers, error) {
	log.Info("Wiring provider gateways...")

	plantIdentifier, err := providers.NewPlantIdentifier(log)
	if err != nil {
		return Providers{}, fmt.Errorf("wire plant identifier gateway: %w", err)
	}
	healthAssessor, err := providers.NewPlantHealthAssessor(log)
	if err != nil {
		return Providers{}, fmt.Errorf("wire plant health assessor gateway: %w", err)
	}
	visionFallback, err := providers.NewVisionFallback(log)
	if err != nil {
		return Providers{}, fmt.Errorf("wire vision fallback gateway: %w", err)
	}
	llmPrimary, err := providers.NewLLMPrimary(log)
	if err != nil {
		return Providers{}, fmt.Errorf("wire llm primary gateway: %w", err)
	}
	llmFallback, err := providers.NewLLMFallback(log)
	if err != nil {
		return Providers{}, fmt.Errorf("wire llm fallback gateway: %w", err)
	}
	embedder, err := providers.NewEmbedder(log)
	if err != nil {
		return Providers{}, fmt.Errorf("wire embedding gateway: %w", err)
	}

	return Providers{
		PlantIdentifier: plantIdentifier,
		HealthAssessor:  healthAssessor,
		VisionFallback:  visionFallback,
		LLMPrimary:      llmPrimary,
		LLMFallback:     llmFallback,
		Embedder:        embedder,
	}, nil
}

// Services groups every orchestration-layer collaborator spec §4 names:
// the AI Router, the pipelines built on top of it, and the Reminder
// service the state machine in §4.9 needs a caller for.
type Services struct {
	Router       *router.Router
	RateLimiter  ledger.RateLimiter
	Resolver     resolver.Resolver
	Bucket       storage.Bucket
	Assembler    *assembler.Assembler
	Identify     *identify.Pipeline
	HealthAssess *healthassess.Pipeline
	Chat         *chat.Pipeline
	Reminder     reminder.Service
}

func wireServices(db *gorm.DB, log *logger.Logger, repos Repos, prov Providers) (Services, error) {
	log.Info("Wiring services...")

	rt := router.New(router.Deps{
		DB:              db,
		UsageRepo:       repos.Usage,
		PlantIdentifier: prov.PlantIdentifier,
		HealthAssessor:  prov.HealthAssessor,
		VisionFallback:  prov.VisionFallback,
		LLMPrimary:      prov.LLMPrimary,
		LLMFallback:     prov.LLMFallback,
		Embedder:        prov.Embedder,
	}, log)

	rateLimiter, err := ledger.NewRateLimiter(log, repos.Usage)
	if err != nil {
		return Services{}, fmt.Errorf("wire rate limiter: %w", err)
	}

	res := resolver.New(repos.Species, log)

	bucket, err := storage.NewBucket(log)
	if err != nil {
		return Services{}, fmt.Errorf("wire object storage bucket: %w", err)
	}

	asm := assembler.New(assembler.Deps{
		UserRepo:    repos.User,
		PlantRepo:   repos.Plant,
		HealthRepo:  repos.Health,
		SessionRepo: repos.ChatSession,
		MessageRepo: repos.ChatMessage,
		MemoryRepo:  repos.ChatMemory,
		Router:      rt,
	}, log)

	identifyPipeline := identify.New(rt, res, bucket, repos.Photo, log)
	healthAssessPipeline := healthassess.New(rt, repos.Health, log)
	chatPipeline := chat.New(asm, rt, repos.ChatSession, repos.ChatMemory, log)
	reminderService := reminder.New(repos.Reminder, log)

	return Services{
		Router:       rt,
		RateLimiter:  rateLimiter,
		Resolver:     res,
		Bucket:       bucket,
		Assembler:    asm,
		Identify:     identifyPipeline,
		HealthAssess: healthAssessPipeline,
		Chat:         chatPipeline,
		Reminder:     reminderService,
	}, nil
}
