package http

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/civicwatch/civicwatch/internal/application/report/blobstore"
	"github.com/civicwatch/civicwatch/internal/application/report/humanverify"
	"github.com/civicwatch/civicwatch/internal/application/report/notification"
	reportServices "github.com/civicwatch/civicwatch/internal/application/report/services"
	"github.com/civicwatch/civicwatch/internal/application/report/triage"
	"github.com/civicwatch/civicwatch/internal/infrastructure/captcha"
	"github.com/civicwatch/civicwatch/internal/infrastructure/email"
	"github.com/civicwatch/civicwatch/internal/infrastructure/firestore"
	"github.com/civicwatch/civicwatch/internal/infrastructure/pubsub"
	"github.com/civicwatch/civicwatch/internal/infrastructure/ratelimit"
	"github.com/civicwatch/civicwatch/internal/infrastructure/storage"
	"github.com/civicwatch/civicwatch/internal/infrastructure/vision"
	"github.com/civicwatch/civicwatch/internal/shared/services/sanitize"
)

type services struct {
	blobs      blobstore.Store
	localStore *storage.LocalStore
	verifier   humanverify.Verifier
	analyzer   triage.Analyzer
	classifier *reportServices.PriorityClassifier
	allocator  *reportServices.TrackingCodeAllocator
	detector   *reportServices.DuplicateDetector
	placeGuard *reportServices.PlaceGuard
	sanitizer  sanitize.Sanitizer
	limiter    ratelimit.RateLimiter
}

func (c *Container) initServices(ctx context.Context) error {
	c.svcs = &services{sanitizer: sanitize.NewSanitizer()}

	c.initRedis(ctx)

	if err := c.initBlobStore(); err != nil {
		return err
	}
	if c.cfg.Captcha.Enabled {
		c.svcs.verifier = captcha.NewRecaptchaVerifier(
			c.cfg.Captcha.SecretKey,
			c.cfg.Captcha.VerifyURL,
			time.Duration(c.cfg.Captcha.TimeoutSeconds)*time.Second,
			c.log.Named("captcha"),
		)
	} else {
		c.log.Warnw("human verification is disabled")
	}

	analyzer, err := c.buildAnalyzer(ctx)
	if err != nil {
		return err
	}
	c.svcs.analyzer = analyzer

	c.svcs.classifier = reportServices.NewPriorityClassifier(
		reportServices.NewTaxonomyStrategy(c.repos.issueTypeRepo, c.log.Named("priority")),
		reportServices.NewKeywordStrategy(c.cfg.Priority.HighKeywords, c.cfg.Priority.LowPhrases),
	)
	c.svcs.allocator = reportServices.NewTrackingCodeAllocator(
		c.repos.reportRepo,
		c.cfg.Report.TrackingPrefix,
		c.cfg.Report.TrackingMaxAttempts,
		c.log.Named("tracking"),
	)
	c.svcs.detector = reportServices.NewDuplicateDetector(
		c.repos.reportRepo,
		time.Duration(c.cfg.Duplicate.WindowHours)*time.Hour,
		c.cfg.Duplicate.Threshold,
		c.log.Named("duplicates"),
	)
	c.svcs.placeGuard = reportServices.NewPlaceGuard(c.repos.placeRepo, c.log.Named("places"))

	sinks, err := c.buildSinks(ctx)
	if err != nil {
		return err
	}
	c.gateway = notification.NewGateway(c.cfg.Notification.Timeout(), c.log.Named("notification"), sinks...)
	return nil
}

// initRedis connects when Redis is needed. An unreachable server is logged
// and tolerated: the rate limiter fails open and the event sink just errors.
func (c *Container) initRedis(ctx context.Context) {
	if !c.cfg.RateLimit.Enabled && !c.cfg.Notification.Events.Enabled {
		return
	}

	c.redis = redis.NewClient(&redis.Options{
		Addr:     c.cfg.Redis.GetAddr(),
		Password: c.cfg.Redis.Password,
		DB:       c.cfg.Redis.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := c.redis.Ping(pingCtx).Err(); err != nil {
		c.log.Warnw("redis is unreachable, continuing without it", "addr", c.cfg.Redis.GetAddr(), "error", err)
	}

	if c.cfg.RateLimit.Enabled {
		c.svcs.limiter = ratelimit.NewRedisRateLimiter(c.redis)
	}
}

func (c *Container) initBlobStore() error {
	switch c.cfg.Storage.Driver {
	case "cloudinary":
		store, err := storage.NewCloudinaryStore(c.cfg.Storage.CloudinaryURL, c.cfg.Storage.CloudinaryFolder)
		if err != nil {
			return err
		}
		c.svcs.blobs = store
	default:
		store, err := storage.NewLocalStore(c.cfg.Storage.LocalDir)
		if err != nil {
			return err
		}
		c.svcs.blobs = store
		c.svcs.localStore = store
	}
	c.log.Infow("blob store ready", "driver", c.cfg.Storage.Driver)
	return nil
}

func (c *Container) buildAnalyzer(ctx context.Context) (triage.Analyzer, error) {
	tc := c.cfg.Triage
	log := c.log.Named("triage")

	var next triage.Analyzer
	switch tc.Strategy {
	case "vision":
		rules := triage.DefaultScoringRules()
		if len(tc.VisionKeywords) > 0 {
			rules.Keywords = tc.VisionKeywords
		}
		if tc.HighConfidence > 0 {
			rules.HighConfidence = tc.HighConfidence
		}
		if tc.MediumConfidence > 0 {
			rules.MediumConfidence = tc.MediumConfidence
		}
		if tc.ViolenceLikelihood != "" {
			rules.ViolenceLikelihood = triage.Likelihood(tc.ViolenceLikelihood)
		}
		if tc.ViolencePoints > 0 {
			rules.ViolencePoints = tc.ViolencePoints
		}
		if tc.EmergencyThreshold > 0 {
			rules.Threshold = tc.EmergencyThreshold
		}
		analyzer, err := vision.NewAnalyzerFromCredentials(ctx, tc.CredentialsFile, tc.VisionEndpoint, rules, log)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize vision triage: %w", err)
		}
		next = analyzer
	case "none":
		return triage.NoopAnalyzer{}, nil
	default:
		next = triage.NewFilenameAnalyzer(tc.FilenameKeywords, log)
	}

	log.Infow("emergency triage ready", "strategy", tc.Strategy, "timeout", tc.Timeout())
	return triage.WithTimeout(next, tc.Timeout(), log), nil
}

func (c *Container) buildSinks(ctx context.Context) ([]notification.Sink, error) {
	nc := c.cfg.Notification
	var sinks []notification.Sink

	if nc.Firestore.Enabled {
		mirror, err := firestore.NewMirrorFromCredentials(ctx,
			nc.Firestore.CredentialsFile,
			nc.Firestore.BaseURL,
			nc.Firestore.ProjectID,
			nc.Firestore.Collection,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize firestore mirror: %w", err)
		}
		sinks = append(sinks, mirror)
	}
	if nc.Events.Enabled && c.redis != nil {
		sinks = append(sinks, pubsub.NewRedisReportEventBus(c.redis, nc.Events.Channel, c.log.Named("events")))
	}
	if nc.AlertEmail.Enabled {
		if len(nc.AlertEmail.Recipients) == 0 {
			return nil, fmt.Errorf("notification.alert_email.recipients is empty")
		}
		sinks = append(sinks, email.NewAlertSink(email.SMTPConfig{
			Host:        c.cfg.Email.SMTPHost,
			Port:        c.cfg.Email.SMTPPort,
			Username:    c.cfg.Email.SMTPUser,
			Password:    c.cfg.Email.SMTPPassword,
			FromAddress: c.cfg.Email.FromAddress,
			FromName:    c.cfg.Email.FromName,
		}, nc.AlertEmail.Recipients))
	}

	names := make([]string, 0, len(sinks))
	for _, s := range sinks {
		names = append(names, s.Name())
	}
	c.log.Infow("notification sinks ready", "sinks", names)
	return sinks, nil
}
