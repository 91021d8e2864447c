// Command server runs the institute auth API.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	goredis "github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/edutrack/institute/core"
	"github.com/edutrack/institute/handler"
	"github.com/edutrack/institute/modules/account"
	"github.com/edutrack/institute/pkg/clientip"
	"github.com/edutrack/institute/pkg/config"
	"github.com/edutrack/institute/pkg/cookie"
	"github.com/edutrack/institute/pkg/email"
	"github.com/edutrack/institute/pkg/feature"
	"github.com/edutrack/institute/pkg/httpserver"
	"github.com/edutrack/institute/pkg/logger"
	pkgmongo "github.com/edutrack/institute/pkg/mongo"
	"github.com/edutrack/institute/pkg/observability"
	"github.com/edutrack/institute/pkg/ratelimiter"
	pkgredis "github.com/edutrack/institute/pkg/redis"
	"github.com/edutrack/institute/pkg/requestid"
	"github.com/edutrack/institute/svc/auth"
	"github.com/edutrack/institute/svc/credential"
	"github.com/edutrack/institute/svc/oauth"
	"github.com/edutrack/institute/svc/otp"
	"github.com/edutrack/institute/svc/saga"
	"github.com/edutrack/institute/svc/token"
)

const readinessTimeout = 3 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		slog.Error("server stopped with error", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var app config.App
	if err := config.Load(&app); err != nil {
		return err
	}

	log := logger.New(
		logger.WithLevelName(app.LogLevel),
		logger.WithFormat(logger.Format(app.LogFormat)),
		logger.WithEnvironment(app.Env, app.Name),
		logger.WithContextExtractors(requestid.LoggerExtractor()),
	)
	logger.SetAsDefault(log)

	var obsCfg observability.Config
	if err := config.Load(&obsCfg); err != nil {
		return err
	}
	if err := observability.Init(obsCfg); err != nil {
		return err
	}

	var mongoCfg pkgmongo.Config
	if err := config.Load(&mongoCfg); err != nil {
		return err
	}
	client, err := pkgmongo.New(ctx, mongoCfg)
	if err != nil {
		return err
	}
	db := client.Database(mongoCfg.Database)

	hasher := credential.NewBcryptHasher(app.BcryptCost)
	users := credential.NewMongoStore(db, hasher)
	codes := otp.NewMongoLedger(db)
	intents := saga.NewMongoStore(db)
	for _, ix := range []interface{ EnsureIndexes(context.Context) error }{users, codes, intents} {
		if err := ix.EnsureIndexes(ctx); err != nil {
			return err
		}
	}

	checks := []httpserver.Check{{Name: "mongo", Ping: pkgmongo.Healthcheck(client)}}

	var redisCfg pkgredis.Config
	if err := config.Load(&redisCfg); err != nil {
		return err
	}
	var (
		rdb      *goredis.Client
		memStore *ratelimiter.MemoryStore
		store    ratelimiter.Store
	)
	if redisCfg.Enabled() {
		if rdb, err = pkgredis.Connect(ctx, redisCfg); err != nil {
			return err
		}
		store = ratelimiter.NewRedisStore(rdb, ratelimiter.WithKeyPrefix(app.Name+":ratelimit:"))
		checks = append(checks, httpserver.Check{Name: "redis", Ping: pkgredis.Healthcheck(rdb)})
	} else {
		log.WarnContext(ctx, "REDIS_URL not set, rate limits are per process", logger.Component("main"))
		memStore = ratelimiter.NewMemoryStore()
		store = memStore
	}

	var ipCfg clientip.Config
	if err := config.Load(&ipCfg); err != nil {
		return err
	}
	resolver, err := clientip.NewFromConfig(ipCfg)
	if err != nil {
		return err
	}

	var limitCfg ratelimiter.Config
	if err := config.Load(&limitCfg); err != nil {
		return err
	}
	limiter, err := ratelimiter.NewBucket(store, limitCfg)
	if err != nil {
		return err
	}

	var tokenCfg token.Config
	if err := config.Load(&tokenCfg); err != nil {
		return err
	}
	issuer, err := token.NewIssuer(tokenCfg)
	if err != nil {
		return err
	}

	mailer, mailTimeout, err := newMailer(ctx, log, app)
	if err != nil {
		return err
	}

	providers, err := oauthProviders()
	if err != nil {
		return err
	}

	flags, err := feature.NewMemoryProvider(&feature.Flag{
		Name:        auth.TransactionsFlag,
		Description: "run registration in a single database transaction",
		Enabled:     app.EnableTransactions,
	})
	if err != nil {
		return err
	}

	svc := auth.New(users, codes, issuer, mailer,
		auth.WithLogger(log),
		auth.WithHasher(hasher),
		auth.WithOrgName(app.OrgName),
		auth.WithMailTimeout(mailTimeout),
		auth.WithSagaStore(intents),
		auth.WithTransactions(pkgmongo.NewTxRunner(client), flags),
		auth.WithOAuthProviders(providers...),
	)

	var cookieCfg cookie.Config
	if err := config.Load(&cookieCfg); err != nil {
		return err
	}
	cookies, err := cookie.NewFromConfig(cookieCfg)
	if err != nil {
		return err
	}

	accounts := account.New(svc, cookies,
		account.WithLogger(log),
		account.WithRateLimiter(limiter),
		account.WithErrorHandler(handler.NewErrorHandler(log, handler.WithReporter(observability.CaptureError))),
	)

	var sagaCfg saga.Config
	if err := config.Load(&sagaCfg); err != nil {
		return err
	}
	reconciler := saga.NewReconciler(sagaCfg, intents, users, codes, saga.WithLogger(log))
	go func() {
		if err := reconciler.Run(ctx); err != nil {
			log.ErrorContext(ctx, "saga reconciler stopped", logger.Error(err), logger.Component("saga"))
		}
	}()

	r := chi.NewRouter()
	r.Use(
		requestid.Middleware,
		resolver.Middleware,
		observability.RequestLogger(log),
		observability.Recoverer(log, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handler.WriteError(w, r, core.ErrInternal)
		})),
	)
	r.Get("/health/live", httpserver.LivenessHandler())
	r.Get("/health/ready", httpserver.ReadinessHandler(log, readinessTimeout, checks...))
	r.Mount("/auth", accounts.Routes())

	var httpCfg httpserver.Config
	if err := config.Load(&httpCfg); err != nil {
		return err
	}
	srv := httpserver.New(httpCfg,
		httpserver.WithLogger(log),
		httpserver.WithStopHook(disconnectMongo(client)),
		httpserver.WithStopHook(closeRedis(rdb)),
		httpserver.WithStopHook(closeMemoryStore(memStore)),
		httpserver.WithStopHook(observability.Flush),
	)
	return srv.Run(ctx, r)
}

// newMailer picks Postmark when a server token is configured and falls back
// to writing messages to disk otherwise.
func newMailer(ctx context.Context, log *slog.Logger, app config.App) (email.Sender, time.Duration, error) {
	var cfg email.Config
	if err := config.Load(&cfg); err != nil {
		return nil, 0, err
	}
	if cfg.PostmarkServerToken == "" {
		if app.IsProduction() {
			return nil, 0, errors.New("POSTMARK_SERVER_TOKEN is required in production")
		}
		log.WarnContext(ctx, "postmark disabled, writing mail to disk",
			slog.String("dir", app.MailDevDir),
			logger.Component("main"),
		)
		return email.NewDevSender(app.MailDevDir), cfg.SendTimeout, nil
	}
	sender, err := email.NewPostmarkSender(cfg)
	if err != nil {
		return nil, 0, err
	}
	return sender, cfg.SendTimeout, nil
}

func oauthProviders() ([]oauth.Provider, error) {
	var (
		google   oauth.GoogleConfig
		facebook oauth.FacebookConfig
	)
	if err := config.Load(&google); err != nil {
		return nil, err
	}
	if err := config.Load(&facebook); err != nil {
		return nil, err
	}

	var ps []oauth.Provider
	if google.Enabled() {
		ps = append(ps, oauth.NewGoogle(google))
	}
	if facebook.Enabled() {
		ps = append(ps, oauth.NewFacebook(facebook))
	}
	return ps, nil
}

func disconnectMongo(client *mongo.Client) func(context.Context) error {
	return func(ctx context.Context) error {
		return client.Disconnect(ctx)
	}
}

func closeRedis(rdb *goredis.Client) func(context.Context) error {
	return func(context.Context) error {
		if rdb == nil {
			return nil
		}
		return rdb.Close()
	}
}

func closeMemoryStore(s *ratelimiter.MemoryStore) func(context.Context) error {
	return func(context.Context) error {
		if s == nil {
			return nil
		}
		return s.Close()
	}
}
