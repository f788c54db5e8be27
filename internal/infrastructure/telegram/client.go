package telegram

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gotd/td/session"
	"github.com/gotd/td/telegram"
	"github.com/gotd/td/telegram/auth/qrlogin"
	"github.com/gotd/td/telegram/updates"
	"github.com/gotd/td/tg"
	"github.com/gotd/td/tgerr"
	"github.com/rs/zerolog"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Conte777/NewsFlow/services/music-service/internal/domain"
	"github.com/Conte777/NewsFlow/services/music-service/internal/infrastructure/metrics"
)

// MTProtoClient implements domain.TelegramClient using gotd/td library
type MTProtoClient struct {
	client     *telegram.Client
	dispatcher tg.UpdateDispatcher
	gaps       *updates.Manager
	auth       Authenticator

	peers    *peerStore
	files    *DownloadManager
	snapshot domain.FolderSnapshot
	queue    domain.MessageQueue

	// Connection state
	mu         sync.RWMutex
	api        *tg.Client
	cancelFunc context.CancelFunc
	runDone    chan struct{}
	connected  atomic.Bool
	selfID     atomic.Int64

	reconnectMin time.Duration
	reconnectMax time.Duration

	rateLimiter *rate.Limiter
	metrics     *metrics.Metrics
	logger      zerolog.Logger
}

// MTProtoClientConfig holds configuration for MTProtoClient
type MTProtoClientConfig struct {
	APIID     int
	APIHash   string
	Phone     string
	RateLimit int

	Session  session.Storage
	State    *UpdatesStateStorage
	Files    *DownloadManager
	Snapshot domain.FolderSnapshot
	Queue    domain.MessageQueue
	Input    LineReader

	Metrics   *metrics.Metrics
	ZapLogger *zap.Logger
	Logger    zerolog.Logger
}

// NewMTProtoClient creates a new MTProto client instance
func NewMTProtoClient(cfg MTProtoClientConfig) (*MTProtoClient, error) {
	if cfg.APIID == 0 {
		return nil, fmt.Errorf("APIID is required")
	}
	if cfg.APIHash == "" {
		return nil, fmt.Errorf("APIHash is required")
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 10
	}
	if cfg.ZapLogger == nil {
		cfg.ZapLogger = zap.NewNop()
	}
	if cfg.Input == nil {
		cfg.Input = NewConsoleReader()
	}

	c := &MTProtoClient{
		dispatcher:   tg.NewUpdateDispatcher(),
		files:        cfg.Files,
		snapshot:     cfg.Snapshot,
		queue:        cfg.Queue,
		rateLimiter:  rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimit),
		reconnectMin: time.Second,
		reconnectMax: time.Minute,
		metrics:      cfg.Metrics,
		logger:       cfg.Logger.With().Str("component", "mtproto_client").Logger(),
	}

	c.peers = newPeerStore(cfg.State, c.selfID.Load)

	c.gaps = updates.New(updates.Config{
		Handler:      c.dispatcher,
		Storage:      cfg.State,
		AccessHasher: cfg.State,
		Logger:       cfg.ZapLogger.Named("updates"),
	})

	if cfg.Phone != "" {
		c.auth = NewPhoneAuthenticator(cfg.Phone, cfg.Input, cfg.Logger)
	} else {
		c.auth = NewQRAuthenticator(qrlogin.OnLoginToken(c.dispatcher), cfg.Input, os.Stdout, cfg.Logger)
	}

	c.client = telegram.NewClient(cfg.APIID, cfg.APIHash, telegram.Options{
		SessionStorage: cfg.Session,
		UpdateHandler:  c.gaps,
		Logger:         cfg.ZapLogger,
	})

	c.registerHandlers()

	return c, nil
}

// Connect connects to Telegram, authenticating first when the stored session is unusable.
// It returns once the client is ready. The update stream keeps running until Disconnect,
// and the client reconnects with backoff whenever it stops after being ready.
func (c *MTProtoClient) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.runDone != nil {
		c.mu.Unlock()
		c.logger.Debug().Msg("already connected")
		return nil
	}

	clientCtx, cancel := context.WithCancel(context.Background())
	c.cancelFunc = cancel
	runDone := make(chan struct{})
	c.runDone = runDone
	c.mu.Unlock()

	c.logger.Info().Msg("connecting to Telegram")

	readyChan := make(chan struct{})
	errChan := make(chan error, 1)

	go func() {
		defer close(runDone)
		c.supervise(clientCtx, func(ctx context.Context, ready chan<- struct{}) error {
			return c.client.Run(ctx, func(ctx context.Context) error {
				return c.run(ctx, ready)
			})
		}, readyChan, errChan)
	}()

	select {
	case <-readyChan:
		return nil
	case err := <-errChan:
		cancel()
		c.resetRun(runDone)
		if err != nil {
			return fmt.Errorf("failed to connect: %w", err)
		}
		return fmt.Errorf("client stopped before becoming ready")
	case <-ctx.Done():
		cancel()
		<-runDone
		c.resetRun(runDone)
		return ctx.Err()
	}
}

// supervise repeats runOnce until ctx is cancelled.
// If the first run fails before closing ready, its error goes to firstErr and nothing is retried.
// Runs that stop after being ready are restarted, with the delay doubling while runs keep failing early.
func (c *MTProtoClient) supervise(
	ctx context.Context,
	runOnce func(ctx context.Context, ready chan<- struct{}) error,
	ready chan struct{},
	firstErr chan<- error,
) {
	delay := c.reconnectMin

	for attempt := 0; ; attempt++ {
		err := runOnce(ctx, ready)
		c.markDisconnected()

		wasReady := isClosed(ready)
		if attempt == 0 && !wasReady {
			firstErr <- err
			return
		}
		if ctx.Err() != nil {
			return
		}

		if wasReady {
			delay = c.reconnectMin
		}
		c.logger.Warn().Err(err).Dur("retry_in", delay).Msg("telegram client stopped, reconnecting")

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		delay = min(delay*2, c.reconnectMax)
		ready = make(chan struct{})
	}
}

func (c *MTProtoClient) markDisconnected() {
	c.connected.Store(false)
	c.files.detach()
	c.mu.Lock()
	c.api = nil
	c.mu.Unlock()
}

func isClosed(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}

func (c *MTProtoClient) run(ctx context.Context, ready chan<- struct{}) error {
	status, err := c.client.Auth().Status(ctx)
	if err != nil {
		return fmt.Errorf("failed to check auth status: %w", err)
	}

	if !status.Authorized {
		c.logger.Info().Msg("not authorized, starting authentication")
		if err := c.auth.Authenticate(ctx, c.client); err != nil {
			c.logger.Error().Err(err).Msg("authentication failed")
			return fmt.Errorf("%w: %v", domain.ErrAuthenticationFailed, err)
		}
	} else {
		c.logger.Info().Msg("session restored from storage")
	}

	self, err := c.client.Self(ctx)
	if err != nil {
		return fmt.Errorf("failed to get self: %w", err)
	}
	c.selfID.Store(self.ID)

	api := c.client.API()
	c.mu.Lock()
	c.api = api
	c.mu.Unlock()
	c.files.attach(api)
	c.connected.Store(true)

	if err := c.refreshFolders(ctx); err != nil {
		c.logger.Warn().Err(err).Msg("failed to load chat folders")
	}

	c.logger.Info().Int64("user_id", self.ID).Msg("successfully connected to Telegram")
	close(ready)

	return c.gaps.Run(ctx, api, self.ID, updates.AuthOptions{
		OnStart: func(ctx context.Context) {
			c.logger.Info().Msg("update stream started")
		},
	})
}

func (c *MTProtoClient) resetRun(runDone chan struct{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.runDone == runDone {
		c.runDone = nil
		c.cancelFunc = nil
	}
}

// Disconnect stops the update stream and waits for the client to shut down.
// Multiple calls are safe.
func (c *MTProtoClient) Disconnect(ctx context.Context) error {
	c.mu.Lock()
	cancelFunc := c.cancelFunc
	runDone := c.runDone
	c.mu.Unlock()

	if cancelFunc == nil {
		c.logger.Debug().Msg("already disconnected")
		return nil
	}

	c.logger.Info().Msg("disconnecting from Telegram")
	cancelFunc()

	select {
	case <-runDone:
		c.logger.Info().Msg("successfully disconnected from Telegram")
	case <-ctx.Done():
		c.logger.Warn().Msg("disconnect timeout reached while waiting for client shutdown")
	}

	c.resetRun(runDone)
	return nil
}

// IsConnected checks if client is connected and authorized
func (c *MTProtoClient) IsConnected() bool {
	return c.connected.Load()
}

// invoke runs an API call under the rate limiter and retries once after a flood wait
func (c *MTProtoClient) invoke(ctx context.Context, call func(api *tg.Client) error) error {
	c.mu.RLock()
	api := c.api
	c.mu.RUnlock()
	if api == nil || !c.connected.Load() {
		return domain.ErrNotConnected
	}

	for attempt := 0; ; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit wait cancelled: %w", err)
		}

		err := call(api)
		wait, ok := tgerr.AsFloodWait(err)
		if !ok || attempt > 0 {
			return err
		}

		c.metrics.RecordFloodWait()
		c.logger.Warn().Dur("wait_duration", wait).Msg("flood wait detected, waiting before retry")

		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

var _ domain.TelegramClient = (*MTProtoClient)(nil)
