// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/microsoft"

	"github.com/linuxfoundation/lfx-v2-minutes-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-minutes-service/internal/infrastructure/messaging"
	"github.com/linuxfoundation/lfx-v2-minutes-service/internal/infrastructure/store"
	"github.com/linuxfoundation/lfx-v2-minutes-service/internal/logging"
	"github.com/linuxfoundation/lfx-v2-minutes-service/internal/service"
)

// statsQueue is the queue group for meeting stats request subscriptions.
const statsQueue = "lfx.minutes-service.queue"

// graphScopes are the delegated permissions the service needs: reading the
// calendar, online meetings and their artifacts, creating planner tasks, and
// sending mail. offline_access yields refresh tokens.
var graphScopes = []string{
	"offline_access",
	"Calendars.Read",
	"OnlineMeetings.Read",
	"OnlineMeetingTranscript.Read.All",
	"OnlineMeetingRecording.Read.All",
	"Tasks.ReadWrite",
	"Mail.Send",
}

// repositories bundles the NATS KV backed repositories.
type repositories struct {
	Meeting *store.NatsMeetingRepository
	Token   *store.NatsTokenRepository
	Minutes *store.NatsMinutesRepository
}

// setupNATS connects to the NATS server with reconnection handling. A closed
// connection signals the shutdown channel so the process exits rather than
// running without persistence.
func setupNATS(ctx context.Context, env environment, gracefulCloseWG *sync.WaitGroup, done chan os.Signal) (*nats.Conn, error) {
	natsConn, err := nats.Connect(
		env.NatsURL,
		nats.DrainTimeout(25*time.Second),
		nats.ConnectHandler(func(_ *nats.Conn) {
			slog.InfoContext(ctx, "NATS connection established", "url", env.NatsURL)
		}),
		nats.ErrorHandler(func(_ *nats.Conn, _ *nats.Subscription, err error) {
			slog.ErrorContext(ctx, "NATS error", logging.ErrKey, err)
		}),
		nats.ClosedHandler(func(conn *nats.Conn) {
			if err := conn.LastError(); err != nil {
				slog.ErrorContext(ctx, "NATS connection closed", logging.ErrKey, err, logging.PriorityCritical())
			} else {
				slog.InfoContext(ctx, "NATS connection closed")
			}
			gracefulCloseWG.Done()
			done <- os.Interrupt
		}),
	)
	if err != nil {
		return nil, err
	}
	// Account for the NATS connection in the graceful shutdown wait group.
	gracefulCloseWG.Add(1)
	return natsConn, nil
}

// getKeyValueStores creates or opens the JetStream KV buckets and wraps them
// in the repositories.
func getKeyValueStores(ctx context.Context, natsConn *nats.Conn) (*repositories, error) {
	js, err := jetstream.New(natsConn)
	if err != nil {
		return nil, err
	}

	meetingKV, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket: store.KVStoreNameMeetingRecords,
	})
	if err != nil {
		return nil, err
	}

	tokenKV, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket: store.KVStoreNameUserTokens,
	})
	if err != nil {
		return nil, err
	}

	minutesKV, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket: store.KVStoreNameMeetingMinutes,
	})
	if err != nil {
		return nil, err
	}

	return &repositories{
		Meeting: store.NewNatsMeetingRepository(meetingKV),
		Token:   store.NewNatsTokenRepository(tokenKV),
		Minutes: store.NewNatsMinutesRepository(minutesKV),
	}, nil
}

// subscribeMeetingStats serves aggregate meeting statistics over a NATS
// request subject so operators can query the daemon without a separate API.
func subscribeMeetingStats(ctx context.Context, natsConn *nats.Conn, analytics *service.AnalyticsService) error {
	_, err := natsConn.QueueSubscribe(messaging.MeetingStatsSubject, statsQueue, func(msg *nats.Msg) {
		data, err := handleStatsRequest(ctx, analytics, msg.Data)
		if err != nil {
			slog.ErrorContext(ctx, "error computing meeting stats", logging.ErrKey, err)
			return
		}
		if err := msg.Respond(data); err != nil {
			slog.ErrorContext(ctx, "error responding to stats request", logging.ErrKey, err)
		}
	})
	return err
}

// handleStatsRequest computes a stats snapshot. The payload optionally
// carries a JSON since/until window; empty payload means all records.
func handleStatsRequest(ctx context.Context, analytics *service.AnalyticsService, payload []byte) ([]byte, error) {
	var window struct {
		Since time.Time `json:"since"`
		Until time.Time `json:"until"`
	}
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &window); err != nil {
			return nil, domain.NewValidationError("invalid stats request payload", err)
		}
	}

	stats, err := analytics.GetMeetingStats(ctx, window.Since, window.Until)
	if err != nil {
		return nil, err
	}
	return json.Marshal(stats)
}

// setupOAuthConfig builds the delegated OAuth client configuration for the
// provider tenant.
func setupOAuthConfig(env environment) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     env.OAuth.ClientID,
		ClientSecret: env.OAuth.ClientSecret,
		RedirectURL:  env.OAuth.RedirectURL,
		Endpoint:     microsoft.AzureADEndpoint(env.OAuth.TenantID),
		Scopes:       graphScopes,
	}
}
