package notification

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/SherClockHolmes/webpush-go"

	"fleetguard-backend/internal/model"
)

// Payload is one alert delivered to every manager subscription. It is
// ephemeral and never persisted.
type Payload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url"`
}

// Sender defines the interface for sending a single web push notification.
type Sender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is the real Sender backed by the webpush library.
type WebPushSender struct{}

func (WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// SubscriptionSource resolves who gets alerted and prunes dead endpoints.
// Satisfied by the store.
type SubscriptionSource interface {
	ManagerIDs(ctx context.Context) ([]string, error)
	SubscriptionsForUsers(ctx context.Context, userIDs []string) ([]model.PushSubscription, error)
	DeleteSubscription(ctx context.Context, endpoint string) error
}

// Notifier fans one alert payload out to every subscription of every
// manager-role user.
type Notifier struct {
	source  SubscriptionSource
	options *webpush.Options
	sender  Sender
}

// NewNotifier creates a Notifier using the real web push sender.
func NewNotifier(source SubscriptionSource, options *webpush.Options) *Notifier {
	return NewNotifierWithSender(source, options, WebPushSender{})
}

// NewNotifierWithSender creates a Notifier with a custom Sender.
func NewNotifierWithSender(source SubscriptionSource, options *webpush.Options, sender Sender) *Notifier {
	return &Notifier{
		source:  source,
		options: options,
		sender:  sender,
	}
}

// Notify delivers payload to all manager subscriptions concurrently and
// waits for every outcome. Individual delivery failures are logged (and
// permanently-gone endpoints pruned) but never fail the call; with no
// managers or subscriptions it is a silent no-op.
func (n *Notifier) Notify(ctx context.Context, payload Payload) {
	managerIDs, err := n.source.ManagerIDs(ctx)
	if err != nil {
		log.Printf("notification: failed to resolve managers: %v", err)
		return
	}
	if len(managerIDs) == 0 {
		return
	}

	subs, err := n.source.SubscriptionsForUsers(ctx, managerIDs)
	if err != nil {
		log.Printf("notification: failed to resolve subscriptions: %v", err)
		return
	}
	if len(subs) == 0 {
		return
	}

	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("notification: failed to encode payload: %v", err)
		return
	}

	log.Printf("notification: sending %q to %d endpoints", payload.Title, len(subs))

	var wg sync.WaitGroup
	for _, sub := range subs {
		wg.Add(1)
		go func(sub model.PushSubscription) {
			defer wg.Done()
			n.deliver(ctx, sub, body)
		}(sub)
	}
	wg.Wait()
}

// deliver attempts one delivery. No retry, no backoff: a permanent-failure
// response prunes the subscription, anything else is logged and dropped.
func (n *Notifier) deliver(ctx context.Context, sub model.PushSubscription, body []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := n.sender.Send(body, wpSub, n.options)
	if err != nil {
		log.Printf("notification: delivery to %s failed: %v", sub.Endpoint, err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusGone || resp.StatusCode == http.StatusNotFound {
		log.Printf("notification: endpoint %s is gone, pruning subscription", sub.Endpoint)
		if err := n.source.DeleteSubscription(ctx, sub.Endpoint); err != nil {
			log.Printf("notification: failed to prune subscription %s: %v", sub.Endpoint, err)
		}
	}
}
