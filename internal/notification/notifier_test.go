package notification

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"testing"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/stretchr/testify/assert"

	"fleetguard-backend/internal/model"
)

// fakeSource is an in-memory SubscriptionSource.
type fakeSource struct {
	mu         sync.Mutex
	managerIDs []string
	managerErr error
	subs       []model.PushSubscription
	deleted    []string
}

func (f *fakeSource) ManagerIDs(context.Context) ([]string, error) {
	return f.managerIDs, f.managerErr
}

func (f *fakeSource) SubscriptionsForUsers(_ context.Context, userIDs []string) ([]model.PushSubscription, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	return f.subs, nil
}

func (f *fakeSource) DeleteSubscription(_ context.Context, endpoint string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, endpoint)
	remaining := f.subs[:0]
	for _, s := range f.subs {
		if s.Endpoint != endpoint {
			remaining = append(remaining, s)
		}
	}
	f.subs = remaining
	return nil
}

// fakeSender records deliveries and answers with a per-endpoint status.
type fakeSender struct {
	mu       sync.Mutex
	statuses map[string]int
	errs     map[string]error
	sent     []string
}

func (f *fakeSender) Send(_ []byte, sub *webpush.Subscription, _ *webpush.Options) (*http.Response, error) {
	f.mu.Lock()
	f.sent = append(f.sent, sub.Endpoint)
	f.mu.Unlock()

	if err := f.errs[sub.Endpoint]; err != nil {
		return nil, err
	}
	status := f.statuses[sub.Endpoint]
	if status == 0 {
		status = http.StatusCreated
	}
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewBufferString("")),
	}, nil
}

func sub(endpoint string) model.PushSubscription {
	return model.PushSubscription{Endpoint: endpoint, UserID: "mgr", P256DH: "p", Auth: "a"}
}

func TestNotify_DeliversToAllSubscriptions(t *testing.T) {
	source := &fakeSource{
		managerIDs: []string{"mgr"},
		subs:       []model.PushSubscription{sub("ep-1"), sub("ep-2"), sub("ep-3")},
	}
	sender := &fakeSender{statuses: map[string]int{}, errs: map[string]error{}}
	n := &Notifier{source: source, options: &webpush.Options{}, sender: sender}

	n.Notify(context.Background(), Payload{Title: "⚠️ FleetGuard Alert", Body: "test", URL: "/dashboard"})

	assert.ElementsMatch(t, []string{"ep-1", "ep-2", "ep-3"}, sender.sent)
	assert.Empty(t, source.deleted)
}

func TestNotify_PrunesGoneEndpointOnly(t *testing.T) {
	source := &fakeSource{
		managerIDs: []string{"mgr"},
		subs:       []model.PushSubscription{sub("ep-1"), sub("ep-gone"), sub("ep-3")},
	}
	sender := &fakeSender{
		statuses: map[string]int{"ep-gone": http.StatusGone},
		errs:     map[string]error{},
	}
	n := &Notifier{source: source, options: &webpush.Options{}, sender: sender}

	n.Notify(context.Background(), Payload{Title: "t", Body: "b"})

	assert.Len(t, sender.sent, 3, "every subscription gets one attempt")
	assert.Equal(t, []string{"ep-gone"}, source.deleted)
	assert.Len(t, source.subs, 2)
}

func TestNotify_TransientFailureDoesNotPrune(t *testing.T) {
	source := &fakeSource{
		managerIDs: []string{"mgr"},
		subs:       []model.PushSubscription{sub("ep-1"), sub("ep-flaky")},
	}
	sender := &fakeSender{
		statuses: map[string]int{},
		errs:     map[string]error{"ep-flaky": errors.New("connection reset")},
	}
	n := &Notifier{source: source, options: &webpush.Options{}, sender: sender}

	n.Notify(context.Background(), Payload{Title: "t", Body: "b"})

	assert.Len(t, sender.sent, 2)
	assert.Empty(t, source.deleted)
	assert.Len(t, source.subs, 2)
}

func TestNotify_NoManagersIsSilentNoop(t *testing.T) {
	sender := &fakeSender{statuses: map[string]int{}, errs: map[string]error{}}
	n := &Notifier{source: &fakeSource{}, options: &webpush.Options{}, sender: sender}

	n.Notify(context.Background(), Payload{Title: "t", Body: "b"})

	assert.Empty(t, sender.sent)
}

func TestNotify_ManagersWithoutSubscriptionsIsSilentNoop(t *testing.T) {
	sender := &fakeSender{statuses: map[string]int{}, errs: map[string]error{}}
	n := &Notifier{
		source:  &fakeSource{managerIDs: []string{"mgr"}},
		options: &webpush.Options{},
		sender:  sender,
	}

	n.Notify(context.Background(), Payload{Title: "t", Body: "b"})

	assert.Empty(t, sender.sent)
}

func TestNotify_SourceErrorIsAbsorbed(t *testing.T) {
	sender := &fakeSender{statuses: map[string]int{}, errs: map[string]error{}}
	n := &Notifier{
		source:  &fakeSource{managerErr: errors.New("db down")},
		options: &webpush.Options{},
		sender:  sender,
	}

	// Must not panic or deliver anything.
	n.Notify(context.Background(), Payload{Title: "t", Body: "b"})
	assert.Empty(t, sender.sent)
}
