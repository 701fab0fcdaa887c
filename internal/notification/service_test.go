package notification_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/core/database"
	"github.com/frahmantamala/leave-management/internal/core/events"
	"github.com/frahmantamala/leave-management/internal/notification"
	notificationPostgres "github.com/frahmantamala/leave-management/internal/notification/postgres"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type eventLog struct {
	mu    sync.Mutex
	types []string
}

func (l *eventLog) handle(_ context.Context, e events.Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.types = append(l.types, e.EventType())
	return nil
}

func (l *eventLog) seen() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.types...)
}

var _ = Describe("Notification Service", func() {
	var (
		ctx     context.Context
		bus     *events.EventBus
		log     *eventLog
		service *notification.Service
	)

	BeforeEach(func() {
		ctx = context.Background()
		db, err := database.OpenInMemory()
		Expect(err).NotTo(HaveOccurred())

		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		bus = events.NewEventBus(logger)
		log = &eventLog{}
		bus.Subscribe(events.EventTypeNotificationCreated, log.handle)
		bus.Subscribe(events.EventTypeNotificationsRead, log.handle)

		service = notification.NewService(notificationPostgres.NewNotificationRepository(db), bus, logger)
	})

	It("stores, counts and lists newest first", func() {
		requestID := int64(42)
		Expect(service.Notify(ctx, 1, notification.TypeLeaveRequested, "first", &requestID)).To(Succeed())
		Expect(service.NotifyMany(ctx, []int64{1, 2}, notification.TypeAnnouncement, "office closed", nil)).To(Succeed())
		bus.Wait()

		count, err := service.UnreadCount(ctx, 1)
		Expect(err).NotTo(HaveOccurred())
		Expect(count).To(Equal(int64(2)))

		items, err := service.ListMine(ctx, 1, false, 10, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(items).To(HaveLen(2))
		Expect(items[0].Message).To(Equal("office closed"))
		Expect(*items[1].RequestID).To(Equal(int64(42)))

		Expect(log.seen()).To(HaveLen(3))
	})

	It("marks one or all as read and announces the refresh", func() {
		Expect(service.NotifyMany(ctx, []int64{1, 1, 1}, notification.TypeQuotaUpdated, "quota", nil)).To(Succeed())
		items, err := service.ListMine(ctx, 1, true, 10, 0)
		Expect(err).NotTo(HaveOccurred())

		Expect(service.MarkRead(ctx, 1, items[0].ID)).To(Succeed())
		count, _ := service.UnreadCount(ctx, 1)
		Expect(count).To(Equal(int64(2)))

		updated, err := service.MarkAllRead(ctx, 1)
		Expect(err).NotTo(HaveOccurred())
		Expect(updated).To(Equal(int64(2)))

		unread, err := service.ListMine(ctx, 1, true, 10, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(unread).To(BeEmpty())

		bus.Wait()
		Expect(log.seen()).To(ContainElement(events.EventTypeNotificationsRead))
	})

	It("refuses to mark another employee's notification", func() {
		Expect(service.Notify(ctx, 2, notification.TypeLeaveApproved, "yours", nil)).To(Succeed())
		items, err := service.ListMine(ctx, 2, false, 10, 0)
		Expect(err).NotTo(HaveOccurred())

		err = service.MarkRead(ctx, 1, items[0].ID)
		Expect(errors.Is(err, notification.ErrNotificationNotFound)).To(BeTrue())
	})

	Describe("Handler", func() {
		withUser := func(req *http.Request, id int64) *http.Request {
			return req.WithContext(internal.ContextWithUser(req.Context(), &internal.User{ID: id, Role: "WORKER"}))
		}

		It("reports the unread count for the caller", func() {
			Expect(service.Notify(ctx, 5, notification.TypeLeaveApproved, "ok", nil)).To(Succeed())
			handler := notification.NewHandler(service)

			rec := httptest.NewRecorder()
			handler.UnreadCount(rec, withUser(httptest.NewRequest(http.MethodGet, "/api/v1/notifications/unread-count", nil), 5))
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(MatchJSON(`{"unread":1}`))
		})

		It("returns 404 for an unknown notification", func() {
			handler := notification.NewHandler(service)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", "77")
			req := withUser(httptest.NewRequest(http.MethodPost, "/api/v1/notifications/77/read", nil), 5)
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

			rec := httptest.NewRecorder()
			handler.MarkRead(rec, req)
			Expect(rec.Code).To(Equal(http.StatusNotFound))
		})

		It("requires a caller", func() {
			rec := httptest.NewRecorder()
			notification.NewHandler(service).ListNotifications(rec, httptest.NewRequest(http.MethodGet, "/api/v1/notifications", nil))
			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		})
	})
})
