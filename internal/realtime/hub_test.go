package realtime_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/core/events"
	"github.com/frahmantamala/leave-management/internal/realtime"
	"github.com/gorilla/websocket"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type tokenTable map[string]*internal.User

func (t tokenTable) CurrentUser(_ context.Context, token string) (*internal.User, error) {
	if u, ok := t[token]; ok {
		return u, nil
	}
	return nil, internal.ErrInvalidToken
}

var _ = Describe("Hub", func() {
	var (
		hub    *realtime.Hub
		bus    *events.EventBus
		server *httptest.Server
		wsURL  string
	)

	dial := func(token string) *websocket.Conn {
		conn, _, err := websocket.DefaultDialer.Dial(wsURL+"?token="+token, nil)
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(func() { _ = conn.Close() })
		return conn
	}

	readFrame := func(conn *websocket.Conn) realtime.Frame {
		var frame realtime.Frame
		Expect(conn.SetReadDeadline(time.Now().Add(2 * time.Second))).To(Succeed())
		Expect(conn.ReadJSON(&frame)).To(Succeed())
		return frame
	}

	expectSilence := func(conn *websocket.Conn) {
		Expect(conn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))).To(Succeed())
		_, _, err := conn.ReadMessage()
		Expect(err).To(HaveOccurred())
	}

	BeforeEach(func() {
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		hub = realtime.NewHub(logger)
		bus = events.NewEventBus(logger)
		realtime.Bridge(bus, hub)

		handler := realtime.NewHandler(hub, tokenTable{
			"worker-token": {ID: 1, Role: "WORKER"},
			"hr-token":     {ID: 2, Role: "HR"},
		}, []string{"*"})
		server = httptest.NewServer(http.HandlerFunc(handler.ServeWS))
		DeferCleanup(server.Close)
		wsURL = "ws" + strings.TrimPrefix(server.URL, "http")
	})

	It("refuses handshakes without a valid token", func() {
		_, resp, err := websocket.DefaultDialer.Dial(wsURL+"?token=bogus", nil)
		Expect(err).To(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))

		_, resp, err = websocket.DefaultDialer.Dial(wsURL, nil)
		Expect(err).To(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))
	})

	It("accepts the token from the Authorization header", func() {
		header := http.Header{"Authorization": []string{"Bearer worker-token"}}
		conn, _, err := websocket.DefaultDialer.Dial(wsURL, header)
		Expect(err).NotTo(HaveOccurred())
		defer conn.Close()

		Eventually(func() int { return hub.Clients(realtime.UserRoom(1)) }).Should(Equal(1))
	})

	Context("with a worker and an HR client", func() {
		var worker, hr *websocket.Conn

		BeforeEach(func() {
			worker = dial("worker-token")
			hr = dial("hr-token")
			Eventually(func() int { return hub.Clients(realtime.UserRoom(1)) }).Should(Equal(1))
			Eventually(func() int { return hub.Clients(realtime.RoleRoom("HR")) }).Should(Equal(1))
		})

		It("pushes notifications only to their owner", func() {
			Expect(bus.PublishSync(context.Background(), events.NewNotificationCreatedEvent(10, 1, "LEAVE_APPROVED", "approved", nil))).To(Succeed())

			frame := readFrame(worker)
			Expect(frame.Event).To(Equal(realtime.EventNewNotification))
			Expect(frame.Data).To(HaveKeyWithValue("message", "approved"))
			expectSilence(hr)
		})

		It("asks the owner to refresh after read-all", func() {
			Expect(bus.PublishSync(context.Background(), events.NewNotificationsReadEvent(2))).To(Succeed())

			Expect(readFrame(hr).Event).To(Equal(realtime.EventNotificationRefresh))
			expectSilence(worker)
		})

		It("sends audit entries to the HR room", func() {
			Expect(bus.PublishSync(context.Background(), events.NewAuditLoggedEvent(5, 2, "leave.approve", "leave_request", "3"))).To(Succeed())

			frame := readFrame(hr)
			Expect(frame.Event).To(Equal(realtime.EventNewAuditLog))
			Expect(frame.Data).To(HaveKeyWithValue("action", "leave.approve"))
			expectSilence(worker)
		})

		It("broadcasts a refresh after the year end", func() {
			Expect(bus.PublishSync(context.Background(), events.NewYearEndProcessedEvent(2024, 2025, 2, 10))).To(Succeed())

			Expect(readFrame(worker).Event).To(Equal(realtime.EventNotificationRefresh))
			Expect(readFrame(hr).Event).To(Equal(realtime.EventNotificationRefresh))
		})

		It("forgets clients that disconnect", func() {
			Expect(worker.Close()).To(Succeed())
			Eventually(func() int { return hub.Clients(realtime.UserRoom(1)) }).Should(BeZero())
		})
	})
})
