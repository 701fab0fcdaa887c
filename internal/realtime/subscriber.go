package realtime

import (
	"context"

	"github.com/frahmantamala/leave-management/internal/core/events"
)

type Subscriber interface {
	Subscribe(eventType string, handler events.Handler)
	SubscribeAll(handler events.Handler, eventTypes ...string)
}

// Bridge forwards bus events to hub rooms.
func Bridge(bus Subscriber, hub *Hub) {
	bus.Subscribe(events.EventTypeNotificationCreated, func(_ context.Context, e events.Event) error {
		if ev, ok := e.(*events.NotificationCreatedEvent); ok {
			hub.Emit(UserRoom(ev.EmployeeID), EventNewNotification, ev.Payload())
		}
		return nil
	})

	bus.Subscribe(events.EventTypeNotificationsRead, func(_ context.Context, e events.Event) error {
		if ev, ok := e.(*events.NotificationsReadEvent); ok {
			hub.Emit(UserRoom(ev.EmployeeID), EventNotificationRefresh, ev.Payload())
		}
		return nil
	})

	bus.Subscribe(events.EventTypeAuditLogged, func(_ context.Context, e events.Event) error {
		hub.Emit(RoleRoom("HR"), EventNewAuditLog, e.Payload())
		return nil
	})

	bus.SubscribeAll(func(_ context.Context, e events.Event) error {
		hub.Broadcast(EventNotificationRefresh, e.Payload())
		return nil
	}, events.EventTypeYearEndProcessed, events.EventTypeYearReopened)
}
