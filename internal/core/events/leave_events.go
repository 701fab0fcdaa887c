package events

const (
	EventTypeNotificationCreated = "notification.created"
	EventTypeNotificationsRead   = "notification.read"
	EventTypeAuditLogged         = "audit.logged"
	EventTypeYearEndProcessed    = "year_end.processed"
	EventTypeYearReopened        = "year_end.reopened"
)

type NotificationCreatedEvent struct {
	BaseEvent
	NotificationID int64  `json:"notification_id"`
	EmployeeID     int64  `json:"employee_id"`
	Kind           string `json:"kind"`
	Message        string `json:"message"`
	RequestID      *int64 `json:"request_id,omitempty"`
}

func NewNotificationCreatedEvent(notificationID, employeeID int64, kind, message string, requestID *int64) *NotificationCreatedEvent {
	return &NotificationCreatedEvent{
		BaseEvent: newBaseEvent(EventTypeNotificationCreated, map[string]interface{}{
			"notification_id": notificationID,
			"employee_id":     employeeID,
			"kind":            kind,
			"message":         message,
			"request_id":      requestID,
		}),
		NotificationID: notificationID,
		EmployeeID:     employeeID,
		Kind:           kind,
		Message:        message,
		RequestID:      requestID,
	}
}

// NotificationsReadEvent tells the employee's open clients to refetch.
type NotificationsReadEvent struct {
	BaseEvent
	EmployeeID int64 `json:"employee_id"`
}

func NewNotificationsReadEvent(employeeID int64) *NotificationsReadEvent {
	return &NotificationsReadEvent{
		BaseEvent:  newBaseEvent(EventTypeNotificationsRead, map[string]interface{}{"employee_id": employeeID}),
		EmployeeID: employeeID,
	}
}

type AuditLoggedEvent struct {
	BaseEvent
	AuditID    int64  `json:"audit_id"`
	ActorID    int64  `json:"actor_id"`
	Action     string `json:"action"`
	EntityType string `json:"entity_type"`
	EntityID   string `json:"entity_id"`
}

func NewAuditLoggedEvent(auditID, actorID int64, action, entityType, entityID string) *AuditLoggedEvent {
	return &AuditLoggedEvent{
		BaseEvent: newBaseEvent(EventTypeAuditLogged, map[string]interface{}{
			"audit_id":    auditID,
			"actor_id":    actorID,
			"action":      action,
			"entity_type": entityType,
			"entity_id":   entityID,
		}),
		AuditID:    auditID,
		ActorID:    actorID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
	}
}

type YearEndEvent struct {
	BaseEvent
	Year    int   `json:"year"`
	ActorID int64 `json:"actor_id"`
}

// NewYearEndProcessedEvent carries the year that was closed by the run.
func NewYearEndProcessedEvent(closedYear, targetYear int, actorID int64, employees int) *YearEndEvent {
	return &YearEndEvent{
		BaseEvent: newBaseEvent(EventTypeYearEndProcessed, map[string]interface{}{
			"closed_year": closedYear,
			"target_year": targetYear,
			"actor_id":    actorID,
			"employees":   employees,
		}),
		Year:    closedYear,
		ActorID: actorID,
	}
}

func NewYearReopenedEvent(year int, actorID int64, reason string) *YearEndEvent {
	return &YearEndEvent{
		BaseEvent: newBaseEvent(EventTypeYearReopened, map[string]interface{}{
			"year":     year,
			"actor_id": actorID,
			"reason":   reason,
		}),
		Year:    year,
		ActorID: actorID,
	}
}
