package controllers

import (
	"renovapro-backend/services"
	"renovapro-backend/utils"
)

// ServiceContext carries the long-lived notification services into the
// handlers. Set once from main; no handler owns connection state itself.
type ServiceContext struct {
	Store       services.RecordStore
	Transport   services.Transport
	Deliverer   *services.Deliverer
	Notifier    *services.Notifier
	DeliveryLog *utils.FileLog
}

var svc *ServiceContext

func SetServiceContext(s *ServiceContext) {
	svc = s
}
