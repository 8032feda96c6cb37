package connection

import (
	"github.com/holidaytable/holidaytable/internal/connection/event"
	"github.com/holidaytable/holidaytable/internal/connection/repository"
	"github.com/holidaytable/holidaytable/internal/connection/service"
	"go.uber.org/fx"
)

var Module = fx.Module("connection.service",
	fx.Provide(repository.Provide),
	fx.Provide(event.NewOutboxPublisher),
	fx.Provide(service.New),
)
