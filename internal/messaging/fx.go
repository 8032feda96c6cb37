package messaging

import (
	"github.com/holidaytable/holidaytable/internal/messaging/repository"
	"github.com/holidaytable/holidaytable/internal/messaging/service"
	"go.uber.org/fx"
)

var Module = fx.Module("messaging.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
