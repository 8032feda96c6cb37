package auth

import (
	"github.com/holidaytable/holidaytable/internal/auth/repository"
	"github.com/holidaytable/holidaytable/internal/auth/service"
	"go.uber.org/fx"
)

var Module = fx.Module("auth.service",
	fx.Provide(repository.New),
	fx.Provide(service.New),
)
