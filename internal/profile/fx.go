package profile

import (
	"github.com/holidaytable/holidaytable/internal/profile/repository"
	"github.com/holidaytable/holidaytable/internal/profile/service"
	"go.uber.org/fx"
)

var Module = fx.Module("profile.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
