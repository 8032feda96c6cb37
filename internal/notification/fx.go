package notification

import (
	"context"

	"github.com/holidaytable/holidaytable/internal/notification/repository"
	"github.com/holidaytable/holidaytable/internal/notification/service"
	"go.uber.org/fx"
)

var Module = fx.Module("notification",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
	fx.Provide(NewWorker),
	fx.Invoke(startWorker),
)

func startWorker(lc fx.Lifecycle, worker *Worker) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			ctx, cancel := context.WithCancel(context.Background())

			go worker.RunForever(ctx)

			lc.Append(fx.Hook{
				OnStop: func(context.Context) error {
					cancel()
					return nil
				},
			})

			return nil
		},
	})
}
