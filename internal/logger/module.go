package logger

import (
	"log/slog"

	"go.uber.org/fx"
)

// Module provides the application logger and installs it as the slog default.
var Module = fx.Options(
	fx.Provide(New),
	fx.Invoke(func(l *slog.Logger) { slog.SetDefault(l) }),
)
