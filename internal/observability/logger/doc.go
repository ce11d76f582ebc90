// Package logger provee un logger estructurado (zap) para todo el servicio.
//
// Uso típico:
//
//	logger.Init(logger.Config{Env: cfg.App.Env, Level: "info"})
//	defer logger.Sync()
//
//	log := logger.From(ctx).With(logger.Component("billing"))
//	log.Info("checkout created", logger.UserID(uid))
//
// El middleware WithLogging inyecta un logger "scoped" con request_id,
// method y path en el contexto; From(ctx) lo recupera en cualquier capa.
package logger
